// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"unicode/utf8"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Text must not exceed maxChars characters (skipped when maxChars <= 0)
//   - Chapter must not be empty
//   - SourceFile must not be empty
func ValidateChunk(chunk *Chunk, maxChars int) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if maxChars > 0 {
		if n := utf8.RuneCountInString(chunk.Text); n > maxChars {
			return fmt.Errorf("%w: %w: %d > %d", ErrInvalidChunk, ErrChunkTooLong, n, maxChars)
		}
	}

	if chunk.Chapter == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChapter)
	}

	if chunk.SourceFile == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	return nil
}

// ValidateChunkRecord validates a stored record.
// Vector is not validated; it may be empty until the embedding step runs.
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunk)
	}
	if record.Seq < 0 {
		return fmt.Errorf("%w: negative sequence %d", ErrInvalidChunk, record.Seq)
	}
	return ValidateChunk(&record.Chunk, 0)
}
