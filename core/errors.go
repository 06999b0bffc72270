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
	"errors"
	"fmt"
)

// Failure taxonomy shared by ingestion and retrieval.
var (
	// ErrParse indicates a single document could not be read or parsed.
	ErrParse = errors.New("document parse failed")

	// ErrEmptyDocument indicates a document yielded zero meaningful fragments.
	// It is a warning: the document simply produces no chunks.
	ErrEmptyDocument = errors.New("document has no meaningful content")

	// ErrIndexUnavailable indicates the shared vector index could not be obtained.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the generation collaborator call failed.
	ErrGeneration = errors.New("answer generation failed")
)

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrChunkTooLong indicates the chunk Text exceeds the configured maximum.
	ErrChunkTooLong = errors.New("chunk text exceeds maximum length")

	// ErrEmptyChapter indicates the chunk Chapter field is empty.
	ErrEmptyChapter = errors.New("chunk chapter cannot be empty")

	// ErrEmptySource indicates the chunk SourceFile field is empty.
	ErrEmptySource = errors.New("chunk source file cannot be empty")
)

// ParseError reports a document that could not be parsed.
// It is scoped to that document; batch ingestion skips it and continues.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse as a match so callers can test with errors.Is.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
