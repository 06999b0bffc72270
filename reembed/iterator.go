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


package reembed

import (
	"context"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
)

const (
	// DefaultBatchSize is the default number of records handed to each batch call
	DefaultBatchSize = 32
)

// RecordIterator walks all stored chunk records in batches.
type RecordIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// A batchSize <= 0 selects DefaultBatchSize.
func NewRecordIterator(repo storage.ChunkRepository, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of records in storage order.
// Every batch except the last holds exactly batchSize records.
// Iteration stops on the first error from fn or when ctx is canceled.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.ChunkRecord) error) error {
	batch := make([]*core.ChunkRecord, 0, it.batchSize)
	err := it.repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
		batch = append(batch, record)
		if len(batch) < it.batchSize {
			return nil
		}
		full := batch
		batch = make([]*core.ChunkRecord, 0, it.batchSize)
		return fn(full)
	})
	if err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(batch)
	}
	return nil
}
