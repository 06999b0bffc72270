package storage

import (
	"context"

	"github.com/poiesic/medirag/core"
)

// ChunkRepository persists chunk records grouped by source document.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// ReplaceSource atomically replaces every record of source with records.
	// Each record's Seq is set to its position and its Id to core.RecordID.
	// Records must all carry SourceFile == source.
	// Returns the stored records.
	ReplaceSource(ctx context.Context, source string, records []*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// DeleteSource removes every record of source.
	// Returns ErrNotFound if the source has no records.
	DeleteSource(ctx context.Context, source string) error

	// UpdateChunkRecords overwrites existing records, addressed by source and Seq.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateChunkRecords(ctx context.Context, records ...*core.ChunkRecord) error

	// GetChunkRecords retrieves the records of source ordered by Seq.
	// Returns an empty slice for an unknown source.
	GetChunkRecords(ctx context.Context, source string) ([]*core.ChunkRecord, error)

	// ForEachChunkRecord calls fn for every record, ordered by source then Seq.
	// Iteration stops at the first error returned by fn.
	ForEachChunkRecord(ctx context.Context, fn func(*core.ChunkRecord) error) error

	// Sources lists every source with at least one record, in sorted order.
	Sources(ctx context.Context) ([]string, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}
