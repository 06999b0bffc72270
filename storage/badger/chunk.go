package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", storage.ErrInvalidQuery)
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *ChunkRepository) Close() error {
	return nil
}

// ReplaceSource deletes every record of source and stores records in its place.
func (r *ChunkRepository) ReplaceSource(ctx context.Context, source string, records []*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", storage.ErrInvalidQuery)
	}
	for seq, record := range records {
		if record == nil {
			return nil, fmt.Errorf("%w: nil record at %d", storage.ErrInvalidQuery, seq)
		}
		if record.Chunk.SourceFile != source {
			return nil, fmt.Errorf("%w: record %d belongs to %q, not %q",
				storage.ErrInvalidQuery, seq, record.Chunk.SourceFile, source)
		}
		record.Seq = seq
		record.Id = core.RecordID(record.Chunk, seq)
		if err := core.ValidateChunkRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		if _, err := r.deletePrefix(tx, makeSourcePrefix(source)); err != nil {
			return err
		}
		for _, record := range records {
			key := makeChunkRecordKey(source, record.Seq)
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteSource removes every record of source.
func (r *ChunkRepository) DeleteSource(ctx context.Context, source string) error {
	return r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		n, err := r.deletePrefix(tx, makeSourcePrefix(source))
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// UpdateChunkRecords overwrites existing chunk records.
func (r *ChunkRepository) UpdateChunkRecords(ctx context.Context, records ...*core.ChunkRecord) error {
	return r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateChunkRecord(record); err != nil {
				return err
			}
			key := makeChunkRecordKey(record.Chunk.SourceFile, record.Seq)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: %s#%d", storage.ErrNotFound, record.Chunk.SourceFile, record.Seq)
				}
				return err
			}
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetChunkRecords retrieves the records of source in document order.
func (r *ChunkRepository) GetChunkRecords(ctx context.Context, source string) ([]*core.ChunkRecord, error) {
	results := make([]*core.ChunkRecord, 0)
	err := r.scan(ctx, makeSourcePrefix(source), func(record *core.ChunkRecord) error {
		results = append(results, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ForEachChunkRecord calls fn for every stored record in (source, seq) order.
func (r *ChunkRepository) ForEachChunkRecord(ctx context.Context, fn func(*core.ChunkRecord) error) error {
	return r.scan(ctx, []byte(chunkRecordPrefix), fn)
}

// Sources lists every source that has records.
func (r *ChunkRepository) Sources(ctx context.Context) ([]string, error) {
	sources := make([]string, 0)
	err := r.scanKeys(ctx, func(source string) {
		if len(sources) == 0 || sources[len(sources)-1] != source {
			sources = append(sources, source)
		}
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// Count returns the number of stored records.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.scanKeys(ctx, func(string) {
		count++
	})
	return count, err
}

// scan decodes every record under prefix and hands it to fn.
func (r *ChunkRepository) scan(ctx context.Context, prefix []byte, fn func(*core.ChunkRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// scanKeys visits the source of every record key without reading values.
func (r *ChunkRepository) scanKeys(ctx context.Context, fn func(source string)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, _, err := parseChunkRecordKey(iter.Item().Key())
			if err != nil {
				return err
			}
			fn(source)
		}
		return nil
	}, false)
}

// deletePrefix removes every key under prefix and returns how many were removed.
func (r *ChunkRepository) deletePrefix(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
