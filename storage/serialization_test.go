package storage

import (
	"testing"

	"github.com/poiesic/medirag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalChunkRecord(t *testing.T) {
	tests := []struct {
		name   string
		record *core.ChunkRecord
	}{
		{
			name: "with vector",
			record: &core.ChunkRecord{
				Id:     core.IDFromContent("a"),
				Chunk:  core.Chunk{Text: "Blutungen können auftreten.", Chapter: "Risiken", SourceFile: "IP07.xml"},
				Seq:    3,
				Vector: []float32{0.5, -0.25, 1},
			},
		},
		{
			name: "without vector",
			record: &core.ChunkRecord{
				Id:    7,
				Chunk: core.Chunk{Text: "t", Chapter: "c", SourceFile: "f"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalChunkRecord(MarshalChunkRecord(tt.record))
			require.NoError(t, err)
			assert.Equal(t, tt.record, decoded)
		})
	}
}

func TestUnmarshalChunkRecord_Invalid(t *testing.T) {
	data := MarshalChunkRecord(&core.ChunkRecord{Id: 1, Chunk: core.Chunk{Text: "text", Chapter: "c", SourceFile: "f"}})

	t.Run("truncated", func(t *testing.T) {
		_, err := UnmarshalChunkRecord(data[:len(data)-3])
		assert.Error(t, err)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := UnmarshalChunkRecord(append(append([]byte{}, data...), 0, 0))
		assert.ErrorIs(t, err, ErrTruncatedData)
	})
}
