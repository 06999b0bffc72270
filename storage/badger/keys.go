package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec:"
)

// sourceSeparator terminates the source name inside a record key.
// File names never contain NUL, so it sorts every source's keys together.
const sourceSeparator = 0

// makeSourcePrefix generates the key prefix shared by every record of source.
// Format: prefix source NUL
func makeSourcePrefix(source string) []byte {
	buf := make([]byte, 0, len(chunkRecordPrefix)+len(source)+1)
	buf = append(buf, chunkRecordPrefix...)
	buf = append(buf, source...)
	return append(buf, sourceSeparator)
}

// makeChunkRecordKey generates a composite key for a chunk record.
// Format: prefix source NUL seq
func makeChunkRecordKey(source string, seq int) []byte {
	buf := makeSourcePrefix(source)
	// Write in BigEndian order so lexicographic sort matches document order
	return binary.BigEndian.AppendUint64(buf, uint64(seq))
}

// parseChunkRecordKey splits a record key into its source and sequence number.
func parseChunkRecordKey(key []byte) (string, int, error) {
	rest, ok := bytes.CutPrefix(key, []byte(chunkRecordPrefix))
	if !ok {
		return "", 0, fmt.Errorf("not a chunk record key: %q", key)
	}
	i := bytes.IndexByte(rest, sourceSeparator)
	if i < 0 || len(rest)-i-1 != 8 {
		return "", 0, fmt.Errorf("malformed chunk record key: %q", key)
	}
	return string(rest[:i]), int(binary.BigEndian.Uint64(rest[i+1:])), nil
}
