package chunking

import "errors"

var (
	// ErrInvalidMaxChunkChars is returned when the maximum chunk size is not positive.
	ErrInvalidMaxChunkChars = errors.New("max chunk chars must be positive")

	// ErrInvalidOverlap is returned when the overlap is negative or not smaller than the chunk size.
	ErrInvalidOverlap = errors.New("chunk overlap must be in [0, max chunk chars)")
)
