package index

import "errors"

var (
	// ErrEmbedderRequired indicates an index was built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRepositoryRequired indicates a loader was built without a repository.
	ErrRepositoryRequired = errors.New("chunk repository is required")

	// ErrLoaderRequired indicates a cache was built without a loader.
	ErrLoaderRequired = errors.New("index loader is required")

	// ErrDimensionMismatch indicates vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidK indicates a non-positive result count.
	ErrInvalidK = errors.New("k must be positive")
)
