package ai

import "errors"

var (
	// ErrEmptyResponse is returned when a generation service answers without text.
	ErrEmptyResponse = errors.New("generation response contains no text")

	// ErrUnknownBackend is returned when no generator exists for the configured backend.
	ErrUnknownBackend = errors.New("unknown generation backend")

	// ErrEmptyEmbedding is returned when an embedding service answers with an empty vector.
	ErrEmptyEmbedding = errors.New("embedding response contains no vector")

	// ErrEmbeddingCount is returned when an embedding service answers with the wrong number of vectors.
	ErrEmbeddingCount = errors.New("embedding count does not match input count")
)
