package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrChunkerRequired is returned when a chunking pipeline is not provided.
	ErrChunkerRequired = errors.New("chunking pipeline required")

	// ErrNoDocuments is returned when the input paths hold no XML documents.
	ErrNoDocuments = errors.New("no documents found")
)

// ErrDuplicateSource is returned for a document whose file name was already ingested in the same run.
// Chunks are keyed by file name, so two files named alike would overwrite each other.
var ErrDuplicateSource = errors.New("duplicate source file name")
