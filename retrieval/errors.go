package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when no index source is provided.
	ErrIndexRequired = errors.New("index source required")

	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyQuery is returned for a blank question.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidTimeout is returned for a non-positive generation timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)
