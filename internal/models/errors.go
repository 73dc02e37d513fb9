package models

import "errors"

// Error kinds surfaced by ingestion, retrieval and answering.
// Callers match with errors.Is; the wrapped cause carries the detail.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrEmbedding         = errors.New("embedding failed")
	ErrIndexWrite        = errors.New("vector index write failed")
	ErrIndexQuery        = errors.New("vector index query failed")
	ErrStreamGeneration  = errors.New("answer stream generation failed")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// ErrNotFound is returned by registry lookups for unknown sources
var ErrNotFound = errors.New("not found")
