package models

import "time"

// Document is an uploaded document for the duration of one ingestion call.
// Content holds extracted text; it is never persisted by the core.
type Document struct {
	Source  string `json:"source"`
	Content []byte `json:"-"`
}

// IngestResult summarises a completed ingestion.
type IngestResult struct {
	Source            string        `json:"fileName"`
	ChunkCount        int           `json:"chunkCount"`
	FirstChunkPreview string        `json:"firstChunkPreview"`
	Duration          time.Duration `json:"-"`
}

// IngestRecord is the registry entry written after a successful ingestion.
// Keyed by Source so re-ingesting the same name replaces the entry.
type IngestRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source" badgerhold:"key"`
	ChunkCount  int       `json:"chunk_count"`
	ContentHash string    `json:"content_hash"`
	IngestedAt  time.Time `json:"ingested_at"`
}
