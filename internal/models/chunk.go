package models

import "fmt"

// Chunk is a bounded text segment produced from one document.
// Index reflects original document order.
type Chunk struct {
	Text   string `json:"text"`
	Index  int    `json:"index"`
	Source string `json:"source"`
}

// ID returns the derived index record id "<source>-<index>".
func (c Chunk) ID() string {
	return ChunkID(c.Source, c.Index)
}

// ChunkID derives the record id for chunk index of source.
func ChunkID(source string, index int) string {
	return fmt.Sprintf("%s-%d", source, index)
}

// ChunkMetadata is stored alongside every vector.
type ChunkMetadata struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunkIndex"`
}

// IndexRecord is one (id, vector, metadata) triple in the vector index.
type IndexRecord struct {
	ID       string        `json:"id"`
	Vector   []float32     `json:"vector"`
	Metadata ChunkMetadata `json:"metadata"`
}
