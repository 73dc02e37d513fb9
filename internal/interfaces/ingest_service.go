package interfaces

import (
	"context"

	"github.com/ternarybob/docchat/internal/models"
)

// IngestService runs chunking, embedding and index upsert for one document
type IngestService interface {
	Ingest(ctx context.Context, doc *models.Document) (*models.IngestResult, error)
}

// TextExtractor converts an uploaded file into plain text
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// DocumentService is the upload-facing entry point: extraction, ingestion and registry
type DocumentService interface {
	IngestFile(ctx context.Context, filename string, data []byte) (*models.IngestResult, error)
	ListDocuments(ctx context.Context) ([]*models.IngestRecord, error)
	IsCurrent(ctx context.Context, filename string, data []byte) (bool, error)
}
