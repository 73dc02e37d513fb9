package interfaces

import (
	"context"

	"github.com/ternarybob/docchat/internal/models"
)

// VectorStore persists index records and answers similarity queries.
// Query results are ordered by descending score.
type VectorStore interface {
	Upsert(ctx context.Context, records []models.IndexRecord) error
	Query(ctx context.Context, query models.VectorQuery) ([]models.RetrievalMatch, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// IngestLogStorage keeps the registry of ingested documents
type IngestLogStorage interface {
	SaveIngestRecord(ctx context.Context, record *models.IngestRecord) error
	GetIngestRecord(ctx context.Context, source string) (*models.IngestRecord, error)
	ListIngestRecords(ctx context.Context) ([]*models.IngestRecord, error)
}
