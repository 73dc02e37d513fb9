package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// Service accepts uploaded files: it extracts text, runs the ingestion
// pipeline and records the outcome in the ingest registry. The registry is
// informational and never consulted by retrieval.
type Service struct {
	extractor interfaces.TextExtractor
	ingest    interfaces.IngestService
	registry  interfaces.IngestLogStorage
	logger    arbor.ILogger
}

// NewService creates a document service
func NewService(extractor interfaces.TextExtractor, ingest interfaces.IngestService, registry interfaces.IngestLogStorage, logger arbor.ILogger) *Service {
	return &Service{
		extractor: extractor,
		ingest:    ingest,
		registry:  registry,
		logger:    logger,
	}
}

// IngestFile indexes one uploaded file under its filename
func (s *Service) IngestFile(ctx context.Context, filename string, data []byte) (*models.IngestResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: file name is required", models.ErrEmptyInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", models.ErrEmptyInput, filename)
	}

	content, err := s.extractor.Extract(filename, data)
	if err != nil {
		return nil, err
	}

	result, err := s.ingest.Ingest(ctx, &models.Document{Source: filename, Content: []byte(content)})
	if err != nil {
		return nil, err
	}

	record := &models.IngestRecord{
		ID:          common.NewIngestID(),
		Source:      filename,
		ChunkCount:  result.ChunkCount,
		ContentHash: common.ContentHash(data),
		IngestedAt:  time.Now(),
	}
	if err := s.registry.SaveIngestRecord(ctx, record); err != nil {
		// The index already holds the document; only the registry is stale.
		s.logger.Warn().Err(err).Str("source", filename).Msg("Failed to record ingested document")
	}

	return result, nil
}

// ListDocuments returns the registry, newest first
func (s *Service) ListDocuments(ctx context.Context) ([]*models.IngestRecord, error) {
	return s.registry.ListIngestRecords(ctx)
}

// IsCurrent reports whether filename was last ingested with exactly this content
func (s *Service) IsCurrent(ctx context.Context, filename string, data []byte) (bool, error) {
	record, err := s.registry.GetIngestRecord(ctx, filename)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.ContentHash == common.ContentHash(data), nil
}
