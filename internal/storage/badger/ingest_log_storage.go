package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// IngestLogStorage implements interfaces.IngestLogStorage for Badger
type IngestLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIngestLogStorage creates a new IngestLogStorage instance
func NewIngestLogStorage(db *BadgerDB, logger arbor.ILogger) *IngestLogStorage {
	return &IngestLogStorage{
		db:     db,
		logger: logger,
	}
}

// SaveIngestRecord upserts the registry entry keyed by source
func (s *IngestLogStorage) SaveIngestRecord(ctx context.Context, record *models.IngestRecord) error {
	if record.Source == "" {
		return fmt.Errorf("ingest record source is required")
	}
	if err := s.db.Store().Upsert(record.Source, record); err != nil {
		return fmt.Errorf("failed to save ingest record: %w", err)
	}
	return nil
}

// GetIngestRecord returns the registry entry for source
func (s *IngestLogStorage) GetIngestRecord(ctx context.Context, source string) (*models.IngestRecord, error) {
	var record models.IngestRecord
	if err := s.db.Store().Get(source, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("ingest record %s: %w", source, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ingest record: %w", err)
	}
	return &record, nil
}

// ListIngestRecords returns all registry entries, newest first
func (s *IngestLogStorage) ListIngestRecords(ctx context.Context) ([]*models.IngestRecord, error) {
	var records []models.IngestRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list ingest records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].IngestedAt.After(records[j].IngestedAt)
	})

	result := make([]*models.IngestRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
