package badger

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/models"
)

// VectorRecord is the persisted form of an index record
type VectorRecord struct {
	ID         string `badgerhold:"key"`
	Source     string `badgerhold:"index"`
	ChunkIndex int
	Text       string
	Vector     []float32
}

// VectorStore implements interfaces.VectorStore with brute-force cosine
// similarity over all stored records. Suited to single-user corpora.
type VectorStore struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStore creates a vector store on an open Badger database
func NewVectorStore(db *BadgerDB, logger arbor.ILogger) *VectorStore {
	return &VectorStore{
		db:     db,
		logger: logger,
	}
}

// Upsert writes all records in one transaction; existing ids are overwritten
func (s *VectorStore) Upsert(ctx context.Context, records []models.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, r := range records {
			if r.ID == "" {
				return fmt.Errorf("record id is required")
			}
			if len(r.Vector) == 0 {
				return fmt.Errorf("record %s has no vector", r.ID)
			}
			rec := VectorRecord{
				ID:         r.ID,
				Source:     r.Metadata.Source,
				ChunkIndex: r.Metadata.ChunkIndex,
				Text:       r.Metadata.Text,
				Vector:     r.Vector,
			}
			if err := s.db.Store().TxUpsert(txn, rec.ID, &rec); err != nil {
				return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Int("records", len(records)).Msg("Upserted vector records")
	return nil
}

// Query scores every stored record against the query vector and returns the
// TopK best by descending cosine similarity
func (s *VectorStore) Query(ctx context.Context, query models.VectorQuery) ([]models.RetrievalMatch, error) {
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []VectorRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to load vector records: %w", err)
	}

	matches := make([]models.RetrievalMatch, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if len(rec.Vector) != len(query.Vector) {
			skipped++
			continue
		}
		match := models.RetrievalMatch{
			ID:    rec.ID,
			Score: CosineSimilarity(query.Vector, rec.Vector),
		}
		if query.IncludeMetadata {
			match.Metadata = models.ChunkMetadata{
				Text:       rec.Text,
				Source:     rec.Source,
				ChunkIndex: rec.ChunkIndex,
			}
		}
		if query.IncludeValues {
			match.Vector = rec.Vector
		}
		matches = append(matches, match)
	}

	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Int("dimension", len(query.Vector)).Msg("Skipped records with mismatched vector dimension")
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if query.TopK > 0 && len(matches) > query.TopK {
		matches = matches[:query.TopK]
	}
	return matches, nil
}

// Count returns the number of stored records
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.Store().Count(&VectorRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count vector records: %w", err)
	}
	return int(n), nil
}

// Close is a no-op; the database is owned and closed by the caller
func (s *VectorStore) Close() error {
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero magnitude
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
