package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
	"github.com/ternarybob/docchat/internal/services/chunker"
)

// Service runs the ingestion pipeline: chunk, embed per batch, upsert per batch.
// Batches run sequentially and the first failure aborts the rest. Batches
// already written stay in the index.
type Service struct {
	chunker   *chunker.Chunker
	embedder  interfaces.EmbeddingService
	store     interfaces.VectorStore
	batchSize int
	preview   int
	logger    arbor.ILogger
}

// NewService creates an ingestion pipeline from the RAG settings
func NewService(embedder interfaces.EmbeddingService, store interfaces.VectorStore, config common.RAGConfig, logger arbor.ILogger) *Service {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	preview := config.PreviewLength
	if preview <= 0 {
		preview = 100
	}
	return &Service{
		chunker:   chunker.New(config.MaxChunkSize),
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		preview:   preview,
		logger:    logger,
	}
}

// Ingest indexes one document and reports how many chunks were written
func (s *Service) Ingest(ctx context.Context, doc *models.Document) (*models.IngestResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document provided", models.ErrEmptyInput)
	}
	if doc.Source == "" {
		return nil, fmt.Errorf("%w: document name is required", models.ErrEmptyInput)
	}

	start := time.Now()
	chunks := s.chunker.ChunkDocument(doc.Source, string(doc.Content))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s contains no text", models.ErrEmptyInput, doc.Source)
	}

	s.logger.Debug().
		Str("source", doc.Source).
		Int("bytes", len(doc.Content)).
		Int("chunks", len(chunks)).
		Int("batch_size", s.batchSize).
		Msg("Document chunked")

	written := 0
	for batchStart := 0; batchStart < len(chunks); batchStart += s.batchSize {
		batchEnd := min(batchStart+s.batchSize, len(chunks))
		batch := chunks[batchStart:batchEnd]

		if err := s.ingestBatch(ctx, batch); err != nil {
			s.logger.Error().
				Err(err).
				Str("source", doc.Source).
				Int("batch_start", batchStart).
				Int("chunks_written", written).
				Int("chunks_total", len(chunks)).
				Msg("Ingestion aborted, document is partially indexed")
			return nil, err
		}
		written += len(batch)
	}

	result := &models.IngestResult{
		Source:            doc.Source,
		ChunkCount:        len(chunks),
		FirstChunkPreview: Preview(chunks[0].Text, s.preview),
		Duration:          time.Since(start),
	}

	s.logger.Info().
		Str("source", doc.Source).
		Int("chunks", result.ChunkCount).
		Dur("duration", result.Duration).
		Msg("Document ingested")

	return result, nil
}

func (s *Service) ingestBatch(ctx context.Context, batch []models.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return asKind(models.ErrEmbedding, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrEmbedding, len(vectors), len(batch))
	}

	if err := s.store.Upsert(ctx, BuildRecords(batch, vectors)); err != nil {
		return asKind(models.ErrIndexWrite, err)
	}
	return nil
}

// BuildRecords pairs chunks with vectors by position. Callers guarantee equal lengths.
func BuildRecords(chunks []models.Chunk, vectors [][]float32) []models.IndexRecord {
	records := make([]models.IndexRecord, len(chunks))
	for i, c := range chunks {
		records[i] = models.IndexRecord{
			ID:     c.ID(),
			Vector: vectors[i],
			Metadata: models.ChunkMetadata{
				Text:       c.Text,
				Source:     c.Source,
				ChunkIndex: c.Index,
			},
		}
	}
	return records
}

// Preview returns the first n characters of text followed by "..."
func Preview(text string, n int) string {
	if len(text) > n {
		text = text[:n]
	}
	return text + "..."
}

// asKind wraps err with kind unless it already carries it
func asKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
