package pgvector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements interfaces.VectorStore on PostgreSQL with the vector extension.
// Scores are cosine similarity, computed as 1 - (embedding <=> query).
type Store struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
	logger    arbor.ILogger
}

// New connects to PostgreSQL and ensures the chunk table exists
func New(ctx context.Context, config *common.PgvectorConfig, dimension int, logger arbor.ILogger) (*Store, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("pgvector dsn is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be > 0")
	}
	table := config.Table
	if table == "" {
		table = "docchat_chunks"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid pgvector table name: %q", table)
	}

	pool, err := pgxpool.New(ctx, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pgvector: %w", err)
	}

	s := &Store{
		pool:      pool,
		table:     table,
		dimension: dimension,
		logger:    logger,
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Debug().Str("table", table).Int("dimension", dimension).Msg("pgvector store initialized")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.table, s.dimension) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare pgvector schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(table string, dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    text        TEXT NOT NULL,
    embedding   vector(%d) NOT NULL
)`, table, dimension),
	}
}

func upsertStatement(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, source, chunk_index, text, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET source      = EXCLUDED.source,
    chunk_index = EXCLUDED.chunk_index,
    text        = EXCLUDED.text,
    embedding   = EXCLUDED.embedding`, table)
}

// queryStatement selects the embedding column only when values were requested
func queryStatement(table string, includeValues bool) string {
	columns := "id, source, chunk_index, text"
	if includeValues {
		columns += ", embedding"
	}
	return fmt.Sprintf(`SELECT %s, 1 - (embedding <=> $1) AS score
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`, columns, table)
}

// Upsert writes the records in one batch transaction
func (s *Store) Upsert(ctx context.Context, records []models.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	stmt := upsertStatement(s.table)
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record id is required")
		}
		if len(r.Vector) != s.dimension {
			return fmt.Errorf("embedding dimension mismatch for id=%s: got %d, want %d", r.ID, len(r.Vector), s.dimension)
		}
		batch.Queue(stmt, r.ID, r.Metadata.Source, r.Metadata.ChunkIndex, r.Metadata.Text, pgvector.NewVector(r.Vector))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for _, r := range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert record %s: %w", r.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to finish upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Debug().Int("records", len(records)).Msg("Upserted pgvector records")
	return nil
}

// Query returns the TopK nearest records by cosine distance
func (s *Store) Query(ctx context.Context, query models.VectorQuery) ([]models.RetrievalMatch, error) {
	if len(query.Vector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: got %d, want %d", len(query.Vector), s.dimension)
	}
	topK := query.TopK
	if topK <= 0 {
		topK = 10
	}

	rows, err := s.pool.Query(ctx, queryStatement(s.table, query.IncludeValues), pgvector.NewVector(query.Vector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var matches []models.RetrievalMatch
	for rows.Next() {
		var (
			id, source, text string
			chunkIndex       int
			embedding        pgvector.Vector
			score            float64
		)
		dest := []any{&id, &source, &chunkIndex, &text}
		if query.IncludeValues {
			dest = append(dest, &embedding)
		}
		dest = append(dest, &score)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		match := models.RetrievalMatch{ID: id, Score: score}
		if query.IncludeMetadata {
			match.Metadata = models.ChunkMetadata{Text: text, Source: source, ChunkIndex: chunkIndex}
		}
		if query.IncludeValues {
			match.Vector = embedding.Slice()
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vector rows: %w", err)
	}
	return matches, nil
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
