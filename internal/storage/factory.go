package storage

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/storage/badger"
	"github.com/ternarybob/docchat/internal/storage/pgvector"
)

// NewVectorStore creates the vector index selected by storage.type.
// The Badger database is shared with the ingest registry and closed by its owner.
func NewVectorStore(ctx context.Context, config *common.Config, db *badger.BadgerDB, logger arbor.ILogger) (interfaces.VectorStore, error) {
	switch config.Storage.Type {
	case "badger", "":
		return badger.NewVectorStore(db, logger), nil
	case "pgvector":
		store, err := pgvector.New(ctx, &config.Storage.Pgvector, config.Gemini.EmbedDimension, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (expected 'badger' or 'pgvector')", config.Storage.Type)
	}
}
