package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/handlers"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/services/chat"
	"github.com/ternarybob/docchat/internal/services/documents"
	"github.com/ternarybob/docchat/internal/services/embeddings"
	"github.com/ternarybob/docchat/internal/services/extract"
	"github.com/ternarybob/docchat/internal/services/inbox"
	"github.com/ternarybob/docchat/internal/services/ingest"
	"github.com/ternarybob/docchat/internal/services/llm"
	"github.com/ternarybob/docchat/internal/services/retrieval"
	"github.com/ternarybob/docchat/internal/storage"
	"github.com/ternarybob/docchat/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB          *badger.BadgerDB
	VectorStore interfaces.VectorStore
	IngestLog   interfaces.IngestLogStorage

	// LLM providers
	GeminiService *llm.GeminiService
	ChatProvider  interfaces.ChatProvider

	// Services
	EmbeddingService interfaces.EmbeddingService
	IngestService    interfaces.IngestService
	Retriever        interfaces.Retriever
	ChatService      interfaces.ChatService
	DocumentService  interfaces.DocumentService
	InboxService     *inbox.Service

	// HTTP handlers
	UploadHandler    *handlers.UploadHandler
	ChatHandler      *handlers.ChatHandler
	ChatWSHandler    *handlers.ChatWebSocketHandler
	DocumentsHandler *handlers.DocumentsHandler
	HealthHandler    *handlers.HealthHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if app.InboxService != nil {
		if err := app.InboxService.Start(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start inbox: %w", err)
		}
	}

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("embed_model", app.EmbeddingService.ModelName()).
		Str("chat_provider", app.ChatProvider.Name()).
		Str("chat_model", app.ChatProvider.ChatModel()).
		Bool("inbox_enabled", cfg.Inbox.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens Badger and the configured vector index.
// Badger always backs the ingest registry, even when vectors live in Postgres.
func (a *App) initDatabase(ctx context.Context) error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.DB = db
	a.IngestLog = badger.NewIngestLogStorage(db, a.Logger)

	vectorStore, err := storage.NewVectorStore(ctx, a.Config, db, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	a.VectorStore = vectorStore

	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires the pipeline in dependency order
func (a *App) initServices(ctx context.Context) error {
	gemini, err := llm.NewGeminiService(ctx, &a.Config.Gemini, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create Gemini service: %w", err)
	}
	a.GeminiService = gemini

	a.ChatProvider, err = llm.NewChatProvider(a.Config, gemini, a.Logger)
	if err != nil {
		return err
	}

	a.EmbeddingService = embeddings.NewService(gemini, a.Config.Gemini.EmbedDimension, a.Logger)
	a.IngestService = ingest.NewService(a.EmbeddingService, a.VectorStore, a.Config.RAG, a.Logger)
	a.Retriever = retrieval.NewRetriever(a.EmbeddingService, a.VectorStore, a.Config.RAG, a.Logger)
	a.ChatService = chat.NewService(a.Retriever, a.ChatProvider, a.Config.RAG, a.Logger)
	a.DocumentService = documents.NewService(extract.NewService(a.Logger), a.IngestService, a.IngestLog, a.Logger)

	if a.Config.Inbox.Enabled {
		a.InboxService = inbox.NewService(a.DocumentService, a.Config.Inbox, a.Config.Server.MaxUploadBytes, a.Logger)
	}

	return nil
}

func (a *App) initHandlers() {
	a.UploadHandler = handlers.NewUploadHandler(a.DocumentService, a.Config.Server.MaxUploadBytes, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.ChatWSHandler = handlers.NewChatWebSocketHandler(a.ChatService, a.Logger)
	a.DocumentsHandler = handlers.NewDocumentsHandler(a.DocumentService, a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.VectorStore, a.ChatProvider.Name(), a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.InboxService != nil {
		a.InboxService.Stop()
	}

	if a.GeminiService != nil {
		if err := a.GeminiService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Gemini service")
		}
	}

	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close vector store")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
