package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/docchat/internal/app"
	"github.com/ternarybob/docchat/internal/common"
)

func main() {
	configPath := os.Getenv("DOCCHAT_CONFIG")
	if configPath == "" {
		configPath = "docchat.toml"
	}

	var paths []string
	if _, err := os.Stat(configPath); err == nil {
		paths = append(paths, configPath)
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The HTTP service owns the inbox schedule
	config.Inbox.Enabled = false

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"docchat",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchDocumentsTool(), handleSearchDocuments(application.EmbeddingService, application.VectorStore, logger))
	mcpServer.AddTool(createAskDocumentsTool(), handleAskDocuments(application.ChatService, logger))
	mcpServer.AddTool(createIngestTextTool(), handleIngestText(application.DocumentService, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(application.DocumentService, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
