package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
	"github.com/ternarybob/docchat/internal/services/chat"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleSearchDocuments implements the search_documents tool.
// It returns raw nearest matches without the relevance gate.
func handleSearchDocuments(embedder interfaces.EmbeddingService, store interfaces.VectorStore, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		vector, err := embedder.EmbedQuery(ctx, query)
		if err != nil {
			logger.Error().Err(err).Msg("Query embedding failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		matches, err := store.Query(ctx, models.VectorQuery{
			Vector:          vector,
			TopK:            limit,
			IncludeMetadata: true,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Vector query failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return textResult(formatMatches(query, matches)), nil
	}
}

// handleAskDocuments implements the ask_documents tool
func handleAskDocuments(chatService interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return textResult("Error: question parameter is required"), nil
		}

		stream, err := chatService.Answer(ctx, []models.ConversationMessage{
			{Role: models.RoleUser, Content: question},
		})
		if err != nil {
			logger.Error().Err(err).Msg("Answer failed")
			return textResult(fmt.Sprintf("Answer error: %v", err)), nil
		}

		answer := chat.Collect(stream)
		return textResult(formatAnswer(answer, stream.Grounded, stream.Sources)), nil
	}
}

// handleIngestText implements the ingest_text tool
func handleIngestText(documents interfaces.DocumentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return textResult("Error: name parameter is required"), nil
		}
		text, err := request.RequireString("text")
		if err != nil || text == "" {
			return textResult("Error: text parameter is required"), nil
		}

		result, err := documents.IngestFile(ctx, name, []byte(text))
		if err != nil {
			logger.Error().Err(err).Str("name", name).Msg("Ingest failed")
			return textResult(fmt.Sprintf("Ingest error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("Processed %d chunks from %s", result.ChunkCount, result.Source)), nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(documents interfaces.DocumentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := documents.ListDocuments(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List documents failed")
			return textResult(fmt.Sprintf("List error: %v", err)), nil
		}
		return textResult(formatDocuments(records)), nil
	}
}
