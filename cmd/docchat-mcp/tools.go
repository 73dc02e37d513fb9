package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchDocumentsTool returns the search_documents tool definition
func createSearchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Find the document passages most similar to a query, with their similarity scores"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum passages to return (default: 10, max: 50)"),
		),
	)
}

// createAskDocumentsTool returns the ask_documents tool definition
func createAskDocumentsTool() mcp.Tool {
	return mcp.NewTool("ask_documents",
		mcp.WithDescription("Answer a question from the uploaded documents, citing the source documents used"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
	)
}

// createIngestTextTool returns the ingest_text tool definition
func createIngestTextTool() mcp.Tool {
	return mcp.NewTool("ingest_text",
		mcp.WithDescription("Index a text, markdown or HTML document so later questions can use it"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Document name; the extension selects the format (e.g. notes.md)"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Document content"),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List ingested documents, newest first"),
	)
}
