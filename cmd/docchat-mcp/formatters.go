package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/docchat/internal/models"
)

// formatMatches formats similarity matches as markdown
func formatMatches(query string, matches []models.RetrievalMatch) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Passages for \"%s\" (%d results)\n\n", query, len(matches)))

	if len(matches) == 0 {
		sb.WriteString("No documents have been ingested yet.\n")
		return sb.String()
	}

	for i, m := range matches {
		source := m.Metadata.Source
		if source == "" {
			source = models.UnknownSource
		}
		sb.WriteString(fmt.Sprintf("### %d. %s (chunk %d)\n", i+1, source, m.Metadata.ChunkIndex))
		sb.WriteString(fmt.Sprintf("**Score:** %.3f\n\n", m.Score))
		sb.WriteString(m.Metadata.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// formatAnswer appends the sources used to a collected answer
func formatAnswer(answer string, grounded bool, sources []string) string {
	var sb strings.Builder
	sb.WriteString(answer)
	sb.WriteString("\n\n---\n")
	if grounded {
		sb.WriteString(fmt.Sprintf("**Sources:** %s\n", strings.Join(sources, ", ")))
	} else {
		sb.WriteString("**Sources:** none (no relevant passages found)\n")
	}
	return sb.String()
}

// formatDocuments formats the ingest registry as a markdown table
func formatDocuments(records []*models.IngestRecord) string {
	if len(records) == 0 {
		return "No documents have been ingested yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documents (%d)\n\n", len(records)))
	sb.WriteString("| Source | Chunks | Ingested |\n")
	sb.WriteString("|---|---|---|\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", r.Source, r.ChunkCount, r.IngestedAt.Format(time.RFC3339)))
	}
	return sb.String()
}
