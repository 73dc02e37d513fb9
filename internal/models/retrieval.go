package models

import "strings"

// UnknownSource is rendered when a match carries no source name.
const UnknownSource = "Unknown"

// VectorQuery describes a nearest-neighbour lookup.
type VectorQuery struct {
	Vector          []float32
	TopK            int
	IncludeMetadata bool
	IncludeValues   bool
}

// RetrievalMatch is a single scored hit returned by the vector index.
// Vector is only populated when the query asked for values.
type RetrievalMatch struct {
	ID       string        `json:"id"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
	Vector   []float32     `json:"vector,omitempty"`
}

// FormatBlock renders the match as "[Source: <source>]\n<text>".
func (m RetrievalMatch) FormatBlock() string {
	source := m.Metadata.Source
	if source == "" {
		source = UnknownSource
	}
	return "[Source: " + source + "]\n" + m.Metadata.Text
}

// GroundingContext is the assembled retrieval context for one query.
// Text is empty when the relevance gate rejected the matches.
type GroundingContext struct {
	Text     string           `json:"text"`
	Matches  []RetrievalMatch `json:"matches"`
	TopScore float64          `json:"top_score"`
}

// IsEmpty reports whether the context carries no grounding text.
func (g *GroundingContext) IsEmpty() bool {
	return g == nil || g.Text == ""
}

// Sources returns the distinct source names in match order.
func (g *GroundingContext) Sources() []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]bool, len(g.Matches))
	sources := make([]string, 0, len(g.Matches))
	for _, m := range g.Matches {
		name := strings.TrimSpace(m.Metadata.Source)
		if name == "" {
			name = UnknownSource
		}
		if !seen[name] {
			seen[name] = true
			sources = append(sources, name)
		}
	}
	return sources
}
