package chunker

import (
	"regexp"
	"strings"

	"github.com/ternarybob/docchat/internal/models"
)

// DefaultMaxChunkSize is the chunk bound used when none is configured
const DefaultMaxChunkSize = 1000

var (
	nonPrintable = regexp.MustCompile(`[^\x20-\x7E\n]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Chunker splits normalized text into sentence-aligned chunks.
// Chunks never split a sentence, so a sentence longer than the bound becomes
// its own oversized chunk.
type Chunker struct {
	maxChunkSize int
}

// New creates a chunker bounded at maxChunkSize characters
func New(maxChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Chunker{maxChunkSize: maxChunkSize}
}

// MaxChunkSize returns the configured bound
func (c *Chunker) MaxChunkSize() int {
	return c.maxChunkSize
}

// Chunk normalizes text and returns its chunks in document order
func (c *Chunker) Chunk(text string) []string {
	return Chunk(Normalize(text), c.maxChunkSize)
}

// ChunkDocument chunks text and tags every chunk with source and index
func (c *Chunker) ChunkDocument(source, text string) []models.Chunk {
	texts := c.Chunk(text)
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{Text: t, Index: i, Source: source}
	}
	return chunks
}

// Normalize strips everything outside printable ASCII and newline, then
// collapses whitespace runs to a single space. Non-ASCII text is lost.
func Normalize(text string) string {
	text = nonPrintable.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSentences breaks text after '.', '!' or '?' when followed by whitespace.
// The terminator stays with its sentence and the whitespace is dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 1; i < len(text); i++ {
		if !isSpace(text[i]) || !isTerminator(text[i-1]) {
			continue
		}
		sentences = append(sentences, text[start:i])
		j := i
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// Chunk greedily packs sentences of already normalized text into chunks of at
// most maxChunkSize characters, joining sentences with a single space.
func Chunk(text string, maxChunkSize int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range SplitSentences(text) {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
