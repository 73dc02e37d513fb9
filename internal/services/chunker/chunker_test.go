package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\n  ", ""},
		{"collapses runs", "Hello   world.\n\nNext   line.", "Hello world. Next line."},
		{"strips non ascii", "Café naïve résumé.", "Caf nave rsum."},
		{"strips tabs and carriage returns", "a\tb\r\nc", "ab c"},
		{"trims ends", "  padded.  ", "padded."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "Hello world.", []string{"Hello world."}},
		{"mixed terminators", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"terminator without space", "Version 1.2 is out. Yes.", []string{"Version 1.2 is out.", "Yes."}},
		{"ellipsis", "Wait... What?", []string{"Wait...", "What?"}},
		{"no terminator", "just words", []string{"just words"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, New(1000).Chunk(""))
	assert.Empty(t, New(1000).Chunk("éé \n"))
}

func TestChunk_SingleSentence(t *testing.T) {
	chunks := New(1000).Chunk("Hello world.")
	assert.Equal(t, []string{"Hello world."}, chunks)
}

func TestChunk_OversizedSentenceIsKeptWhole(t *testing.T) {
	long := strings.Repeat("a", 30) + "."
	text := "Short one. " + long + " Tail."

	chunks := New(20).Chunk(text)

	assert.Equal(t, []string{"Short one.", long, "Tail."}, chunks)
}

func TestChunk_GreedyPacking(t *testing.T) {
	// "Aaaa. Bbbb." is 11 characters; adding " Cccc." makes 17
	chunks := New(16).Chunk("Aaaa. Bbbb. Cccc. Dddd.")
	assert.Equal(t, []string{"Aaaa. Bbbb.", "Cccc. Dddd."}, chunks)

	chunks = New(17).Chunk("Aaaa. Bbbb. Cccc. Dddd.")
	assert.Equal(t, []string{"Aaaa. Bbbb. Cccc.", "Dddd."}, chunks)
}

// buildDocument returns sentences of varying length totalling at least minLen characters
func buildDocument(minLen int) string {
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	var b strings.Builder
	for i := 0; b.Len() < minLen; i++ {
		if b.Len() > 0 {
			b.WriteString("  \n")
		}
		n := 5 + (i*7)%40
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(words[(i+j)%len(words)])
		}
		b.WriteString([]string{".", "!", "?"}[i%3])
	}
	return b.String()
}

func TestChunk_Properties(t *testing.T) {
	sizes := []int{50, 200, 1000}
	doc := buildDocument(2500)
	normalized := Normalize(doc)
	sentences := SplitSentences(normalized)

	for _, size := range sizes {
		chunks := New(size).Chunk(doc)
		require.NotEmpty(t, chunks)

		// Joining chunks reproduces the normalized text
		assert.Equal(t, normalized, strings.Join(chunks, " "))

		// Every chunk is within bounds unless it is a single sentence
		for _, c := range chunks {
			if len(c) > size {
				assert.Len(t, SplitSentences(c), 1, "oversized chunk must be a single sentence: %q", c)
			}
		}

		// No chunk boundary falls inside a sentence
		var rebuilt []string
		for _, c := range chunks {
			rebuilt = append(rebuilt, SplitSentences(c)...)
		}
		assert.Equal(t, sentences, rebuilt)

		// Deterministic
		assert.Equal(t, chunks, New(size).Chunk(doc))
	}
}

func TestChunk_ScenarioTwentyFiveHundredCharacters(t *testing.T) {
	doc := buildDocument(2500)
	require.GreaterOrEqual(t, len(Normalize(doc)), 2500)

	chunks := New(1000).Chunk(doc)

	assert.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1000)
	}
}

func TestChunkDocument_AssignsIndexAndSource(t *testing.T) {
	chunks := New(10).ChunkDocument("notes.txt", "First one. Second one. Third.")

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "notes.txt", c.Source)
	}
	assert.Equal(t, "notes.txt-2", chunks[2].ID())
}

func TestNew_DefaultsInvalidSize(t *testing.T) {
	assert.Equal(t, DefaultMaxChunkSize, New(0).MaxChunkSize())
	assert.Equal(t, DefaultMaxChunkSize, New(-5).MaxChunkSize())
}
