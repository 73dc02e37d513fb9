package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/models"
	"github.com/ternarybob/docchat/internal/services/chunker"
	"github.com/ternarybob/docchat/internal/services/extract"
)

type fakeIngest struct {
	docs []*models.Document
	err  error
}

func (f *fakeIngest) Ingest(ctx context.Context, doc *models.Document) (*models.IngestResult, error) {
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return nil, f.err
	}
	return &models.IngestResult{Source: doc.Source, ChunkCount: 3, FirstChunkPreview: "preview..."}, nil
}

type memoryRegistry struct {
	records map[string]*models.IngestRecord
	saveErr error
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{records: make(map[string]*models.IngestRecord)}
}

func (m *memoryRegistry) SaveIngestRecord(ctx context.Context, record *models.IngestRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[record.Source] = record
	return nil
}

func (m *memoryRegistry) GetIngestRecord(ctx context.Context, source string) (*models.IngestRecord, error) {
	record, ok := m.records[source]
	if !ok {
		return nil, models.ErrNotFound
	}
	return record, nil
}

func (m *memoryRegistry) ListIngestRecords(ctx context.Context) ([]*models.IngestRecord, error) {
	var out []*models.IngestRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func newTestService(ingest *fakeIngest, registry *memoryRegistry) *Service {
	logger := arbor.NewLogger()
	return NewService(extract.NewService(logger), ingest, registry, logger)
}

func TestIngestFile_RecordsRegistryEntry(t *testing.T) {
	ingest := &fakeIngest{}
	registry := newMemoryRegistry()
	data := []byte("Hello world. This is a test.")

	result, err := newTestService(ingest, registry).IngestFile(context.Background(), "a.txt", data)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunkCount)

	require.Len(t, ingest.docs, 1)
	assert.Equal(t, "a.txt", ingest.docs[0].Source)
	assert.Equal(t, string(data), string(ingest.docs[0].Content))

	record := registry.records["a.txt"]
	require.NotNil(t, record)
	assert.Equal(t, 3, record.ChunkCount)
	assert.Equal(t, common.ContentHash(data), record.ContentHash)
	assert.Contains(t, record.ID, "ing_")
	assert.False(t, record.IngestedAt.IsZero())
}

func TestIngestFile_ExtractsMarkdown(t *testing.T) {
	ingest := &fakeIngest{}
	_, err := newTestService(ingest, newMemoryRegistry()).IngestFile(context.Background(), "doc.md", []byte("# Title\n\nBody *text*."))
	require.NoError(t, err)
	assert.NotContains(t, string(ingest.docs[0].Content), "#")
	assert.Contains(t, string(ingest.docs[0].Content), "Body text.")
}

func TestIngestFile_Latin1TextLosesNonASCII(t *testing.T) {
	ingest := &fakeIngest{}

	_, err := newTestService(ingest, newMemoryRegistry()).IngestFile(context.Background(), "cafe.txt", []byte("Caf\xe9 opens at nine."))
	require.NoError(t, err)

	require.Len(t, ingest.docs, 1)
	assert.Equal(t, []string{"Caf opens at nine."}, chunker.New(0).Chunk(string(ingest.docs[0].Content)))
}

func TestIngestFile_Failures(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := newTestService(&fakeIngest{}, newMemoryRegistry()).IngestFile(context.Background(), "a.txt", nil)
		assert.ErrorIs(t, err, models.ErrEmptyInput)
	})

	t.Run("unsupported format", func(t *testing.T) {
		ingest := &fakeIngest{}
		_, err := newTestService(ingest, newMemoryRegistry()).IngestFile(context.Background(), "a.pdf", []byte("%PDF"))
		assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
		assert.Empty(t, ingest.docs)
	})

	t.Run("ingest failure leaves registry untouched", func(t *testing.T) {
		registry := newMemoryRegistry()
		ingest := &fakeIngest{err: models.ErrEmbedding}
		_, err := newTestService(ingest, registry).IngestFile(context.Background(), "a.txt", []byte("Text."))
		assert.ErrorIs(t, err, models.ErrEmbedding)
		assert.Empty(t, registry.records)
	})

	t.Run("registry failure does not fail the upload", func(t *testing.T) {
		registry := newMemoryRegistry()
		registry.saveErr = errors.New("disk full")
		result, err := newTestService(&fakeIngest{}, registry).IngestFile(context.Background(), "a.txt", []byte("Text."))
		require.NoError(t, err)
		assert.Equal(t, 3, result.ChunkCount)
	})
}

func TestIsCurrent(t *testing.T) {
	registry := newMemoryRegistry()
	service := newTestService(&fakeIngest{}, registry)
	ctx := context.Background()

	current, err := service.IsCurrent(ctx, "a.txt", []byte("v1"))
	require.NoError(t, err)
	assert.False(t, current, "unknown file")

	_, err = service.IngestFile(ctx, "a.txt", []byte("v1"))
	require.NoError(t, err)

	current, err = service.IsCurrent(ctx, "a.txt", []byte("v1"))
	require.NoError(t, err)
	assert.True(t, current)

	current, err = service.IsCurrent(ctx, "a.txt", []byte("v2"))
	require.NoError(t, err)
	assert.False(t, current)
}
