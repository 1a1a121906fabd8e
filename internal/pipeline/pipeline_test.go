package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hivemind/apps/ingestor/internal/ingest"
	"hivemind/apps/ingestor/internal/pipeline"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) EnsureCollection(ctx context.Context, collection string) error {
	return m.Called(ctx, collection).Error(0)
}

func (m *MockVectorStore) StoreDocuments(ctx context.Context, collection string, objects []pipeline.Object) error {
	return m.Called(ctx, collection, objects).Error(0)
}

func doc(id, text string) ingest.Document {
	return ingest.Document{ID: id, Text: text, Metadata: map[string]any{"source": "discord"}}
}

func TestPipeline_IngestDocuments(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	p := pipeline.New(e, s)

	s.On("EnsureCollection", mock.Anything, "c1_p1").Return(nil)
	e.On("Embed", mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, "source: discord") && assert.Contains(t, text, "hello")
	})).Return([]float32{0.1, 0.2}, nil)
	s.On("StoreDocuments", mock.Anything, "c1_p1", mock.MatchedBy(func(objects []pipeline.Object) bool {
		return len(objects) == 1 && objects[0].DocID == "d1" && len(objects[0].Vector) == 2
	})).Return(nil)

	err := p.IngestDocuments(context.Background(), []ingest.Document{doc("d1", "hello")}, "c1_p1")
	require.NoError(t, err)
	e.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestPipeline_EmptyTextIsPermanent(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	p := pipeline.New(e, s)

	err := p.IngestDocuments(context.Background(), []ingest.Document{doc("d1", "  ")}, "c1_p1")
	require.Error(t, err)
	assert.True(t, ingest.IsPermanent(err))
	s.AssertNotCalled(t, "EnsureCollection", mock.Anything, mock.Anything)
	e.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestPipeline_EmbedFailureIsTransient(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	p := pipeline.New(e, s)

	s.On("EnsureCollection", mock.Anything, "c1_p1").Return(nil)
	e.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	err := p.IngestDocuments(context.Background(), []ingest.Document{doc("d1", "hello")}, "c1_p1")
	require.Error(t, err)
	assert.False(t, ingest.IsPermanent(err))
	assert.Contains(t, err.Error(), "rate limited")
	s.AssertNotCalled(t, "StoreDocuments", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_StoreFailureIsTransient(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	p := pipeline.New(e, s)

	s.On("EnsureCollection", mock.Anything, "c1_p1").Return(nil)
	e.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	s.On("StoreDocuments", mock.Anything, "c1_p1", mock.Anything).Return(errors.New("connection reset"))

	err := p.IngestDocuments(context.Background(), []ingest.Document{doc("d1", "hello")}, "c1_p1")
	require.Error(t, err)
	assert.False(t, ingest.IsPermanent(err))
}

func TestEmbedText(t *testing.T) {
	t.Run("Excluded Keys Omitted", func(t *testing.T) {
		d := ingest.Document{
			ID:   "d1",
			Text: "body",
			Metadata: map[string]any{
				"author":   "alice",
				"internal": "secret",
			},
			ExcludedEmbedKeys: []string{"internal"},
		}
		text := pipeline.EmbedText(d)
		assert.Contains(t, text, "author: alice")
		assert.NotContains(t, text, "secret")
		assert.Contains(t, text, "---\nbody")
	})

	t.Run("No Metadata", func(t *testing.T) {
		d := ingest.Document{ID: "d1", Text: "just text"}
		assert.Equal(t, "just text", pipeline.EmbedText(d))
	})

	t.Run("Stable Key Order", func(t *testing.T) {
		d := ingest.Document{
			ID:       "d1",
			Text:     "body",
			Metadata: map[string]any{"b": 2, "a": 1, "c": 3},
		}
		assert.Equal(t, pipeline.EmbedText(d), pipeline.EmbedText(d))
	})
}
