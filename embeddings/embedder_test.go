package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/wikirag"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		provider string
		want     int
	}{
		{ProviderOpenAI, 1536},
		{ProviderAzure, 1536},
		{ProviderOllama, 1024},
		{ProviderGemini, 768},
		{"something-else", 1536},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, Dimensions(tt.provider))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		_, err := New("watson", Options{APIKey: "key"})
		assert.ErrorIs(t, err, wikirag.ErrUnknownProvider)
	})

	t.Run("ollama requires endpoint", func(t *testing.T) {
		_, err := New(ProviderOllama, Options{})
		assert.ErrorIs(t, err, wikirag.ErrNoEndpoint)
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		_, err := New(ProviderGemini, Options{})
		assert.ErrorIs(t, err, wikirag.ErrNoCredentials)
	})

	t.Run("azure requires endpoint and key", func(t *testing.T) {
		_, err := New(ProviderAzure, Options{APIKey: "key"})
		assert.ErrorIs(t, err, wikirag.ErrNoEndpoint)

		_, err = New(ProviderAzure, Options{Endpoint: "https://example.openai.azure.com"})
		assert.ErrorIs(t, err, wikirag.ErrNoCredentials)
	})

	t.Run("openai requires key", func(t *testing.T) {
		_, err := New(ProviderOpenAI, Options{})
		assert.ErrorIs(t, err, wikirag.ErrNoCredentials)

		e, err := New(ProviderOpenAI, Options{APIKey: "key"})
		assert.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, e.Provider())
		assert.Equal(t, 1536, e.Dimension())
	})
}

// stubEmbedder fails on texts listed in failOn and returns a fixed vector
// otherwise.
type stubEmbedder struct {
	failOn map[string]bool
	vector []float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.failOn[text] {
		return nil, wikirag.ErrNoEmbedding
	}
	return s.vector, nil
}

func (s *stubEmbedder) Dimension() int   { return len(s.vector) }
func (s *stubEmbedder) Provider() string { return "stub" }

func TestEmbedBatch(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		e := &stubEmbedder{vector: []float32{1, 2, 3}}
		vectors, indices := EmbedBatch(context.Background(), e, []string{"a", "b", "c"})
		assert.Len(t, vectors, 3)
		assert.Equal(t, []int{0, 1, 2}, indices)
	})

	t.Run("failures are skipped, not fatal", func(t *testing.T) {
		e := &stubEmbedder{
			failOn: map[string]bool{"b": true},
			vector: []float32{1, 2, 3},
		}
		vectors, indices := EmbedBatch(context.Background(), e, []string{"a", "b", "c"})
		assert.Len(t, vectors, 2)
		assert.Equal(t, []int{0, 2}, indices)
	})

	t.Run("all fail yields empty slices", func(t *testing.T) {
		e := &stubEmbedder{
			failOn: map[string]bool{"a": true, "b": true},
			vector: []float32{1},
		}
		vectors, indices := EmbedBatch(context.Background(), e, []string{"a", "b"})
		assert.Empty(t, vectors)
		assert.Empty(t, indices)
	})
}

// failingEmbedder always errors, used to verify error propagation through
// decorators.
type failingEmbedder struct{}

func (f *failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("boom")
}

func (f *failingEmbedder) Dimension() int   { return 4 }
func (f *failingEmbedder) Provider() string { return "failing" }
