package embeddings

import (
	"context"
	"fmt"

	lcembeddings "github.com/tmc/langchaingo/embeddings"

	"github.com/smallnest/wikirag"
)

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to our Embedder
// interface, so any model langchaingo supports can back the vector index.
type LangChainEmbedder struct {
	embedder  lcembeddings.Embedder
	provider  string
	dimension int
}

var _ Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder creates a new adapter for langchaingo embedders. The
// provider name and dimension are declared by the caller because langchaingo
// does not expose them.
func NewLangChainEmbedder(embedder lcembeddings.Embedder, provider string, dimension int) *LangChainEmbedder {
	return &LangChainEmbedder{
		embedder:  embedder,
		provider:  provider,
		dimension: dimension,
	}
}

// Embed embeds text using the underlying langchaingo embedder.
func (e *LangChainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wikirag.ErrNoEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, wikirag.ErrNoEmbedding
	}
	return vec, nil
}

// Dimension returns the declared vector dimension.
func (e *LangChainEmbedder) Dimension() int {
	return e.dimension
}

// Provider returns the declared provider identifier.
func (e *LangChainEmbedder) Provider() string {
	return e.provider
}
