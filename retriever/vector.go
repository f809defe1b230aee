package retriever

import (
	"context"
	"fmt"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/embeddings"
	"github.com/smallnest/wikirag/log"
)

// VectorRetriever embeds the query and scores stored chunk vectors by cosine
// similarity. When embedding the query fails, the query degrades to lexical
// search instead of failing; that is the only automatic strategy fallback.
type VectorRetriever struct {
	searcher Searcher
	embedder embeddings.Embedder
	fallback *LexicalRetriever
	opts     Options
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVector creates a vector retriever over a searcher and embedder.
func NewVector(searcher Searcher, embedder embeddings.Embedder, opts Options) *VectorRetriever {
	return &VectorRetriever{
		searcher: searcher,
		embedder: embedder,
		fallback: NewLexical(searcher, opts),
		opts:     opts.withDefaults(),
	}
}

// Retrieve embeds the query and runs a script_score similarity search.
func (r *VectorRetriever) Retrieve(ctx context.Context, indexName, query string) (wikirag.RetrievedContext, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Warn("query embedding failed, degrading to lexical search: %v", err)
		return r.fallback.Retrieve(ctx, indexName, query)
	}

	// cosineSimilarity is shifted by +1 so scores stay non-negative.
	body := map[string]any{
		"size":      r.opts.MaxResults,
		"min_score": r.opts.MinScore,
		"query": map[string]any{
			"script_score": map[string]any{
				"query": map[string]any{"exists": map[string]any{"field": "content_vectors"}},
				"script": map[string]any{
					"source": "cosineSimilarity(params.query_vector, 'content_vectors') + 1.0",
					"params": map[string]any{"query_vector": vec},
				},
			},
		},
	}

	hits, err := r.searcher.Search(ctx, indexName, body)
	if err != nil {
		return wikirag.RetrievedContext{}, fmt.Errorf("vector retrieve: %w", err)
	}

	return BuildContext(hits, r.opts), nil
}

// New creates a retriever for the given strategy identifier.
func New(strategy string, searcher Searcher, embedder embeddings.Embedder, opts Options) (Retriever, error) {
	switch strategy {
	case StrategyLexical, "":
		return NewLexical(searcher, opts), nil
	case StrategyVector:
		return NewVector(searcher, embedder, opts), nil
	default:
		return nil, fmt.Errorf("retrieval strategy %q: %w", strategy, wikirag.ErrUnknownProvider)
	}
}
