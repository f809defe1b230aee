package retriever

import (
	"context"
	"fmt"

	"github.com/smallnest/wikirag"
)

// LexicalRetriever matches the query against title and content fields with
// fuzziness tolerance, weighting title matches double.
type LexicalRetriever struct {
	searcher Searcher
	opts     Options
}

var _ Retriever = (*LexicalRetriever)(nil)

// NewLexical creates a lexical retriever over a searcher.
func NewLexical(searcher Searcher, opts Options) *LexicalRetriever {
	return &LexicalRetriever{
		searcher: searcher,
		opts:     opts.withDefaults(),
	}
}

// Retrieve runs a multi_match query and merges the top hits into a context.
func (r *LexicalRetriever) Retrieve(ctx context.Context, indexName, query string) (wikirag.RetrievedContext, error) {
	body := map[string]any{
		"size":      r.opts.MaxResults,
		"min_score": r.opts.MinScore,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "content"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
	}

	hits, err := r.searcher.Search(ctx, indexName, body)
	if err != nil {
		return wikirag.RetrievedContext{}, fmt.Errorf("lexical retrieve: %w", err)
	}

	return BuildContext(hits, r.opts), nil
}
