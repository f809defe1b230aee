package retriever

import (
	"context"

	"github.com/smallnest/wikirag"
)

// Strategy identifiers accepted by New.
const (
	StrategyLexical = "lexical"
	StrategyVector  = "vector"
)

// Default retrieval tuning. MaxResults hits come back from the store; only
// the top MergedHits are merged into the generation context.
const (
	DefaultMaxResults = 5
	DefaultMergedHits = 3
	DefaultMinScore   = 1.0
)

// Searcher executes a raw query body against an index. *index.Client
// satisfies it; tests substitute fakes.
type Searcher interface {
	Search(ctx context.Context, indexName string, body map[string]any) (hits []wikirag.SearchHit, err error)
}

// Retriever resolves a query against the active index into a grounding
// context. An empty context is a valid outcome, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, indexName, query string) (wikirag.RetrievedContext, error)
}

// Options tunes a retrieval strategy. Zero values take the defaults above.
type Options struct {
	MaxResults      int
	MergedHits      int
	MinScore        float64
	MaxContextChars int
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MergedHits <= 0 {
		o.MergedHits = DefaultMergedHits
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}
