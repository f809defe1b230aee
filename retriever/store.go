package retriever

import (
	"context"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/index"
)

// StoreSearcher adapts the search-store client to the Searcher interface,
// flattening the store's hit envelope into plain hits.
type StoreSearcher struct {
	client *index.Client
}

var _ Searcher = (*StoreSearcher)(nil)

// NewStoreSearcher wraps a search-store client.
func NewStoreSearcher(client *index.Client) *StoreSearcher {
	return &StoreSearcher{client: client}
}

// Search executes the query body and flattens the response hits.
func (s *StoreSearcher) Search(ctx context.Context, indexName string, body map[string]any) ([]wikirag.SearchHit, error) {
	resp, err := s.client.Search(ctx, indexName, body)
	if err != nil {
		return nil, err
	}

	hits := make([]wikirag.SearchHit, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		hits = append(hits, wikirag.SearchHit{
			Title:      hit.Source.Title,
			Content:    hit.Source.Content,
			Score:      hit.Score,
			ChunkIndex: -1,
		})
	}
	return hits, nil
}
