package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallnest/wikirag"
)

// Client is a minimal HTTP client for an Elasticsearch-compatible search
// store. It covers exactly the surface the pipelines need: index discovery,
// creation, mapping inspection and migration, document writes, and search.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBasicAuth sets credentials sent with every request.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a search-store client for the given base URL,
// e.g. "http://elasticsearch:9200".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("search store: %w", wikirag.ErrNoEndpoint)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// catIndex is one row of GET /_cat/indices?format=json.
type catIndex struct {
	Index string `json:"index"`
}

// ListIndices returns the names of all indices in the store.
func (c *Client) ListIndices(ctx context.Context) ([]string, error) {
	var rows []catIndex
	if err := c.do(ctx, http.MethodGet, "/_cat/indices?format=json", nil, &rows); err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Index)
	}
	return names, nil
}

// Mapping describes the field mapping of an index, as sent on creation and
// returned by GetMapping.
type Mapping struct {
	Properties map[string]Field `json:"properties"`
}

// Field is one field declaration inside a mapping.
type Field struct {
	Type       string `json:"type"`
	Dims       int    `json:"dims,omitempty"`
	Index      *bool  `json:"index,omitempty"`
	Similarity string `json:"similarity,omitempty"`
}

// ContentMapping builds the document mapping with a dense_vector field of the
// given dimension scored by cosine similarity.
func ContentMapping(dims int) Mapping {
	indexed := true
	return Mapping{
		Properties: map[string]Field{
			"title":          {Type: "text"},
			"content":        {Type: "text"},
			"content_chunks": {Type: "text"},
			"content_vectors": {
				Type:       "dense_vector",
				Dims:       dims,
				Index:      &indexed,
				Similarity: "cosine",
			},
		},
	}
}

// CreateIndex creates a new index with the given mapping.
func (c *Client) CreateIndex(ctx context.Context, name string, mapping Mapping) error {
	body := map[string]any{"mappings": mapping}
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(name), body, nil); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// GetMapping fetches the current mapping of an index.
func (c *Client) GetMapping(ctx context.Context, name string) (Mapping, error) {
	// Response shape: {"<index>": {"mappings": {...}}}
	var raw map[string]struct {
		Mappings Mapping `json:"mappings"`
	}
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(name)+"/_mapping", nil, &raw); err != nil {
		return Mapping{}, fmt.Errorf("get mapping for %s: %w", name, err)
	}

	entry, ok := raw[name]
	if !ok {
		return Mapping{}, fmt.Errorf("get mapping for %s: %w", name, wikirag.ErrInvalidResponse)
	}
	return entry.Mappings, nil
}

// PutMapping adds fields to an existing index mapping in place.
func (c *Client) PutMapping(ctx context.Context, name string, mapping Mapping) error {
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(name)+"/_mapping", mapping, nil); err != nil {
		return fmt.Errorf("put mapping for %s: %w", name, err)
	}
	return nil
}

// DeleteIndex removes an index. Used by maintenance jobs only.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/"+url.PathEscape(name), nil, nil); err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	return nil
}

// Doc is the stored document shape. ContentVectors may be nil when embedding
// is unavailable; the field is simply omitted from the write.
type Doc struct {
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	ContentChunks  []string    `json:"content_chunks,omitempty"`
	ContentVectors [][]float32 `json:"content_vectors,omitempty"`
}

// IndexDocument writes a document under the given id, overwriting any
// previous version.
func (c *Client) IndexDocument(ctx context.Context, indexName, id string, doc Doc) error {
	path := "/" + url.PathEscape(indexName) + "/_doc/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, doc, nil); err != nil {
		return fmt.Errorf("index document %s: %w", id, err)
	}
	return nil
}

// DeleteDocument removes a document by id. A missing document is not an
// error.
func (c *Client) DeleteDocument(ctx context.Context, indexName, id string) error {
	path := "/" + url.PathEscape(indexName) + "/_doc/" + url.PathEscape(id)
	err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		var provErr *wikirag.ProviderError
		if errors.As(err, &provErr) && provErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// SearchHitSource is the stored document as returned in a search hit.
type SearchHitSource struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	ContentChunks []string `json:"content_chunks"`
}

// SearchHit is one hit in a search response.
type SearchHit struct {
	Score  float64         `json:"_score"`
	Source SearchHitSource `json:"_source"`
}

// SearchResponse is the subset of the store's search envelope we consume.
type SearchResponse struct {
	Hits struct {
		Hits []SearchHit `json:"hits"`
	} `json:"hits"`
}

// Search executes a raw query body against an index.
func (c *Client) Search(ctx context.Context, indexName string, body map[string]any) (*SearchResponse, error) {
	var resp SearchResponse
	path := "/" + url.PathEscape(indexName) + "/_search"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("search %s: %w", indexName, err)
	}
	return &resp, nil
}

// do performs one store request. A nil reqBody sends no body; a nil out
// discards the response body.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search store request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &wikirag.ProviderError{
			Provider:   "search-store",
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", wikirag.ErrInvalidResponse, err)
		}
	}
	return nil
}
