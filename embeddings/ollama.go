package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smallnest/wikirag"
)

// OllamaEmbedder produces embeddings from a local Ollama model server.
type OllamaEmbedder struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllama creates an embedder backed by an Ollama server. Endpoint is the
// API base, e.g. "http://ollama:11434/api".
func NewOllama(opts Options) (*OllamaEmbedder, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("ollama: %w", wikirag.ErrNoEndpoint)
	}
	model := opts.Model
	if model == "" {
		model = "nomic-embed-text"
	}

	return &OllamaEmbedder{
		endpoint:   strings.TrimSuffix(opts.Endpoint, "/"),
		model:      model,
		httpClient: opts.httpClient(),
	}, nil
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed requests an embedding for one text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := e.endpoint + "/embed"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", wikirag.ErrNoEmbedding, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", wikirag.ErrNoEmbedding, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %v", wikirag.ErrNoEmbedding,
			&wikirag.ProviderError{Provider: "ollama", StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var result ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", wikirag.ErrNoEmbedding, err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: ollama response missing embeddings", wikirag.ErrNoEmbedding)
	}

	return result.Embeddings[0], nil
}

// Dimension returns the declared dimension for the provider.
func (e *OllamaEmbedder) Dimension() int {
	return Dimensions(ProviderOllama)
}

// Provider returns the provider identifier.
func (e *OllamaEmbedder) Provider() string {
	return ProviderOllama
}
