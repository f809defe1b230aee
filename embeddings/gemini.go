package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/smallnest/wikirag"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiEmbedder produces embeddings via the Google Generative Language API.
type GeminiEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGemini creates an embedder backed by the Gemini embedContent API.
func NewGemini(opts Options) (*GeminiEmbedder, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", wikirag.ErrNoCredentials)
	}

	base := opts.Endpoint
	if base == "" {
		base = defaultGeminiBase
	}
	model := opts.Model
	if model == "" {
		model = "text-embedding-004"
	}

	return &GeminiEmbedder{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimSuffix(base, "/"),
		model:      model,
		httpClient: opts.httpClient(),
	}, nil
}

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed requests an embedding for one text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(geminiEmbedRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s",
		e.baseURL, url.PathEscape(e.model), url.QueryEscape(e.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", wikirag.ErrNoEmbedding, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", wikirag.ErrNoEmbedding, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %v", wikirag.ErrNoEmbedding,
			&wikirag.ProviderError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var result geminiEmbedResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", wikirag.ErrNoEmbedding, err)
	}

	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: gemini response missing embedding values", wikirag.ErrNoEmbedding)
	}

	return result.Embedding.Values, nil
}

// Dimension returns the declared dimension for the provider.
func (e *GeminiEmbedder) Dimension() int {
	return Dimensions(ProviderGemini)
}

// Provider returns the provider identifier.
func (e *GeminiEmbedder) Provider() string {
	return ProviderGemini
}
