package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smallnest/wikirag"
)

// OllamaProvider generates text through a local Ollama server.
type OllamaProvider struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllama creates a provider backed by an Ollama server. Endpoint is the
// API base, e.g. "http://ollama:11434/api".
func NewOllama(opts Options) (*OllamaProvider, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("ollama: %w", wikirag.ErrNoEndpoint)
	}
	model := opts.Model
	if model == "" {
		model = "llama3"
	}

	return &OllamaProvider{
		endpoint:   strings.TrimSuffix(opts.Endpoint, "/"),
		model:      model,
		httpClient: opts.httpClient(),
	}, nil
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
	Images  []string      `json:"images,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string { return ProviderOllama }

// Generate sends one prompt and returns the raw completion text. Image parts
// ride along as base64 strings in the images array.
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.Model != "" {
		payload.Model = req.Model
	}
	for _, part := range req.Parts {
		payload.Images = append(payload.Images, base64.StdEncoding.EncodeToString(part.Data))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &wikirag.ProviderError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", wikirag.ErrInvalidResponse, err)
	}
	if result.Response == "" {
		return "", fmt.Errorf("ollama: %w", wikirag.ErrEmptyResponse)
	}

	return result.Response, nil
}
