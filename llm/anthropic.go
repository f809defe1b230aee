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

const (
	defaultAnthropicBase  = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-haiku-20240307"
)

// AnthropicProvider generates text through the Anthropic messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropic creates a provider backed by the Anthropic API.
func NewAnthropic(opts Options) (*AnthropicProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", wikirag.ErrNoCredentials)
	}

	base := opts.Endpoint
	if base == "" {
		base = defaultAnthropicBase
	}
	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicProvider{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimSuffix(base, "/"),
		model:      model,
		httpClient: opts.httpClient(),
	}, nil
}

type anthropicContentBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// Generate sends one prompt and returns the first text block of the reply.
// Image parts are attached as inline base64 sources before the text block.
func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	var blocks []anthropicContentBlock
	for _, part := range req.Parts {
		blocks = append(blocks, anthropicContentBlock{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: part.MIMEType,
				Data:      base64.StdEncoding.EncodeToString(part.Data),
			},
		})
	}
	blocks = append(blocks, anthropicContentBlock{Type: "text", Text: req.Prompt})

	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		Messages:    []anthropicMessage{{Role: "user", Content: blocks}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &wikirag.ProviderError{Provider: ProviderAnthropic, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", wikirag.ErrInvalidResponse, err)
	}

	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: %w", wikirag.ErrEmptyResponse)
}
