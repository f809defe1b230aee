package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/smallnest/wikirag"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider generates text through the Google Generative Language API.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Provider = (*GeminiProvider)(nil)

// NewGemini creates a provider backed by the Gemini generateContent API.
func NewGemini(opts Options) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", wikirag.ErrNoCredentials)
	}

	base := opts.Endpoint
	if base == "" {
		base = defaultGeminiBase
	}
	model := opts.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimSuffix(base, "/"),
		model:      model,
		httpClient: opts.httpClient(),
	}, nil
}

type geminiGeneratePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerateContent struct {
	Role  string               `json:"role"`
	Parts []geminiGeneratePart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiGenerateRequest struct {
	Contents         []geminiGenerateContent `json:"contents"`
	GenerationConfig geminiGenerationConfig  `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Name returns the provider identifier.
func (p *GeminiProvider) Name() string { return ProviderGemini }

// Generate sends one prompt and returns the first candidate's text. Image
// parts are attached as inline_data blocks alongside the text part.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	parts := []geminiGeneratePart{{Text: req.Prompt}}
	for _, part := range req.Parts {
		parts = append(parts, geminiGeneratePart{
			InlineData: &geminiInlineData{
				MIMEType: part.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(part.Data),
			},
		})
	}

	payload := geminiGenerateRequest{
		Contents: []geminiGenerateContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &wikirag.ProviderError{Provider: ProviderGemini, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result geminiGenerateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", wikirag.ErrInvalidResponse, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", wikirag.ErrEmptyResponse)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
