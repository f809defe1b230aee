package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallnest/wikirag"
)

// OpenAIProvider generates text through the OpenAI chat completions API, or
// an Azure OpenAI deployment when built with NewAzure.
type OpenAIProvider struct {
	client   *openai.Client
	model    string
	provider string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAI creates a provider backed by the OpenAI API. Endpoint may point
// to any OpenAI-compatible base URL; empty means the public API.
func NewOpenAI(opts Options) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", wikirag.ErrNoCredentials)
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.Endpoint != "" {
		cfg.BaseURL = opts.Endpoint
	}
	cfg.HTTPClient = opts.httpClient()

	model := opts.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderOpenAI,
	}, nil
}

// NewAzure creates a provider backed by an Azure OpenAI deployment. The
// endpoint must name the resource; the model doubles as the deployment name.
func NewAzure(opts Options) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("azure: %w", wikirag.ErrNoCredentials)
	}
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("azure: %w", wikirag.ErrNoEndpoint)
	}

	cfg := openai.DefaultAzureConfig(opts.APIKey, opts.Endpoint)
	cfg.HTTPClient = opts.httpClient()

	model := opts.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderAzure,
	}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string { return p.provider }

// Generate sends one prompt and returns the first choice's text. Image parts
// are attached as data-URL message parts.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Parts) == 0 {
		message.Content = req.Prompt
	} else {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
		for _, part := range req.Parts {
			dataURL := fmt.Sprintf("data:%s;base64,%s", part.MIMEType, base64.StdEncoding.EncodeToString(part.Data))
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			})
		}
		message.MultiContent = parts
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{message},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &wikirag.ProviderError{
				Provider:   p.provider,
				StatusCode: apiErr.HTTPStatusCode,
				Body:       apiErr.Message,
			}
		}
		return "", fmt.Errorf("%s request: %w", p.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.provider, wikirag.ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
