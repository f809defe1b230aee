package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// LangChainProvider adapts any langchaingo llms.Model to the Provider
// interface, so backends we have no native client for can still serve
// generation.
type LangChainProvider struct {
	model llms.Model
	name  string
}

var _ Provider = (*LangChainProvider)(nil)

// NewLangChain creates a new adapter for langchaingo models.
func NewLangChain(model llms.Model, name string) *LangChainProvider {
	return &LangChainProvider{model: model, name: name}
}

// Name returns the declared provider identifier.
func (p *LangChainProvider) Name() string { return p.name }

// Generate sends one prompt through the underlying langchaingo model. Image
// parts become binary content parts.
func (p *LangChainProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := []llms.ContentPart{llms.TextPart(req.Prompt)}
	for _, part := range req.Parts {
		parts = append(parts, llms.BinaryPart(part.MIMEType, part.Data))
	}

	messages := []llms.MessageContent{{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	}}

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}

	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty completion", p.name)
	}
	return resp.Choices[0].Content, nil
}
