package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallnest/wikirag"
)

// OpenAIEmbedder produces embeddings via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	provider string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAI creates an embedder backed by the OpenAI API. Endpoint may point
// to any OpenAI-compatible base URL; empty means the public API.
func NewOpenAI(opts Options) (*OpenAIEmbedder, error) {
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
		model = string(openai.AdaEmbeddingV2)
	}

	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderOpenAI,
	}, nil
}

// NewAzure creates an embedder backed by an Azure OpenAI deployment. The
// endpoint must name the resource, e.g. "https://res.openai.azure.com".
func NewAzure(opts Options) (*OpenAIEmbedder, error) {
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
		model = string(openai.AdaEmbeddingV2)
	}

	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderAzure,
	}, nil
}

// Embed requests an embedding for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wikirag.ErrNoEmbedding, e.provider, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: %s response missing embedding data", wikirag.ErrNoEmbedding, e.provider)
	}

	return resp.Data[0].Embedding, nil
}

// Dimension returns the declared dimension for the provider.
func (e *OpenAIEmbedder) Dimension() int {
	return Dimensions(e.provider)
}

// Provider returns the provider identifier.
func (e *OpenAIEmbedder) Provider() string {
	return e.provider
}
