package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// Provider identifiers accepted by New and Dimensions.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// defaultDimension is used for unrecognized providers, matching the most
// common embedding model family.
const defaultDimension = 1536

// Embedder turns text into a fixed-dimension vector. Implementations
// normalize their vendor-specific response envelopes into a plain
// vector-of-floats. Every failure mode (network, non-200, malformed payload,
// missing field) surfaces as an error wrapping wikirag.ErrNoEmbedding so that
// callers can skip the affected chunk and continue.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Provider() string
}

// Options configures an embedding provider client. All providers share the
// same shape; fields irrelevant to a provider are ignored.
type Options struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Dimensions returns the embedding dimension for a provider. This is a pure
// lookup with no network call; it is what index mappings are declared and
// validated against.
func Dimensions(provider string) int {
	switch provider {
	case ProviderOpenAI, ProviderAzure:
		return 1536
	case ProviderOllama:
		return 1024
	case ProviderGemini:
		return 768
	default:
		return defaultDimension
	}
}

// New creates an Embedder for the given provider identifier.
func New(provider string, opts Options) (Embedder, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAI(opts)
	case ProviderAzure:
		return NewAzure(opts)
	case ProviderGemini:
		return NewGemini(opts)
	case ProviderOllama:
		return NewOllama(opts)
	default:
		return nil, fmt.Errorf("%w: %q", wikirag.ErrUnknownProvider, provider)
	}
}

// EmbedBatch embeds each text independently and collects only the successes.
// It returns the vectors along with the indices of the texts that produced
// them; a failed text is logged and skipped, never fatal to the batch.
func EmbedBatch(ctx context.Context, e Embedder, texts []string) ([][]float32, []int) {
	vectors := make([][]float32, 0, len(texts))
	indices := make([]int, 0, len(texts))

	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			log.Warn("embedding failed for text %d/%d: %v", i+1, len(texts), err)
			continue
		}
		vectors = append(vectors, vec)
		indices = append(indices, i)
	}

	return vectors, indices
}
