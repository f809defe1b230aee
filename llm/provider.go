package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/smallnest/wikirag"
)

// Provider identifiers accepted by New.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderAzure     = "azure"
	ProviderGemini    = "gemini"
)

// Part is one binary attachment encoded into the provider request. Each
// provider maps it onto its own multi-modal envelope.
type Part struct {
	MIMEType string
	Data     []byte
}

// Request is a fully assembled generation call: the prompt already contains
// the instruction header and grounding context.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	Parts       []Part
}

// Provider sends one assembled request to a model backend and returns the
// raw text reply. Errors carrying a transient status are retried by the
// dispatcher; everything else fails immediately.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Options configures a generation provider client.
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
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// New creates a Provider for the given provider identifier.
func New(provider string, opts Options) (Provider, error) {
	switch provider {
	case ProviderOllama:
		return NewOllama(opts)
	case ProviderOpenAI:
		return NewOpenAI(opts)
	case ProviderAnthropic:
		return NewAnthropic(opts)
	case ProviderAzure:
		return NewAzure(opts)
	case ProviderGemini:
		return NewGemini(opts)
	default:
		return nil, fmt.Errorf("%w: %q", wikirag.ErrUnknownProvider, provider)
	}
}
