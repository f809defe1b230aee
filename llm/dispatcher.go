package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// DefaultMaxTokens bounds the completion length when no config overrides it.
const DefaultMaxTokens = 1024

// Dispatcher drives one generation request through validate, prompt
// assembly, dispatch with bounded retry, and response normalization. It is
// immutable after construction; per-request variation comes in through the
// request itself.
type Dispatcher struct {
	provider        Provider
	resolver        *AttachmentResolver
	promptSource    PromptSource
	retry           RetryConfig
	temperature     float64
	maxTokens       int
	maxContextChars int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPromptSource wires the loader for operator-managed prompt documents.
func WithPromptSource(source PromptSource) DispatcherOption {
	return func(d *Dispatcher) { d.promptSource = source }
}

// WithRetryConfig overrides the dispatch retry policy.
func WithRetryConfig(cfg RetryConfig) DispatcherOption {
	return func(d *Dispatcher) { d.retry = cfg }
}

// WithDefaultTemperature sets the temperature used when a request carries
// none.
func WithDefaultTemperature(t float64) DispatcherOption {
	return func(d *Dispatcher) { d.temperature = t }
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) DispatcherOption {
	return func(d *Dispatcher) { d.maxTokens = n }
}

// WithMaxContextChars caps the grounding block in the assembled prompt.
func WithMaxContextChars(n int) DispatcherOption {
	return func(d *Dispatcher) { d.maxContextChars = n }
}

// WithAttachmentResolver overrides the default attachment resolver.
func WithAttachmentResolver(r *AttachmentResolver) DispatcherOption {
	return func(d *Dispatcher) { d.resolver = r }
}

// NewDispatcher creates a Dispatcher over a provider.
func NewDispatcher(provider Provider, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		provider:        provider,
		resolver:        NewAttachmentResolver(nil),
		retry:           DefaultRetryConfig(),
		temperature:     0.7,
		maxTokens:       DefaultMaxTokens,
		maxContextChars: DefaultMaxContextChars,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ParseTemperature validates a request temperature string. Empty means "use
// the default"; anything else must parse as a float in [0, 1].
func ParseTemperature(s string, fallback float64) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &wikirag.ValidationError{Field: "temperature", Reason: "not a number"}
	}
	if t < 0 || t > 1 {
		return 0, &wikirag.ValidationError{Field: "temperature", Reason: "must be between 0.0 and 1.0"}
	}
	return t, nil
}

// Generate runs one request end to end. It never returns an error; every
// failure is folded into a result with OK=false and a diagnostic, so callers
// have a single shape to convert for users.
func (d *Dispatcher) Generate(ctx context.Context, req wikirag.GenerationRequest) wikirag.GenerationResult {
	temperature, err := ParseTemperature(req.Temperature, d.temperature)
	if err != nil {
		return failure(err)
	}

	noGrounding := strings.TrimSpace(req.Context) == ""
	if noGrounding && req.Mode == wikirag.ModeWikiOnly {
		// Wiki-only with nothing to ground on: no point burning a model call.
		return wikirag.GenerationResult{Kind: wikirag.KindNoGrounding, OK: true}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	parts, err := d.resolver.Resolve(ctx, req.Attachments)
	if err != nil {
		return failure(err)
	}

	prompt := AssemblePrompt(ctx, req, d.promptSource, d.maxContextChars)
	call := Request{
		Prompt:      prompt,
		Model:       req.Model,
		Temperature: temperature,
		MaxTokens:   d.maxTokens,
		Parts:       parts,
	}

	raw, err := retryGenerate(ctx, d.retry, func() (string, error) {
		return d.provider.Generate(ctx, call)
	})
	if err != nil {
		log.Error("generation via %s failed: %v", d.provider.Name(), err)
		return failure(err)
	}

	answer := Normalize(raw)
	if answer == "" {
		return failure(fmt.Errorf("%s: %w", d.provider.Name(), wikirag.ErrEmptyResponse))
	}

	kind := wikirag.KindAnswer
	if noGrounding {
		kind = wikirag.KindGeneralKnowledge
	}
	return wikirag.GenerationResult{Answer: answer, Kind: kind, OK: true}
}

func failure(err error) wikirag.GenerationResult {
	return wikirag.GenerationResult{Diagnostic: err.Error()}
}

// Normalize strips C0 control characters (keeping newline and tab) and trims
// surrounding whitespace. An empty string after normalization means the
// reply is unusable.
func Normalize(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}
