package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/index"
	"github.com/smallnest/wikirag/llm"
	"github.com/smallnest/wikirag/log"
	"github.com/smallnest/wikirag/retriever"
)

// DefaultMaxMessageChars caps the user message at the pipeline boundary.
const DefaultMaxMessageChars = 1000

// Answer is the user-facing outcome of one query. Diagnostic carries a
// human-readable reason when OK is false; internal errors never cross this
// boundary.
type Answer struct {
	Text       string
	Source     string
	Kind       wikirag.AnswerKind
	OK         bool
	Diagnostic string
}

// AskRequest is one user query with optional per-request overrides. Model
// and Timeout override the generation provider's configured model and call
// deadline; zero values mean the configured defaults.
type AskRequest struct {
	Message      string
	AllowGeneral bool
	Temperature  string
	Model        string
	Timeout      time.Duration
	Attachments  []wikirag.Attachment
}

// Query answers user questions: retrieve grounding from the active index,
// dispatch to the generation provider, attribute sources.
type Query struct {
	manager         *index.Manager
	retriever       retriever.Retriever
	dispatcher      *llm.Dispatcher
	maxMessageChars int
	customPrompt    string
	promptDocument  string
}

// QueryOption configures a Query pipeline.
type QueryOption func(*Query)

// WithMaxMessageChars overrides the message length cap.
func WithMaxMessageChars(n int) QueryOption {
	return func(q *Query) {
		if n > 0 {
			q.maxMessageChars = n
		}
	}
}

// WithCustomPrompt sets an operator-supplied literal instruction header.
func WithCustomPrompt(prompt string) QueryOption {
	return func(q *Query) { q.customPrompt = prompt }
}

// WithPromptDocument names an operator-managed prompt document.
func WithPromptDocument(name string) QueryOption {
	return func(q *Query) { q.promptDocument = name }
}

// NewQuery creates a query pipeline.
func NewQuery(manager *index.Manager, r retriever.Retriever, dispatcher *llm.Dispatcher, opts ...QueryOption) *Query {
	q := &Query{
		manager:         manager,
		retriever:       r,
		dispatcher:      dispatcher,
		maxMessageChars: DefaultMaxMessageChars,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Ask answers one user message. Validation failures and internal errors are
// folded into the Answer; the method itself never fails.
func (q *Query) Ask(ctx context.Context, req AskRequest) Answer {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return invalid("message", "empty")
	}
	if len(message) > q.maxMessageChars {
		return invalid("message", "too long")
	}

	mode := wikirag.ModeWikiOnly
	if req.AllowGeneral {
		mode = wikirag.ModeGeneralKnowledge
	}

	rc := q.retrieve(ctx, message)

	result := q.dispatcher.Generate(ctx, wikirag.GenerationRequest{
		Query:          message,
		Context:        rc.Text,
		Mode:           mode,
		CustomPrompt:   q.customPrompt,
		PromptDocument: q.promptDocument,
		Temperature:    req.Temperature,
		Model:          req.Model,
		Timeout:        req.Timeout,
		Attachments:    req.Attachments,
	})

	answer := Answer{
		Text:       result.Answer,
		Kind:       result.Kind,
		OK:         result.OK,
		Diagnostic: result.Diagnostic,
	}
	if result.OK && result.Kind == wikirag.KindAnswer {
		if sources := rc.Sources(); len(sources) > 0 {
			answer.Source = sources[0]
		}
	}
	return answer
}

// retrieve resolves grounding for a message. A missing index or a store
// failure degrades to empty grounding; the dispatcher then applies the
// mode's no-grounding policy.
func (q *Query) retrieve(ctx context.Context, message string) wikirag.RetrievedContext {
	name, err := q.manager.ActiveIndexName(ctx)
	if err != nil {
		if !errors.Is(err, wikirag.ErrNoIndex) {
			log.Warn("active index lookup failed, answering without grounding: %v", err)
		}
		return wikirag.RetrievedContext{}
	}

	rc, err := q.retriever.Retrieve(ctx, name, message)
	if err != nil {
		log.Warn("retrieval failed, answering without grounding: %v", err)
		return wikirag.RetrievedContext{}
	}
	return rc
}

func invalid(field, reason string) Answer {
	err := &wikirag.ValidationError{Field: field, Reason: reason}
	return Answer{Diagnostic: err.Error()}
}
