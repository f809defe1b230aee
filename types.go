package wikirag

import "time"

// Document is a unit of host content to be indexed. The host CMS owns the
// document; the pipeline only reads it.
type Document struct {
	ID          string
	Title       string
	Text        string
	Attachments []Attachment
}

// Attachment references binary content associated with a document or a query.
// Bytes are resolved from CachePath first, falling back to URL.
type Attachment struct {
	Name      string
	MIMEType  string
	CachePath string
	URL       string
}

// Chunk is a bounded contiguous slice of a document's text, the unit of
// embedding and indexing. Chunks are immutable and superseded as a whole when
// the parent document is re-indexed.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// SearchHit is a single scored result from the search store.
type SearchHit struct {
	Title   string
	Content string
	Score   float64
	// ChunkIndex is the ordinal of the matched chunk, or -1 when the store
	// does not attribute the hit to a specific chunk.
	ChunkIndex int
}

// RetrievedContext is the ordered, title-deduplicated set of hits merged into
// a grounding block for generation. An empty context means "no grounding
// available" and is not an error.
type RetrievedContext struct {
	Hits []SearchHit
	Text string
}

// Empty reports whether no grounding was retrieved.
func (rc RetrievedContext) Empty() bool {
	return len(rc.Hits) == 0 || rc.Text == ""
}

// Sources returns the deduplicated source titles in rank order.
func (rc RetrievedContext) Sources() []string {
	seen := make(map[string]bool, len(rc.Hits))
	sources := make([]string, 0, len(rc.Hits))
	for _, hit := range rc.Hits {
		if hit.Title == "" || seen[hit.Title] {
			continue
		}
		seen[hit.Title] = true
		sources = append(sources, hit.Title)
	}
	return sources
}

// Mode selects the grounding policy for generation.
type Mode int

const (
	// ModeWikiOnly answers strictly from retrieved context.
	ModeWikiOnly Mode = iota
	// ModeGeneralKnowledge prefers retrieved context but may fall back to the
	// model's general knowledge, tagging such answers.
	ModeGeneralKnowledge
)

// GenerationRequest carries one grounded generation call.
type GenerationRequest struct {
	Query   string
	Context string
	Mode    Mode

	// CustomPrompt, when non-empty, replaces the built-in instruction header
	// outright. PromptDocument names an operator-managed prompt page to load
	// when CustomPrompt is empty.
	CustomPrompt   string
	PromptDocument string

	// Temperature is an optional per-request override, parsed and validated
	// into [0, 1] before any network call. Empty means the dispatcher default.
	Temperature string

	// Model overrides the provider's configured model for this request only.
	// Timeout bounds the whole generation call, attachment resolution
	// included. Zero values mean the configured defaults.
	Model   string
	Timeout time.Duration

	Attachments []Attachment
}

// AnswerKind tags how a generation result was produced, so the presentation
// layer can decide rendering instead of sniffing sentinel strings in the
// answer text.
type AnswerKind int

const (
	// KindAnswer is a grounded answer produced from retrieved context.
	KindAnswer AnswerKind = iota
	// KindNoGrounding means no context was available and the wiki-only policy
	// forbids answering from general knowledge.
	KindNoGrounding
	// KindGeneralKnowledge is an answer produced without grounding under
	// ModeGeneralKnowledge; callers typically render a disclaimer.
	KindGeneralKnowledge
)

// GenerationResult is the normalized outcome of one generation request. OK is
// false on any failure; Diagnostic then carries a human-readable reason. A
// failed result never carries a partial answer.
type GenerationResult struct {
	Answer     string
	Kind       AnswerKind
	OK         bool
	Diagnostic string
}
