package splitter

import (
	"regexp"
	"strings"

	"github.com/smallnest/wikirag"
)

// headingPattern matches wiki section headings such as "== History ==" on
// their own line. Two or more '=' characters on each side.
var headingPattern = regexp.MustCompile(`(?m)^={2,}[^=\n]+={2,}[ \t]*$`)

// paragraphPattern matches paragraph breaks (a blank, possibly
// whitespace-only, line).
var paragraphPattern = regexp.MustCompile(`\n[ \t]*\n`)

// sentencePattern matches sentence terminators followed by whitespace.
var sentencePattern = regexp.MustCompile(`[.!?]+\s+`)

// SectionSplitter splits wiki text into bounded chunks along structural
// boundaries: section headings first, then paragraphs, then sentences, with a
// fixed-size hard split as the last resort. Splitting is pure; the same input
// always yields the same chunks in document order.
type SectionSplitter struct {
	maxChunkSize int
}

// SectionSplitterOption configures the SectionSplitter
type SectionSplitterOption func(*SectionSplitter)

// WithMaxChunkSize sets the maximum chunk size in bytes
func WithMaxChunkSize(size int) SectionSplitterOption {
	return func(s *SectionSplitter) {
		s.maxChunkSize = size
	}
}

// NewSectionSplitter creates a new SectionSplitter
func NewSectionSplitter(opts ...SectionSplitterOption) *SectionSplitter {
	s := &SectionSplitter{
		maxChunkSize: 5000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MaxChunkSize returns the configured chunk size limit
func (s *SectionSplitter) MaxChunkSize() int {
	return s.maxChunkSize
}

// Split splits text into chunks of at most the configured size. Heading
// markers are preserved as chunk content. Empty and whitespace-only chunks
// are discarded. A chunk may exceed the limit only when a single unbreakable
// run survives sentence splitting, in which case it is hard-split.
func (s *SectionSplitter) Split(text string) []string {
	var chunks []string
	for _, section := range splitSections(text) {
		if len(section) <= s.maxChunkSize {
			chunks = append(chunks, section)
			continue
		}
		chunks = append(chunks, s.subdivide(section)...)
	}

	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			result = append(result, chunk)
		}
	}
	return result
}

// SplitDocument splits a document's text and wraps the pieces as ordinal
// chunks attributed to the document.
func (s *SectionSplitter) SplitDocument(doc wikirag.Document) []wikirag.Chunk {
	pieces := s.Split(doc.Text)
	chunks := make([]wikirag.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = wikirag.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Text:       piece,
		}
	}
	return chunks
}

// splitSections splits text at heading lines, attaching each heading to the
// section it introduces. Text with no headings comes back as one section.
func splitSections(text string) []string {
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var sections []string
	start := 0
	for _, loc := range locs {
		if loc[0] > start {
			sections = append(sections, text[start:loc[0]])
		}
		start = loc[0]
	}
	sections = append(sections, text[start:])
	return sections
}

// subdivide breaks an oversized section by paragraphs, then sentences, then a
// hard split, accumulating into a running buffer that is flushed whenever the
// next piece would exceed the limit.
func (s *SectionSplitter) subdivide(text string) []string {
	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		if buf.Len() > s.maxChunkSize {
			chunks = append(chunks, hardSplit(buf.String(), s.maxChunkSize)...)
		} else {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
	}

	for _, para := range splitAfter(text, paragraphPattern) {
		if buf.Len()+len(para) > s.maxChunkSize && buf.Len() > 0 {
			flush()
		}
		if len(para) <= s.maxChunkSize {
			buf.WriteString(para)
			continue
		}

		// Paragraph alone exceeds the limit: fall down to sentences.
		for _, sentence := range splitAfter(para, sentencePattern) {
			if buf.Len()+len(sentence) > s.maxChunkSize && buf.Len() > 0 {
				flush()
			}
			buf.WriteString(sentence)
		}
	}
	flush()

	return chunks
}

// splitAfter cuts text after every match of the pattern, keeping the matched
// separator attached to the preceding piece so that concatenating the pieces
// reconstructs the input.
func splitAfter(text string, pattern *regexp.Regexp) []string {
	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	pieces := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		pieces = append(pieces, text[start:loc[1]])
		start = loc[1]
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// hardSplit slices text into fixed-size pieces. Last resort for content with
// no usable boundaries.
func hardSplit(text string, size int) []string {
	var pieces []string
	for i := 0; i < len(text); i += size {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		pieces = append(pieces, text[i:end])
	}
	return pieces
}
