package splitter

import (
	"strings"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter is the chunking contract used by the ingestion pipeline.
type Splitter interface {
	Split(text string) []string
	SplitDocument(doc wikirag.Document) []wikirag.Chunk
}

var _ Splitter = (*SectionSplitter)(nil)
var _ Splitter = (*LangChainSplitter)(nil)

// LangChainSplitter adapts a langchaingo textsplitter.TextSplitter to the
// Splitter interface, for hosts that already configure one.
type LangChainSplitter struct {
	splitter textsplitter.TextSplitter
}

// NewLangChainSplitter creates a new adapter for langchaingo text splitters
func NewLangChainSplitter(splitter textsplitter.TextSplitter) *LangChainSplitter {
	return &LangChainSplitter{
		splitter: splitter,
	}
}

// Split splits text using the underlying langchaingo splitter. A splitter
// error yields no chunks; the document is then skipped by ingestion.
func (l *LangChainSplitter) Split(text string) []string {
	pieces, err := l.splitter.SplitText(text)
	if err != nil {
		log.Warn("langchain splitter failed: %v", err)
		return nil
	}

	result := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			result = append(result, piece)
		}
	}
	return result
}

// SplitDocument splits a document's text into ordinal chunks.
func (l *LangChainSplitter) SplitDocument(doc wikirag.Document) []wikirag.Chunk {
	pieces := l.Split(doc.Text)
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
