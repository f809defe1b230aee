package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// DefaultMaxContextChars caps the grounding block appended to any prompt.
const DefaultMaxContextChars = 8000

// truncationMarker flags a context block that was cut at the cap.
const truncationMarker = "\n[...truncated...]"

// PromptSource loads the text of an operator-managed prompt document by
// name. The host wires this to its own content storage.
type PromptSource func(ctx context.Context, name string) (string, error)

const wikiOnlyTemplate = "You are an assistant helping answer questions about this knowledge base.\n" +
	"Use ONLY the provided context to answer. If the answer is not contained in the context, " +
	"say you do not have enough information.\n" +
	"Cite the source title(s) mentioned in the context if relevant.\n"

const generalKnowledgeTemplate = "You are an assistant helping answer questions about this knowledge base.\n" +
	"Prefer the provided context when it is relevant. When the context does not contain the answer, " +
	"you may answer from general knowledge.\n" +
	"Cite the source title(s) mentioned in the context if relevant.\n"

// AssemblePrompt builds the full prompt for one request. Instruction header
// precedence: the literal custom prompt wins outright; otherwise a named
// prompt document is loaded; otherwise the built-in template for the mode.
// The context block is appended last, truncated at maxContextChars with a
// visible marker.
func AssemblePrompt(ctx context.Context, req wikirag.GenerationRequest, source PromptSource, maxContextChars int) string {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}

	header := instructionHeader(ctx, req, source)

	contextBlock := strings.TrimSpace(req.Context)
	if contextBlock == "" {
		contextBlock = "(No additional context from the knowledge base was found.)"
	} else if len(contextBlock) > maxContextChars {
		contextBlock = truncateAtRune(contextBlock, maxContextChars) + truncationMarker
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(header, "\n"))
	b.WriteString("\n\nContext:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(req.Query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// truncateAtRune cuts s to at most max bytes, backing up so the cut never
// lands inside a multi-byte rune.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func instructionHeader(ctx context.Context, req wikirag.GenerationRequest, source PromptSource) string {
	if strings.TrimSpace(req.CustomPrompt) != "" {
		return req.CustomPrompt
	}

	if req.PromptDocument != "" && source != nil {
		text, err := source(ctx, req.PromptDocument)
		if err != nil {
			log.Warn("cannot load prompt document %q, using built-in template: %v", req.PromptDocument, err)
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}

	if req.Mode == wikirag.ModeGeneralKnowledge {
		return generalKnowledgeTemplate
	}
	return wikiOnlyTemplate
}
