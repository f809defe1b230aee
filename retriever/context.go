package retriever

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/wikirag"
)

// BuildContext merges the top hits into a grounding block. Hits beyond
// MergedHits contribute to source attribution but not to the text; duplicate
// titles are merged into the first occurrence. The text is hard-capped at
// MaxContextChars when set.
func BuildContext(hits []wikirag.SearchHit, opts Options) wikirag.RetrievedContext {
	opts = opts.withDefaults()
	if len(hits) == 0 {
		return wikirag.RetrievedContext{}
	}

	seen := make(map[string]bool, len(hits))
	var blocks []string
	var kept []wikirag.SearchHit

	for _, hit := range hits {
		if seen[hit.Title] {
			continue
		}
		seen[hit.Title] = true
		kept = append(kept, hit)

		if len(blocks) < opts.MergedHits && strings.TrimSpace(hit.Content) != "" {
			blocks = append(blocks,
				fmt.Sprintf("Source: %s (score %.2f)\n%s", hit.Title, hit.Score, hit.Content))
		}
	}

	text := strings.Join(blocks, "\n\n")
	if opts.MaxContextChars > 0 && len(text) > opts.MaxContextChars {
		cut := opts.MaxContextChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return wikirag.RetrievedContext{Hits: kept, Text: text}
}
