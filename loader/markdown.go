package loader

import (
	"html"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// MarkdownLoader renders markdown to HTML and strips all markup, leaving the
// readable text.
type MarkdownLoader struct{}

var _ Loader = (*MarkdownLoader)(nil)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Load extracts the plain text of a markdown document.
func (l *MarkdownLoader) Load(data []byte) (string, error) {
	if strings.TrimSpace(string(data)) == "" {
		return "", nil
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML(data, p, renderer)

	// StrictPolicy drops every tag, leaving only text nodes.
	stripped := bluemonday.StrictPolicy().SanitizeBytes(rendered)
	text := html.UnescapeString(string(stripped))
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
