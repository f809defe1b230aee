package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLLoader extracts the readable text of an HTML document, skipping script
// and style content.
type HTMLLoader struct{}

var _ Loader = (*HTMLLoader)(nil)

// Load extracts the plain text of an HTML document.
func (l *HTMLLoader) Load(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})

	text := b.String()
	if text == "" {
		// Fragment without a body element.
		text = doc.Text()
	}

	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}
