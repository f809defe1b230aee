package loader

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrBinaryContent means the payload is not valid text and cannot be
// extracted.
var ErrBinaryContent = errors.New("binary content is not extractable")

// TextLoader passes plain text through, normalizing line endings and
// rejecting binary payloads.
type TextLoader struct{}

var _ Loader = (*TextLoader)(nil)

// Load returns the payload as text.
func (l *TextLoader) Load(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrBinaryContent
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
