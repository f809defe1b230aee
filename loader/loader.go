// Package loader extracts plain text from host-supplied files so they can be
// chunked and indexed like any other document. PDF extraction is out of
// scope; it needs an external binary.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Loader converts one file format into indexable plain text.
type Loader interface {
	Load(data []byte) (string, error)
}

// ForFile returns the loader matching a file name's extension. Unknown
// extensions get the plain text loader; callers that want to reject unknown
// formats should check SupportedExtension first.
func ForFile(name string) Loader {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return &MarkdownLoader{}
	case ".html", ".htm":
		return &HTMLLoader{}
	default:
		return &TextLoader{}
	}
}

// SupportedExtension reports whether the file format has a dedicated loader.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".csv", ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// Extract is a convenience wrapper: pick the loader for the file name and
// run it.
func Extract(name string, data []byte) (string, error) {
	text, err := ForFile(name).Load(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	return text, nil
}
