package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLoader(t *testing.T) {
	l := &TextLoader{}

	t.Run("passes text through", func(t *testing.T) {
		text, err := l.Load([]byte("hello\nworld"))
		require.NoError(t, err)
		assert.Equal(t, "hello\nworld", text)
	})

	t.Run("normalizes line endings and trims", func(t *testing.T) {
		text, err := l.Load([]byte("  a\r\nb \n"))
		require.NoError(t, err)
		assert.Equal(t, "a\nb", text)
	})

	t.Run("rejects binary payload", func(t *testing.T) {
		_, err := l.Load([]byte{0xff, 0xfe, 0x00, 0x89})
		assert.ErrorIs(t, err, ErrBinaryContent)
	})
}

func TestMarkdownLoader(t *testing.T) {
	l := &MarkdownLoader{}

	t.Run("strips markup", func(t *testing.T) {
		text, err := l.Load([]byte("# Title\n\nSome **bold** and [a link](https://example.com)."))
		require.NoError(t, err)
		assert.Contains(t, text, "Title")
		assert.Contains(t, text, "Some bold and a link.")
		assert.NotContains(t, text, "**")
		assert.NotContains(t, text, "](")
		assert.NotContains(t, text, "<")
	})

	t.Run("empty input", func(t *testing.T) {
		text, err := l.Load([]byte("   \n"))
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestHTMLLoader(t *testing.T) {
	l := &HTMLLoader{}

	t.Run("strips tags and scripts", func(t *testing.T) {
		page := `<html><head><style>p{color:red}</style></head>
			<body><h1>Title</h1><p>Body text.</p><script>alert(1)</script></body></html>`

		text, err := l.Load([]byte(page))
		require.NoError(t, err)
		assert.Contains(t, text, "Title")
		assert.Contains(t, text, "Body text.")
		assert.NotContains(t, text, "alert")
		assert.NotContains(t, text, "color:red")
		assert.NotContains(t, text, "<p>")
	})

	t.Run("fragment without body", func(t *testing.T) {
		text, err := l.Load([]byte("<p>just a fragment</p>"))
		require.NoError(t, err)
		assert.Contains(t, text, "just a fragment")
	})
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &MarkdownLoader{}, ForFile("notes.md"))
	assert.IsType(t, &MarkdownLoader{}, ForFile("README.markdown"))
	assert.IsType(t, &HTMLLoader{}, ForFile("page.HTML"))
	assert.IsType(t, &TextLoader{}, ForFile("data.csv"))
	assert.IsType(t, &TextLoader{}, ForFile("unknown.bin"))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.txt"))
	assert.True(t, SupportedExtension("a.csv"))
	assert.True(t, SupportedExtension("a.md"))
	assert.True(t, SupportedExtension("a.htm"))
	assert.False(t, SupportedExtension("a.pdf"))
	assert.False(t, SupportedExtension("a.exe"))
}
