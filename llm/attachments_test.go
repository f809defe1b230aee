package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/wikirag"
)

func TestAttachmentResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("cache path preferred over URL", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diagram.png")
		require.NoError(t, os.WriteFile(path, []byte("cached-bytes"), 0o644))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("URL must not be fetched when the cache has bytes")
		}))
		defer server.Close()

		r := NewAttachmentResolver(nil)
		parts, err := r.Resolve(ctx, []wikirag.Attachment{{
			Name:      "diagram.png",
			MIMEType:  "image/png",
			CachePath: path,
			URL:       server.URL + "/diagram.png",
		}})

		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, "image/png", parts[0].MIMEType)
		assert.Equal(t, []byte("cached-bytes"), parts[0].Data)
	})

	t.Run("falls back to URL when cache is missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("remote-bytes"))
		}))
		defer server.Close()

		r := NewAttachmentResolver(nil)
		parts, err := r.Resolve(ctx, []wikirag.Attachment{{
			Name:      "diagram.png",
			MIMEType:  "image/png",
			CachePath: filepath.Join(t.TempDir(), "missing.png"),
			URL:       server.URL + "/diagram.png",
		}})

		require.NoError(t, err)
		assert.Equal(t, []byte("remote-bytes"), parts[0].Data)
	})

	t.Run("fails closed when neither source yields bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		r := NewAttachmentResolver(nil)
		_, err := r.Resolve(ctx, []wikirag.Attachment{{
			Name:     "gone.png",
			MIMEType: "image/png",
			URL:      server.URL + "/gone.png",
		}})

		assert.ErrorIs(t, err, wikirag.ErrAttachmentUnavailable)
	})

	t.Run("no attachments is a no-op", func(t *testing.T) {
		r := NewAttachmentResolver(nil)
		parts, err := r.Resolve(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, parts)
	})
}
