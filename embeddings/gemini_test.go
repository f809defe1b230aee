package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/wikirag"
)

func TestGeminiEmbed(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
			assert.Equal(t, "secret", r.URL.Query().Get("key"))

			var req geminiEmbedRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Len(t, req.Content.Parts, 1)
			assert.Equal(t, "hello", req.Content.Parts[0].Text)

			var resp geminiEmbedResponse
			resp.Embedding.Values = []float32{0.5, 0.6}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		e, err := NewGemini(Options{APIKey: "secret", Endpoint: server.URL})
		assert.NoError(t, err)

		vec, err := e.Embed(context.Background(), "hello")
		assert.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.6}, vec)
	})

	t.Run("missing values", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"embedding":{}}`))
		}))
		defer server.Close()

		e, err := NewGemini(Options{APIKey: "secret", Endpoint: server.URL})
		assert.NoError(t, err)

		_, err = e.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, wikirag.ErrNoEmbedding)
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		e, err := NewGemini(Options{APIKey: "secret", Endpoint: server.URL})
		assert.NoError(t, err)

		_, err = e.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, wikirag.ErrNoEmbedding)
	})

	t.Run("dimension", func(t *testing.T) {
		e, err := NewGemini(Options{APIKey: "secret"})
		assert.NoError(t, err)
		assert.Equal(t, 768, e.Dimension())
		assert.Equal(t, ProviderGemini, e.Provider())
	})
}
