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

func TestOllamaEmbed(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/embed", r.URL.Path)

			var req ollamaEmbedRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			assert.Equal(t, "hello", req.Input)

			json.NewEncoder(w).Encode(ollamaEmbedResponse{
				Embeddings: [][]float32{{0.1, 0.2, 0.3}},
			})
		}))
		defer server.Close()

		e, err := NewOllama(Options{Endpoint: server.URL})
		assert.NoError(t, err)

		vec, err := e.Embed(context.Background(), "hello")
		assert.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	})

	t.Run("server error wraps ErrNoEmbedding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
		}))
		defer server.Close()

		e, err := NewOllama(Options{Endpoint: server.URL})
		assert.NoError(t, err)

		_, err = e.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, wikirag.ErrNoEmbedding)
	})

	t.Run("empty embeddings payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ollamaEmbedResponse{})
		}))
		defer server.Close()

		e, err := NewOllama(Options{Endpoint: server.URL})
		assert.NoError(t, err)

		_, err = e.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, wikirag.ErrNoEmbedding)
	})

	t.Run("trailing slash on endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embed", r.URL.Path)
			json.NewEncoder(w).Encode(ollamaEmbedResponse{
				Embeddings: [][]float32{{1}},
			})
		}))
		defer server.Close()

		e, err := NewOllama(Options{Endpoint: server.URL + "/"})
		assert.NoError(t, err)

		_, err = e.Embed(context.Background(), "hello")
		assert.NoError(t, err)
	})
}
