package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/wikirag"
)

func TestSelectActive(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{
			name:  "newest epoch wins over lexicographic order",
			names: []string{"content_100", "content_200", "content_50"},
			want:  "content_200",
		},
		{
			name:  "ignores indices outside the naming convention",
			names: []string{".kibana", "logs-2024", "content_300", "users"},
			want:  "content_300",
		},
		{
			name:  "no matching index",
			names: []string{"logs", "metrics"},
			want:  "",
		},
		{
			name:  "empty list",
			names: nil,
			want:  "",
		},
		{
			name:  "single index",
			names: []string{"content_1700000000"},
			want:  "content_1700000000",
		},
		{
			name:  "numeric suffix beats non-numeric",
			names: []string{"content_backup", "content_100"},
			want:  "content_100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectActive(tt.names))
		})
	}
}

// fakeStore is an in-memory Elasticsearch-shaped server covering the calls
// the Manager makes.
type fakeStore struct {
	indices  map[string]Mapping
	putFails bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{indices: map[string]Mapping{}}
}

func (s *fakeStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/_cat/indices":
			rows := make([]catIndex, 0, len(s.indices))
			for name := range s.indices {
				rows = append(rows, catIndex{Index: name})
			}
			json.NewEncoder(w).Encode(rows)

		case strings.HasSuffix(r.URL.Path, "/_mapping") && r.Method == http.MethodGet:
			name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_mapping")
			mapping, ok := s.indices[name]
			if !ok {
				http.Error(w, `{"error":"index_not_found"}`, http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{name: map[string]any{"mappings": mapping}})

		case strings.HasSuffix(r.URL.Path, "/_mapping") && r.Method == http.MethodPut:
			if s.putFails {
				http.Error(w, `{"error":"mapper_parsing_exception"}`, http.StatusBadRequest)
				return
			}
			name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_mapping")
			var patch Mapping
			json.NewDecoder(r.Body).Decode(&patch)
			mapping := s.indices[name]
			if mapping.Properties == nil {
				mapping.Properties = map[string]Field{}
			}
			for field, def := range patch.Properties {
				mapping.Properties[field] = def
			}
			s.indices[name] = mapping
			w.Write([]byte(`{"acknowledged":true}`))

		case r.Method == http.MethodPut:
			name := strings.TrimPrefix(r.URL.Path, "/")
			var body struct {
				Mappings Mapping `json:"mappings"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			s.indices[name] = body.Mappings
			w.Write([]byte(`{"acknowledged":true}`))

		default:
			http.Error(w, `{"error":"unexpected request"}`, http.StatusBadRequest)
		}
	})
}

func newTestManager(t *testing.T, store *fakeStore) *Manager {
	t.Helper()
	server := httptest.NewServer(store.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	return NewManager(client)
}

func TestManagerEnsureIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("creates index when absent", func(t *testing.T) {
		store := newFakeStore()
		m := newTestManager(t, store)
		m.now = func() time.Time { return time.Unix(1700000000, 0) }

		active, err := m.EnsureIndex(ctx, 1536)
		require.NoError(t, err)
		assert.Equal(t, "content_1700000000", active.Name)
		assert.True(t, active.HasVectors)

		mapping := store.indices["content_1700000000"]
		vec := mapping.Properties["content_vectors"]
		assert.Equal(t, "dense_vector", vec.Type)
		assert.Equal(t, 1536, vec.Dims)
		assert.Equal(t, "cosine", vec.Similarity)
	})

	t.Run("idempotent on existing vector index", func(t *testing.T) {
		store := newFakeStore()
		store.indices["content_100"] = ContentMapping(1024)
		m := newTestManager(t, store)

		active, err := m.EnsureIndex(ctx, 1024)
		require.NoError(t, err)
		assert.Equal(t, "content_100", active.Name)
		assert.True(t, active.HasVectors)
		assert.Len(t, store.indices, 1)
	})

	t.Run("migrates pre-vector index in place", func(t *testing.T) {
		store := newFakeStore()
		store.indices["content_100"] = Mapping{Properties: map[string]Field{
			"title":   {Type: "text"},
			"content": {Type: "text"},
		}}
		m := newTestManager(t, store)

		active, err := m.EnsureIndex(ctx, 768)
		require.NoError(t, err)
		assert.Equal(t, "content_100", active.Name)
		assert.True(t, active.HasVectors)
		assert.Equal(t, 768, store.indices["content_100"].Properties["content_vectors"].Dims)
	})

	t.Run("dimension mismatch degrades to no vectors", func(t *testing.T) {
		store := newFakeStore()
		store.indices["content_100"] = ContentMapping(768)
		m := newTestManager(t, store)

		active, err := m.EnsureIndex(ctx, 1536)
		require.NoError(t, err)
		assert.Equal(t, "content_100", active.Name)
		assert.False(t, active.HasVectors)
		// The existing mapping is left alone; only a reindex can change dims.
		assert.Equal(t, 768, store.indices["content_100"].Properties["content_vectors"].Dims)
	})

	t.Run("migration failure degrades to no vectors", func(t *testing.T) {
		store := newFakeStore()
		store.indices["content_100"] = Mapping{Properties: map[string]Field{
			"title": {Type: "text"},
		}}
		store.putFails = true
		m := newTestManager(t, store)

		active, err := m.EnsureIndex(ctx, 768)
		require.NoError(t, err)
		assert.Equal(t, "content_100", active.Name)
		assert.False(t, active.HasVectors)
	})
}

func TestManagerActiveIndexName(t *testing.T) {
	ctx := context.Background()

	t.Run("no index", func(t *testing.T) {
		m := newTestManager(t, newFakeStore())

		_, err := m.ActiveIndexName(ctx)
		assert.ErrorIs(t, err, wikirag.ErrNoIndex)
	})

	t.Run("picks newest", func(t *testing.T) {
		store := newFakeStore()
		store.indices["content_100"] = ContentMapping(1536)
		store.indices["content_200"] = ContentMapping(1536)
		m := newTestManager(t, store)

		name, err := m.ActiveIndexName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "content_200", name)
	})
}
