package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// indexPrefix is the naming convention for content indices. A new index is
// named with the creation epoch appended, and discovery picks the newest one.
const indexPrefix = "content_"

// ActiveIndex describes the index selected for reads and writes. HasVectors
// reports whether the mapping carries the dense_vector field; when false,
// ingestion writes chunks without vectors and retrieval falls back to
// lexical search.
type ActiveIndex struct {
	Name       string
	HasVectors bool
}

// Manager drives the content index lifecycle: discovery of the newest index
// matching the naming convention, creation when none exists, and best-effort
// mapping migration for indices that predate vector support.
type Manager struct {
	client *Client

	now func() time.Time
}

// NewManager creates a Manager over a search-store client.
func NewManager(client *Client) *Manager {
	return &Manager{
		client: client,
		now:    time.Now,
	}
}

// ActiveIndexName returns the name of the current active index, or
// wikirag.ErrNoIndex when no index matching the naming convention exists.
func (m *Manager) ActiveIndexName(ctx context.Context) (string, error) {
	names, err := m.client.ListIndices(ctx)
	if err != nil {
		return "", err
	}

	active := SelectActive(names)
	if active == "" {
		return "", wikirag.ErrNoIndex
	}
	return active, nil
}

// EnsureIndex makes sure an active index exists whose mapping can hold
// vectors of the given dimension, creating one when absent. It is idempotent
// and safe to call on every ingestion or query. A concurrent race may create
// two indices; discovery converges on the newest, so the loser is simply
// never selected again.
func (m *Manager) EnsureIndex(ctx context.Context, dims int) (ActiveIndex, error) {
	name, err := m.ActiveIndexName(ctx)
	if errors.Is(err, wikirag.ErrNoIndex) {
		return m.provision(ctx, dims)
	}
	if err != nil {
		return ActiveIndex{}, err
	}

	return m.migrate(ctx, name, dims), nil
}

func (m *Manager) provision(ctx context.Context, dims int) (ActiveIndex, error) {
	name := fmt.Sprintf("%s%d", indexPrefix, m.now().Unix())
	log.Info("creating content index %s with vector dimension %d", name, dims)

	if err := m.client.CreateIndex(ctx, name, ContentMapping(dims)); err != nil {
		return ActiveIndex{}, fmt.Errorf("provision index: %w", err)
	}
	return ActiveIndex{Name: name, HasVectors: true}, nil
}

// migrate checks the existing index for the vector field and tries to add it
// in place when missing. Migration failure is logged, not fatal; callers
// continue without vectors until the store accepts the field.
func (m *Manager) migrate(ctx context.Context, name string, dims int) ActiveIndex {
	mapping, err := m.client.GetMapping(ctx, name)
	if err != nil {
		log.Warn("cannot inspect mapping of %s, assuming no vector field: %v", name, err)
		return ActiveIndex{Name: name, HasVectors: false}
	}

	if field, ok := mapping.Properties["content_vectors"]; ok && field.Type == "dense_vector" {
		if field.Dims == dims {
			return ActiveIndex{Name: name, HasVectors: true}
		}
		// The store rejects vectors of the wrong length on every write, so
		// a dimension mismatch means lexical-only until the next reindex.
		log.Warn("index %s holds %d-dim vectors but the embedder produces %d, continuing without vectors", name, field.Dims, dims)
		return ActiveIndex{Name: name, HasVectors: false}
	}

	indexed := true
	patch := Mapping{Properties: map[string]Field{
		"content_vectors": {
			Type:       "dense_vector",
			Dims:       dims,
			Index:      &indexed,
			Similarity: "cosine",
		},
	}}
	if err := m.client.PutMapping(ctx, name, patch); err != nil {
		log.Warn("vector mapping migration failed for %s, continuing without vectors: %v", name, err)
		return ActiveIndex{Name: name, HasVectors: false}
	}

	log.Info("added vector field to existing index %s", name)
	return ActiveIndex{Name: name, HasVectors: true}
}

// SelectActive picks the active index from a list of index names: the
// matching name with the greatest epoch suffix wins. Names whose suffix is
// not numeric sort lexicographically below all numeric ones. An empty result
// means no index matches the naming convention.
func SelectActive(names []string) string {
	var (
		best      string
		bestEpoch int64 = -1
	)

	for _, name := range names {
		if !strings.HasPrefix(name, indexPrefix) {
			continue
		}
		suffix := name[len(indexPrefix):]

		epoch, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			// Non-numeric suffix: only a candidate while no numeric
			// one has been seen.
			if bestEpoch < 0 && name > best {
				best = name
			}
			continue
		}

		if epoch > bestEpoch {
			best = name
			bestEpoch = epoch
		}
	}

	return best
}
