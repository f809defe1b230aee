package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/wikirag/config"
	"github.com/smallnest/wikirag/embeddings"
	"github.com/smallnest/wikirag/index"
	"github.com/smallnest/wikirag/llm"
	"github.com/smallnest/wikirag/retriever"
	"github.com/smallnest/wikirag/splitter"
)

// System is the full pipeline assembled from a loaded configuration: search
// store client, index manager, embedder (cached when a Redis address is
// configured), ingestor, retriever and query. The configuration is read once
// at construction; per-request overrides travel in AskRequest.
type System struct {
	Ingestor *Ingestor
	Query    *Query

	allowGeneral bool
}

// NewSystem wires a System from configuration. Construction validates
// provider names and credentials but makes no network calls.
func NewSystem(cfg *config.Config) (*System, error) {
	clientOpts := []index.ClientOption{
		index.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.SearchStore.TimeoutSecs) * time.Second,
		}),
	}
	if cfg.SearchStore.Username != "" {
		clientOpts = append(clientOpts, index.WithBasicAuth(cfg.SearchStore.Username, cfg.SearchStore.Password))
	}
	client, err := index.NewClient(cfg.SearchStore.URL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	manager := index.NewManager(client)

	embedder, err := embeddings.New(cfg.Embedding.Name, embeddings.Options{
		APIKey:   cfg.Embedding.APIKey,
		Endpoint: cfg.Embedding.Endpoint,
		Model:    cfg.Embedding.Model,
		Timeout:  time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		embedder = embeddings.NewCachedEmbedder(embedder, rdb, time.Duration(cfg.Cache.TTLSecs)*time.Second)
	}

	provider, err := llm.New(cfg.Generation.Name, llm.Options{
		APIKey:   cfg.Generation.APIKey,
		Endpoint: cfg.Generation.Endpoint,
		Model:    cfg.Generation.Model,
		Timeout:  time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("generation provider: %w", err)
	}
	dispatcher := llm.NewDispatcher(provider,
		llm.WithDefaultTemperature(cfg.Generate.Temperature),
		llm.WithMaxTokens(cfg.Generate.MaxTokens),
		llm.WithMaxContextChars(cfg.Generate.MaxContextChars),
	)

	r, err := retriever.New(cfg.Retrieval.Strategy, retriever.NewStoreSearcher(client), embedder, retriever.Options{
		MaxResults:      cfg.Retrieval.MaxResults,
		MergedHits:      cfg.Retrieval.MergedHits,
		MinScore:        cfg.Retrieval.MinScore,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	})
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}

	sp := splitter.NewSectionSplitter(splitter.WithMaxChunkSize(cfg.Splitter.MaxChunkSize))
	ingestor := NewIngestor(sp, embedder, manager, client, WithConcurrency(cfg.Ingest.Concurrency))

	queryOpts := []QueryOption{WithMaxMessageChars(cfg.Generate.MaxMessageChars)}
	if cfg.Generate.CustomPrompt != "" {
		queryOpts = append(queryOpts, WithCustomPrompt(cfg.Generate.CustomPrompt))
	}
	if cfg.Generate.PromptDocument != "" {
		queryOpts = append(queryOpts, WithPromptDocument(cfg.Generate.PromptDocument))
	}

	return &System{
		Ingestor:     ingestor,
		Query:        NewQuery(manager, r, dispatcher, queryOpts...),
		allowGeneral: cfg.Generate.AllowGeneral,
	}, nil
}

// Ask answers a message under the configured grounding policy. Use Query
// directly for per-request control over mode, model or temperature.
func (s *System) Ask(ctx context.Context, message string) Answer {
	return s.Query.Ask(ctx, AskRequest{Message: message, AllowGeneral: s.allowGeneral})
}
