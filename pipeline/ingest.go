package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/embeddings"
	"github.com/smallnest/wikirag/index"
	"github.com/smallnest/wikirag/log"
	"github.com/smallnest/wikirag/splitter"
)

// Ingestor writes documents into the active index: split into chunks, embed
// each chunk, store one index document per source document. Chunk embedding
// failures are skipped, never fatal; a document always lands in the index
// with its full chunk list even when some or all vectors are missing.
type Ingestor struct {
	splitter    splitter.Splitter
	embedder    embeddings.Embedder
	manager     *index.Manager
	client      *index.Client
	concurrency int
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithConcurrency bounds the chunk-embedding worker pool. One means
// sequential embedding.
func WithConcurrency(n int) IngestorOption {
	return func(in *Ingestor) {
		if n > 0 {
			in.concurrency = n
		}
	}
}

// NewIngestor creates an ingestion pipeline.
func NewIngestor(sp splitter.Splitter, embedder embeddings.Embedder, manager *index.Manager, client *index.Client, opts ...IngestorOption) *Ingestor {
	in := &Ingestor{
		splitter:    sp,
		embedder:    embedder,
		manager:     manager,
		client:      client,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest indexes one document. The write is keyed by the document id, so
// re-ingesting an updated document overwrites its previous version.
func (in *Ingestor) Ingest(ctx context.Context, doc wikirag.Document) error {
	if doc.Title == "" && doc.Text == "" {
		return &wikirag.ValidationError{Field: "document", Reason: "empty title and text"}
	}

	active, err := in.manager.EnsureIndex(ctx, in.embedder.Dimension())
	if err != nil {
		return fmt.Errorf("ingest %q: %w", doc.Title, err)
	}

	chunks := in.splitter.SplitDocument(doc)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	if active.HasVectors && len(texts) > 0 {
		vectors = in.embedChunks(ctx, texts)
	}

	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	stored := index.Doc{
		Title:          doc.Title,
		Content:        doc.Text,
		ContentChunks:  texts,
		ContentVectors: vectors,
	}
	if err := in.client.IndexDocument(ctx, active.Name, id, stored); err != nil {
		return fmt.Errorf("ingest %q: %w", doc.Title, err)
	}

	log.Info("indexed %q: %d chunks, %d vectors", doc.Title, len(texts), len(vectors))
	return nil
}

// Delete removes a document from the active index. No active index means
// nothing to delete.
func (in *Ingestor) Delete(ctx context.Context, docID string) error {
	name, err := in.manager.ActiveIndexName(ctx)
	if errors.Is(err, wikirag.ErrNoIndex) {
		return nil
	}
	if err != nil {
		return err
	}
	return in.client.DeleteDocument(ctx, name, docID)
}

// embedChunks embeds chunk texts with a bounded worker pool, collecting only
// the successes in chunk order. A failed chunk is logged and skipped.
func (in *Ingestor) embedChunks(ctx context.Context, texts []string) [][]float32 {
	if in.concurrency <= 1 || len(texts) == 1 {
		vectors, _ := embeddings.EmbedBatch(ctx, in.embedder, texts)
		return vectors
	}

	results := make([][]float32, len(texts))
	sem := make(chan struct{}, in.concurrency)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := in.embedder.Embed(ctx, text)
			if err != nil {
				log.Warn("embedding failed for chunk %d/%d: %v", i+1, len(texts), err)
				return
			}
			results[i] = vec
		}(i, text)
	}
	wg.Wait()

	vectors := make([][]float32, 0, len(texts))
	for _, vec := range results {
		if vec != nil {
			vectors = append(vectors, vec)
		}
	}
	return vectors
}

// ReindexReport summarizes one batch reindex job.
type ReindexReport struct {
	JobID   string
	Total   int
	Indexed int
	Failed  []string
}

// ReindexAll ingests every document in the batch, continuing past failures.
// Failed document titles are collected in the report.
func (in *Ingestor) ReindexAll(ctx context.Context, docs []wikirag.Document) ReindexReport {
	report := ReindexReport{
		JobID: uuid.NewString(),
		Total: len(docs),
	}
	log.Info("reindex job %s: %d documents", report.JobID, len(docs))

	for _, doc := range docs {
		if err := in.Ingest(ctx, doc); err != nil {
			log.Error("reindex job %s: document %q failed: %v", report.JobID, doc.Title, err)
			report.Failed = append(report.Failed, doc.Title)
			continue
		}
		report.Indexed++
	}

	log.Info("reindex job %s done: %d/%d indexed, %d failed",
		report.JobID, report.Indexed, report.Total, len(report.Failed))
	return report
}
