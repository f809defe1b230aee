// WikiRAG - Retrieval-Augmented Generation for wiki content
//
// The wikirag module implements a complete RAG pipeline for long-form wiki
// documents: it splits pages into bounded semantic chunks, embeds and indexes
// the chunks in a vector-capable search store, and at query time retrieves
// the most relevant chunks to ground an answer generated by one of several
// interchangeable LLM providers.
//
// # Components
//
// splitter/
// Section-aware chunking of wiki text
//
//	s := splitter.NewSectionSplitter(splitter.WithMaxChunkSize(500))
//	chunks := s.Split(pageText)
//
// embeddings/
// Provider-polymorphic embedding clients with a static dimension table
//
//	emb, _ := embeddings.New("ollama", embeddings.Options{Endpoint: "http://ollama:11434/api", Model: "nomic-embed-text"})
//	vec, err := emb.Embed(ctx, chunk)
//
// index/
// Search-index lifecycle: discovery of the active index, creation with the
// correct dense-vector mapping, best-effort mapping migration
//
//	client, _ := index.NewClient("http://localhost:9200")
//	mgr := index.NewManager(client)
//	active, _ := mgr.EnsureIndex(ctx, emb.Dimension())
//
// retriever/
// Lexical (multi_match) and vector (cosine script_score) retrieval with
// result fusion into a bounded, source-attributed context block
//
// llm/
// Generation dispatch: prompt assembly, provider fan-out with retry and
// backoff, multi-modal attachments, response normalization
//
//	p, _ := llm.New("anthropic", llm.Options{APIKey: key, Model: "claude-3-haiku-20240307"})
//	d := llm.NewDispatcher(p)
//	res := d.Generate(ctx, req)
//
// pipeline/
// Orchestration: Ingestor (split, embed, index write) and Query (retrieve,
// dispatch, answer with source attribution)
//
// # Collaborators
//
// The host content-management system supplies raw documents and triggers
// re-indexing on edits and uploads; the UI collects user input and renders
// answers. This module receives plain text, file bytes and query strings
// and returns structured results.
package wikirag // import "github.com/smallnest/wikirag"
