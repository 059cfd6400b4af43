package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"helpdesk.app/triage/common/logger"
	"helpdesk.app/triage/core/config"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/store"
)

// Embedding requests are batched so large documents don't blow up a single
// API call.
const embedBatchSize = 64

// Pipeline turns an uploaded PDF into embedded, indexed chunks and tracks
// the document's status while doing it.
type Pipeline struct {
	documents store.DocumentStore
	embedder  docstore.Embedder
	indexer   docstore.Indexer
	cfg       config.IngestConfig
}

func NewPipeline(documents store.DocumentStore, embedder docstore.Embedder, indexer docstore.Indexer, cfg config.IngestConfig) *Pipeline {
	return &Pipeline{
		documents: documents,
		embedder:  embedder,
		indexer:   indexer,
		cfg:       cfg,
	}
}

// IngestDocument runs the full extract → chunk → embed → index pass for one
// registered document. The document record ends in ready or failed state.
func (p *Pipeline) IngestDocument(ctx context.Context, documentID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DocumentID: logger.Ptr(documentID),
		Component:  "triage.ingest",
	})

	doc, err := p.documents.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetching document: %w", err)
	}

	collection, ok := docstore.ParseCollection(doc.Collection)
	if !ok {
		failErr := fmt.Errorf("unknown collection %q", doc.Collection)
		p.markFailed(ctx, documentID, failErr)
		return failErr
	}

	if err := p.documents.MarkIngesting(ctx, documentID); err != nil {
		return fmt.Errorf("marking document ingesting: %w", err)
	}

	chunks, err := p.buildChunks(ctx, doc.Path, doc.Filename)
	if err != nil {
		p.markFailed(ctx, documentID, err)
		return err
	}

	if err := p.indexer.Index(ctx, collection, chunks); err != nil {
		p.markFailed(ctx, documentID, err)
		return err
	}

	if err := p.documents.MarkReady(ctx, documentID, len(chunks)); err != nil {
		return fmt.Errorf("marking document ready: %w", err)
	}

	slog.InfoContext(ctx, "document ingested",
		"filename", doc.Filename,
		"collection", collection,
		"chunk_count", len(chunks))

	return nil
}

func (p *Pipeline) buildChunks(ctx context.Context, path, filename string) ([]docstore.Chunk, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}

	var chunks []docstore.Chunk
	for _, page := range pages {
		for _, text := range SplitText(page.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap) {
			chunks = append(chunks, docstore.Chunk{
				ID:     uuid.NewString(),
				Text:   text,
				Source: filename,
				Page:   page.Number,
			})
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", filename)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Text
		}

		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks: %w", err)
		}
		for i := start; i < end; i++ {
			chunks[i].Embedding = vectors[i-start]
		}
	}

	return chunks, nil
}

func (p *Pipeline) markFailed(ctx context.Context, documentID int64, cause error) {
	if err := p.documents.MarkFailed(ctx, documentID, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "failed to mark document failed", "error", err)
	}
}
