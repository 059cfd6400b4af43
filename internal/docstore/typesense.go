package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"helpdesk.app/triage/core/config"
	"helpdesk.app/triage/internal/model"
)

// Store is a typesense-backed document store with vector search.
// It implements both Retriever and Indexer.
type Store struct {
	client   *typesense.Client
	embedder Embedder
	prefix   string
	dims     int
}

func NewStore(cfg config.TypesenseConfig, embedder Embedder, embeddingDims int) *Store {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(10*time.Second),
	)

	return &Store{
		client:   client,
		embedder: embedder,
		prefix:   cfg.CollectionPrefix,
		dims:     embeddingDims,
	}
}

// collectionName maps the logical collection to its typesense name.
func (s *Store) collectionName(collection Collection) string {
	return fmt.Sprintf("%s_%s", s.prefix, collection)
}

// Retrieve embeds the query and runs a vector search over the collection.
// A missing collection is created empty and yields zero fragments rather
// than an error.
func (s *Store) Retrieve(ctx context.Context, collection Collection, query string, k int) ([]model.Fragment, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &RetrievalError{Collection: collection, Err: fmt.Errorf("embedding query: %w", err)}
	}

	name := s.collectionName(collection)
	result, err := s.client.Collection(name).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		VectorQuery: pointer.String(vectorQuery(vectors[0], k)),
		PerPage:     pointer.Int(k),
	})
	if err != nil {
		if isNotFound(err) {
			// First query against a fresh collection. Create it empty so
			// ingestion and later queries have somewhere to land.
			if createErr := s.ensureCollection(ctx, collection); createErr != nil {
				return nil, &RetrievalError{Collection: collection, Err: createErr}
			}
			slog.InfoContext(ctx, "created empty collection on first query", "collection", name)
			return nil, nil
		}
		return nil, &RetrievalError{Collection: collection, Err: err}
	}

	if result.Hits == nil {
		return nil, nil
	}

	fragments := make([]model.Fragment, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		frag := model.Fragment{}
		if text, ok := doc["text"].(string); ok {
			frag.Text = text
		}
		if source, ok := doc["source"].(string); ok {
			frag.Source = source
		}
		if page, ok := doc["page"].(float64); ok {
			frag.Page = int(page)
		}
		if hit.VectorDistance != nil {
			// Cosine distance; smaller is closer.
			frag.Score = 1 - float64(*hit.VectorDistance)
		}
		if frag.Text != "" {
			fragments = append(fragments, frag)
		}
	}

	slog.DebugContext(ctx, "retrieved fragments",
		"collection", name,
		"k", k,
		"hit_count", len(fragments))

	return fragments, nil
}

// Index upserts embedded chunks into the collection, creating it if needed.
func (s *Store) Index(ctx context.Context, collection Collection, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	name := s.collectionName(collection)
	documents := make([]any, 0, len(chunks))
	for _, c := range chunks {
		documents = append(documents, map[string]any{
			"id":        c.ID,
			"text":      c.Text,
			"source":    c.Source,
			"page":      c.Page,
			"embedding": c.Embedding,
		})
	}

	if _, err := s.client.Collection(name).Documents().Import(ctx, documents, &api.ImportDocumentsParams{
		Action: pointer.Any(api.Upsert),
	}); err != nil {
		return fmt.Errorf("importing %d chunks into %s: %w", len(chunks), name, err)
	}

	slog.InfoContext(ctx, "indexed chunks", "collection", name, "chunk_count", len(chunks))
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, collection Collection) error {
	name := s.collectionName(collection)
	schema := &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "text", Type: "string"},
			{Name: "source", Type: "string", Facet: pointer.True()},
			{Name: "page", Type: "int32", Optional: pointer.True()},
			{Name: "embedding", Type: "float[]", NumDim: pointer.Int(s.dims)},
		},
	}

	if _, err := s.client.Collections().Create(ctx, schema); err != nil {
		if isConflict(err) {
			return nil
		}
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return nil
}

func vectorQuery(vector []float32, k int) string {
	var b strings.Builder
	b.WriteString("embedding:([")
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	fmt.Fprintf(&b, "], k:%d)", k)
	return b.String()
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == 404
}

func isConflict(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == 409
}
