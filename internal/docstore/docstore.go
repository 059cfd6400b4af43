package docstore

import (
	"context"
	"fmt"

	"helpdesk.app/triage/internal/model"
)

// Collection names the three backing document collections.
// The enumeration is closed; handlers validate before reaching this layer.
type Collection string

const (
	CollectionGeneral   Collection = "general"
	CollectionBilling   Collection = "billing"
	CollectionTechnical Collection = "technical"
)

// Collections lists every valid document collection.
var Collections = []Collection{CollectionGeneral, CollectionBilling, CollectionTechnical}

// ParseCollection validates a raw collection name, defaulting to general.
func ParseCollection(raw string) (Collection, bool) {
	switch Collection(raw) {
	case CollectionGeneral, CollectionBilling, CollectionTechnical:
		return Collection(raw), true
	case "":
		return CollectionGeneral, true
	default:
		return CollectionGeneral, false
	}
}

// Retriever returns the top-k most relevant text fragments for a query.
// A missing collection is created empty and yields zero fragments.
type Retriever interface {
	Retrieve(ctx context.Context, collection Collection, query string, k int) ([]model.Fragment, error)
}

// Chunk is one embedded piece of an ingested document.
type Chunk struct {
	ID        string
	Text      string
	Source    string
	Page      int
	Embedding []float32
}

// Indexer writes embedded chunks into a collection.
type Indexer interface {
	Index(ctx context.Context, collection Collection, chunks []Chunk) error
}

// RetrievalError wraps a document store failure (search engine unreachable,
// collection uninitializable).
type RetrievalError struct {
	Collection Collection
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval from %s: %v", e.Collection, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
