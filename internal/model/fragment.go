package model

// Fragment is a retrieved snippet of source document text. Fragments are
// ephemeral: the core never persists them, the ingest pipeline owns the
// backing documents.
type Fragment struct {
	Text   string
	Source string // originating file name
	Page   int    // page within the source PDF, 0 if unknown
	Score  float64
}
