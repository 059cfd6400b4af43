package model

import "time"

// DocumentStatus tracks an uploaded document through the ingest pipeline.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusIngesting DocumentStatus = "ingesting"
	DocumentStatusReady     DocumentStatus = "ready"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// Document is an uploaded PDF registered for ingestion into a collection.
type Document struct {
	ID          int64
	Filename    string
	Path        string
	Collection  string
	Status      DocumentStatus
	ChunkCount  int
	IngestError *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
