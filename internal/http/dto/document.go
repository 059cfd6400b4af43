package dto

import "time"

type UploadDocumentResponse struct {
	DocumentID int64  `json:"document_id"`
	Filename   string `json:"filename"`
	Collection string `json:"collection"`
	Status     string `json:"status"`
}

type DocumentResponse struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Collection  string    `json:"collection"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunk_count"`
	IngestError *string   `json:"ingest_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}
