package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"helpdesk.app/triage/common/id"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/http/dto"
	"helpdesk.app/triage/internal/model"
	"helpdesk.app/triage/internal/queue"
	"helpdesk.app/triage/internal/store"
)

type DocumentHandler struct {
	documents store.DocumentStore
	producer  queue.Producer
	uploadDir string
}

func NewDocumentHandler(documents store.DocumentStore, producer queue.Producer, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		producer:  producer,
		uploadDir: uploadDir,
	}
}

// Upload registers a PDF for ingestion into one of the retrieval collections
// and enqueues the ingest task. Ingestion itself happens in the worker.
func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .pdf files are accepted"})
		return
	}

	collectionName := c.DefaultPostForm("collection", string(docstore.CollectionGeneral))
	collection, ok := docstore.ParseCollection(collectionName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown collection %q", collectionName)})
		return
	}

	documentID := id.New()
	filename := filepath.Base(file.Filename)
	path := filepath.Join(h.uploadDir, fmt.Sprintf("%d_%s", documentID, filename))

	if err := c.SaveUploadedFile(file, path); err != nil {
		slog.ErrorContext(ctx, "failed to save uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	doc := &model.Document{
		ID:         documentID,
		Filename:   filename,
		Path:       path,
		Collection: string(collection),
		Status:     model.DocumentStatusPending,
	}
	if err := h.documents.Create(ctx, doc); err != nil {
		slog.ErrorContext(ctx, "failed to register document", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register document"})
		return
	}

	if err := h.producer.Enqueue(ctx, queue.IngestTask{DocumentID: documentID}); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue ingest task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue ingest task"})
		return
	}

	c.JSON(http.StatusAccepted, dto.UploadDocumentResponse{
		DocumentID: documentID,
		Filename:   filename,
		Collection: string(collection),
		Status:     string(model.DocumentStatusPending),
	})
}

// List returns every registered document and its ingest status.
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := h.documents.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list documents", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	resp := dto.ListDocumentsResponse{Documents: make([]dto.DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, dto.DocumentResponse{
			ID:          doc.ID,
			Filename:    doc.Filename,
			Collection:  doc.Collection,
			Status:      string(doc.Status),
			ChunkCount:  doc.ChunkCount,
			IngestError: doc.IngestError,
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
