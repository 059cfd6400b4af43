package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/internal/http/handler"
	"helpdesk.app/triage/internal/model"
	"helpdesk.app/triage/internal/queue"
)

var _ = Describe("DocumentHandler", func() {
	var (
		router    *gin.Engine
		documents *mockDocumentStore
		producer  *mockProducer
		uploadDir string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		documents = &mockDocumentStore{}
		producer = &mockProducer{}
		uploadDir = GinkgoT().TempDir()

		router = gin.New()
		h := handler.NewDocumentHandler(documents, producer, uploadDir)
		router.POST("/documents", h.Upload)
		router.GET("/documents", h.List)
	})

	upload := func(filename, collection string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		if filename != "" {
			part, err := writer.CreateFormFile("file", filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("%PDF-1.4 fake content"))
			Expect(err).NotTo(HaveOccurred())
		}
		if collection != "" {
			Expect(writer.WriteField("collection", collection)).To(Succeed())
		}
		Expect(writer.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("registers the document, saves the file, and enqueues ingestion", func() {
		var created *model.Document
		documents.createFn = func(_ context.Context, doc *model.Document) error {
			created = doc
			return nil
		}
		var enqueued queue.IngestTask
		producer.enqueueFn = func(_ context.Context, task queue.IngestTask) error {
			enqueued = task
			return nil
		}

		w := upload("billing_faq.pdf", "billing")

		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(created).NotTo(BeNil())
		Expect(created.Filename).To(Equal("billing_faq.pdf"))
		Expect(created.Collection).To(Equal("billing"))
		Expect(created.Status).To(Equal(model.DocumentStatusPending))
		Expect(enqueued.DocumentID).To(Equal(created.ID))

		saved, err := os.ReadFile(created.Path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(saved)).To(ContainSubstring("%PDF-1.4"))
		Expect(filepath.Dir(created.Path)).To(Equal(uploadDir))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["status"]).To(Equal("pending"))
		Expect(resp["collection"]).To(Equal("billing"))
	})

	It("defaults to the general collection", func() {
		var created *model.Document
		documents.createFn = func(_ context.Context, doc *model.Document) error {
			created = doc
			return nil
		}

		w := upload("notes.pdf", "")
		Expect(w.Code).To(Equal(http.StatusAccepted))
		Expect(created.Collection).To(Equal("general"))
	})

	It("rejects a request without a file", func() {
		w := upload("", "billing")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects non-pdf files", func() {
		w := upload("notes.txt", "billing")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects an unknown collection", func() {
		w := upload("notes.pdf", "secrets")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 500 when the document cannot be registered", func() {
		documents.createFn = func(context.Context, *model.Document) error {
			return errors.New("db down")
		}

		w := upload("notes.pdf", "general")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("returns 500 when the task cannot be enqueued", func() {
		producer.enqueueFn = func(context.Context, queue.IngestTask) error {
			return errors.New("redis down")
		}

		w := upload("notes.pdf", "general")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("lists registered documents with their ingest status", func() {
		now := time.Now()
		documents.listFn = func(context.Context) ([]model.Document, error) {
			return []model.Document{
				{ID: 1, Filename: "a.pdf", Collection: "billing", Status: model.DocumentStatusReady, ChunkCount: 12, CreatedAt: now, UpdatedAt: now},
				{ID: 2, Filename: "b.pdf", Collection: "general", Status: model.DocumentStatusPending, CreatedAt: now, UpdatedAt: now},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Documents []map[string]any `json:"documents"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Documents).To(HaveLen(2))
		Expect(resp.Documents[0]["filename"]).To(Equal("a.pdf"))
		Expect(resp.Documents[0]["status"]).To(Equal("ready"))
		Expect(resp.Documents[0]["chunk_count"]).To(BeNumerically("==", 12))
	})

	It("returns 500 when listing fails", func() {
		documents.listFn = func(context.Context) ([]model.Document, error) {
			return nil, errors.New("db down")
		}

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
