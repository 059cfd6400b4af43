package handler_test

import (
	"context"

	"helpdesk.app/triage/internal/model"
	"helpdesk.app/triage/internal/queue"
)

type mockProcessor struct {
	processFn func(ctx context.Context, question, threadID string) string
}

func (m *mockProcessor) Process(ctx context.Context, question, threadID string) string {
	if m.processFn != nil {
		return m.processFn(ctx, question, threadID)
	}
	return "mock answer"
}

type mockDocumentStore struct {
	createFn        func(ctx context.Context, doc *model.Document) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Document, error)
	listFn          func(ctx context.Context) ([]model.Document, error)
	markIngestingFn func(ctx context.Context, id int64) error
	markReadyFn     func(ctx context.Context, id int64, chunkCount int) error
	markFailedFn    func(ctx context.Context, id int64, errMsg string) error
}

func (m *mockDocumentStore) Create(ctx context.Context, doc *model.Document) error {
	if m.createFn != nil {
		return m.createFn(ctx, doc)
	}
	return nil
}

func (m *mockDocumentStore) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDocumentStore) List(ctx context.Context) ([]model.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockDocumentStore) MarkIngesting(ctx context.Context, id int64) error {
	if m.markIngestingFn != nil {
		return m.markIngestingFn(ctx, id)
	}
	return nil
}

func (m *mockDocumentStore) MarkReady(ctx context.Context, id int64, chunkCount int) error {
	if m.markReadyFn != nil {
		return m.markReadyFn(ctx, id, chunkCount)
	}
	return nil
}

func (m *mockDocumentStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id, errMsg)
	}
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, task queue.IngestTask) error
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.IngestTask) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
