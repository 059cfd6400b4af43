package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helpdesk.app/triage/internal/model"
)

// DocumentStore tracks uploaded documents through the ingest pipeline.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id int64) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	MarkIngesting(ctx context.Context, id int64) error
	MarkReady(ctx context.Context, id int64, chunkCount int) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

type documentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) DocumentStore {
	return &documentStore{pool: pool}
}

const documentColumns = `id, filename, path, collection, status, chunk_count, ingest_error, created_at, updated_at`

func (s *documentStore) Create(ctx context.Context, doc *model.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, filename, path, collection, status, chunk_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, now(), now())`,
		doc.ID, doc.Filename, doc.Path, doc.Collection, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (s *documentStore) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return doc, nil
}

func (s *documentStore) List(ctx context.Context) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *documentStore) MarkIngesting(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, model.DocumentStatusIngesting, 0, nil)
}

func (s *documentStore) MarkReady(ctx context.Context, id int64, chunkCount int) error {
	return s.setStatus(ctx, id, model.DocumentStatusReady, chunkCount, nil)
}

func (s *documentStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return s.setStatus(ctx, id, model.DocumentStatusFailed, 0, &errMsg)
}

func (s *documentStore) setStatus(ctx context.Context, id int64, status model.DocumentStatus, chunkCount int, ingestErr *string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, chunk_count = $3, ingest_error = $4, updated_at = now()
		WHERE id = $1`,
		id, status, chunkCount, ingestErr,
	)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TxRunner runs a function inside one database transaction. Satisfied by
// core/db.DB; defined here so the store does not import core/db.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ResetStuck flips documents a crashed worker left mid-ingest back to
// pending and returns them so the caller can re-enqueue. Select and update
// run in one transaction so a concurrent worker cannot pick up a document
// while it is being reset.
func ResetStuck(ctx context.Context, runner TxRunner) ([]model.Document, error) {
	var docs []model.Document
	err := runner.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE status = $1 FOR UPDATE`,
			model.DocumentStatusIngesting,
		)
		if err != nil {
			return fmt.Errorf("selecting stuck documents: %w", err)
		}
		for rows.Next() {
			doc, err := scanDocument(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scanning stuck document: %w", err)
			}
			docs = append(docs, *doc)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("reading stuck documents: %w", err)
		}

		for i := range docs {
			_, err := tx.Exec(ctx, `
				UPDATE documents
				SET status = $2, ingest_error = NULL, updated_at = now()
				WHERE id = $1`,
				docs[i].ID, model.DocumentStatusPending,
			)
			if err != nil {
				return fmt.Errorf("resetting document %d: %w", docs[i].ID, err)
			}
			docs[i].Status = model.DocumentStatusPending
			docs[i].IngestError = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	if err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Path,
		&doc.Collection,
		&doc.Status,
		&doc.ChunkCount,
		&doc.IngestError,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
