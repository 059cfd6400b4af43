package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// IngestTask asks the worker to ingest one uploaded document.
type IngestTask struct {
	DocumentID int64
	Attempt    int
}

type Producer interface {
	Enqueue(ctx context.Context, task IngestTask) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{client: client, stream: stream}
}

func (p *redisProducer) Enqueue(ctx context.Context, task IngestTask) error {
	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"document_id": task.DocumentID,
			"attempt":     attempt,
		},
	}).Err(); err != nil {
		return fmt.Errorf("enqueue ingest task: %w", err)
	}

	slog.InfoContext(ctx, "enqueued ingest task",
		"document_id", task.DocumentID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
