package worker

import (
	"context"

	"hivemind/apps/ingestor/internal/ingest"
)

// BatchRunner is the orchestration entry point the consumer drives.
type BatchRunner interface {
	IngestBatch(ctx context.Context, req ingest.Request, chunkSize int) (*ingest.BatchResult, error)
}

// ResultPublisher publishes terminal results back onto the queue.
type ResultPublisher interface {
	Publish(topic string, body []byte) error
}
