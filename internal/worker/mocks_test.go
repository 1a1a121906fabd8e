package worker_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hivemind/apps/ingestor/internal/ingest"
)

type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) IngestBatch(ctx context.Context, req ingest.Request, chunkSize int) (*ingest.BatchResult, error) {
	args := m.Called(ctx, req, chunkSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.BatchResult), args.Error(1)
}

type MockResultPublisher struct {
	mock.Mock
}

func (m *MockResultPublisher) Publish(topic string, body []byte) error {
	return m.Called(topic, body).Error(0)
}
