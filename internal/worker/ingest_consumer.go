package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"hivemind/apps/ingestor/internal/config"
	"hivemind/apps/ingestor/internal/ingest"
	"hivemind/apps/ingestor/internal/middleware"
)

// IngestConsumer drains the ingest request topic, runs each request
// through the batch orchestrator and publishes the terminal result.
type IngestConsumer struct {
	runner    BatchRunner
	publisher ResultPublisher
}

func NewIngestConsumer(r BatchRunner, p ResultPublisher) *IngestConsumer {
	return &IngestConsumer{runner: r, publisher: p}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestRequestPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	req := payload.Request()
	req.Normalize()

	result, err := h.runner.IngestBatch(ctx, req, payload.ChunkSize)
	if err != nil {
		if errors.Is(err, ingest.ErrValidation) {
			// Malformed request: redelivery cannot fix it. Report and ack.
			slog.ErrorContext(ctx, "dropping invalid ingestion request", "error", err)
			h.publishResult(ctx, IngestResultPayload{
				Status:        ingest.StatusFailed,
				Error:         err.Error(),
				CorrelationID: correlationID,
			})
			return nil
		}
		slog.ErrorContext(ctx, "batch orchestration failed", "error", err)
		return err // Retry
	}

	h.publishResult(ctx, IngestResultPayload{
		Collection:    result.Collection,
		Status:        result.OverallStatus,
		Outcomes:      result.Outcomes,
		CorrelationID: correlationID,
	})

	slog.InfoContext(ctx, "ingestion request processed",
		"collection", result.Collection, "status", result.OverallStatus,
		"chunks", len(result.Outcomes))
	return nil
}

func (h *IngestConsumer) publishResult(ctx context.Context, payload IngestResultPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal result payload", "error", err)
		return
	}
	if err := h.publisher.Publish(config.TopicIngestResult, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish result", "error", err)
	}
}
