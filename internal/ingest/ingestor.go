package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ingestChunk drives one chunk through the external ingestion operation
// under the retry policy. Failures are converted into a Failed outcome
// rather than raised: the orchestrator aggregates them as data.
func (o *Orchestrator) ingestChunk(ctx context.Context, chunk Chunk, collection string, timeout time.Duration) ChunkOutcome {
	attempts := 0

	operation := func() error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := o.ingestor.IngestDocuments(attemptCtx, chunk.Documents, collection)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "chunk ingestion attempt failed",
			"collection", collection, "chunk_index", chunk.Index,
			"attempt", attempts, "error", err)
		if IsPermanent(err) {
			// Non-retryable: don't consume the remaining retry budget.
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(operation, o.chunkBackoff(ctx))

	outcome := ChunkOutcome{
		ChunkIndex:  chunk.Index,
		Status:      StatusSuccess,
		Attempts:    attempts,
		DocumentIDs: chunk.DocumentIDs(),
	}
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		slog.ErrorContext(ctx, "chunk ingestion failed",
			"collection", collection, "chunk_index", chunk.Index,
			"attempts", attempts, "error", err)
	}
	return outcome
}

// chunkBackoff builds the per-chunk retry schedule: exponential from
// InitialBackoff, doubling, capped at MaxBackoff, no jitter, at most
// MaxAttempts total attempts. Cancelling ctx stops the schedule between
// attempts.
func (o *Orchestrator) chunkBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.policy.InitialBackoff
	b.MaxInterval = o.policy.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	retries := uint64(o.policy.MaxAttempts - 1)
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}
