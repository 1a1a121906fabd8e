package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Orchestrator fans a batch's chunks out to the external ingestion
// operation and aggregates their outcomes. Chunks fail independently:
// one chunk's failure never cancels its siblings.
type Orchestrator struct {
	ingestor DocumentIngestor
	policy   Policy
}

func NewOrchestrator(ingestor DocumentIngestor, policy Policy) *Orchestrator {
	return &Orchestrator{
		ingestor: ingestor,
		policy:   policy.withDefaults(),
	}
}

// Policy returns the effective policy, defaults applied.
func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// IngestBatch runs a full batch: resolve the collection once, partition
// the documents, ingest chunks concurrently under the policy's worker
// cap, and report outcomes in chunk-index order. A chunkSize of 0 uses
// the policy default. Only request-level validation errors are returned
// as errors; per-chunk failures land in the result.
func (o *Orchestrator) IngestBatch(ctx context.Context, req Request, chunkSize int) (*BatchResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if chunkSize == 0 {
		chunkSize = o.policy.ChunkSize
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunkSize must be >= 1, got %d", ErrValidation, chunkSize)
	}

	collection := ResolveCollection(req.CommunityID, req.PlatformID, req.CollectionName)
	chunks := Partition(req.Documents, chunkSize)

	slog.InfoContext(ctx, "starting batch ingestion",
		"collection", collection, "documents", len(req.Documents),
		"chunks", len(chunks), "chunk_size", chunkSize)

	outcomes := make([]ChunkOutcome, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.policy.MaxConcurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			// Each worker writes only its own index slot, so the
			// fan-in needs no further synchronization. Errors stay
			// inside the outcome to keep sibling chunks running.
			outcomes[chunk.Index] = o.ingestChunk(gctx, chunk, collection, o.policy.ChunkTimeout)
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{
		Collection:    collection,
		OverallStatus: aggregateStatus(outcomes),
		Outcomes:      outcomes,
	}

	slog.InfoContext(ctx, "batch ingestion finished",
		"collection", collection, "chunks", len(chunks),
		"overall_status", result.OverallStatus)

	return result, nil
}

// IngestSingle ingests a one-document request as a chunk of size 1,
// under the same retry contract but with the single-document timeout.
func (o *Orchestrator) IngestSingle(ctx context.Context, req Request) (*ChunkOutcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Documents) != 1 {
		return nil, fmt.Errorf("%w: single ingestion takes exactly one document, got %d", ErrValidation, len(req.Documents))
	}

	collection := ResolveCollection(req.CommunityID, req.PlatformID, req.CollectionName)
	chunk := Chunk{Index: 0, Documents: req.Documents}

	outcome := o.ingestChunk(ctx, chunk, collection, o.policy.SingleTimeout)
	return &outcome, nil
}

func validateRequest(req Request) error {
	if req.CommunityID == "" {
		return ErrMissingCommunityID
	}
	if req.PlatformID == "" {
		return ErrMissingPlatformID
	}
	if len(req.Documents) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// aggregateStatus reduces chunk outcomes to the batch status: Success
// if every chunk succeeded, Failed if every chunk failed, otherwise
// PartialFailure.
func aggregateStatus(outcomes []ChunkOutcome) Status {
	succeeded, failed := 0, 0
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		return StatusSuccess
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartialFailure
	}
}
