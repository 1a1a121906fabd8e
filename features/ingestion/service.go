package ingestion

import (
	"context"
	"encoding/json"
	"log/slog"

	"hivemind/apps/ingestor/internal/ingest"
)

// Orchestrator is the core batch orchestration API the service fronts.
type Orchestrator interface {
	IngestBatch(ctx context.Context, req ingest.Request, chunkSize int) (*ingest.BatchResult, error)
	IngestSingle(ctx context.Context, req ingest.Request) (*ingest.ChunkOutcome, error)
}

// Service runs ingestion requests through the orchestrator and records
// finished batch runs for later inspection and resubmission.
type Service struct {
	orch Orchestrator
	repo Repository
}

func NewService(orch Orchestrator, repo Repository) *Service {
	return &Service{orch: orch, repo: repo}
}

func (s *Service) IngestSingle(ctx context.Context, req ingest.Request) (*ingest.ChunkOutcome, error) {
	req.Normalize()
	return s.orch.IngestSingle(ctx, req)
}

func (s *Service) IngestBatch(ctx context.Context, req ingest.Request, chunkSize int) (*ingest.BatchResult, error) {
	req.Normalize()
	result, err := s.orch.IngestBatch(ctx, req, chunkSize)
	if err != nil {
		return nil, err
	}

	s.record(ctx, req, result)
	return result, nil
}

// record persists the finished run. Bookkeeping failures are logged and
// swallowed: the ingestion itself already happened.
func (s *Service) record(ctx context.Context, req ingest.Request, result *ingest.BatchResult) {
	outcomes, err := json.Marshal(result.Outcomes)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal batch outcomes", "error", err)
		return
	}

	rec := &BatchRecord{
		Collection:    result.Collection,
		CommunityID:   req.CommunityID,
		PlatformID:    req.PlatformID,
		OverallStatus: string(result.OverallStatus),
		DocumentCount: len(req.Documents),
		ChunkCount:    len(result.Outcomes),
		Outcomes:      outcomes,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record batch run", "error", err, "collection", result.Collection)
	}
}

func (s *Service) ListBatches(ctx context.Context) ([]BatchRecord, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetBatch(ctx context.Context, id string) (*BatchRecord, error) {
	return s.repo.Get(ctx, id)
}
