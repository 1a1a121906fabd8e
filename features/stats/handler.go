package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"hivemind/apps/ingestor/internal/middleware"
)

type BatchRepo interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type Handler struct {
	batchRepo BatchRepo
}

func NewHandler(b BatchRepo) *Handler {
	return &Handler{batchRepo: b}
}

type StatsResponse struct {
	Batches         int `json:"batches"`
	Succeeded       int `json:"succeeded"`
	PartialFailures int `json:"partial_failures"`
	Failed          int `json:"failed"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	counts, err := h.batchRepo.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count batches", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count batches", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Succeeded:       counts["success"],
		PartialFailures: counts["partial_failure"],
		Failed:          counts["failed"],
	}
	resp.Batches = resp.Succeeded + resp.PartialFailures + resp.Failed

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
