package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hivemind/apps/ingestor/internal/ingest"
	"hivemind/apps/ingestor/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// singleRequest mirrors the flat single-document wire schema: one text
// plus metadata, no documents array.
type singleRequest struct {
	CommunityID               string         `json:"communityId"`
	PlatformID                string         `json:"platformId"`
	CollectionName            string         `json:"collectionName"`
	DocID                     string         `json:"docId"`
	Text                      string         `json:"text"`
	Metadata                  map[string]any `json:"metadata"`
	ExcludedEmbedMetadataKeys []string       `json:"excludedEmbedMetadataKeys"`
	ExcludedLlmMetadataKeys   []string       `json:"excludedLlmMetadataKeys"`
}

type batchRequest struct {
	CommunityID    string            `json:"communityId"`
	PlatformID     string            `json:"platformId"`
	CollectionName string            `json:"collectionName"`
	Documents      []ingest.Document `json:"documents"`
	ChunkSize      int               `json:"chunk_size"`
}

func (h *Handler) IngestSingle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.service.IngestSingle(ctx, ingest.Request{
		CommunityID:    req.CommunityID,
		PlatformID:     req.PlatformID,
		CollectionName: req.CollectionName,
		Documents: []ingest.Document{{
			ID:                req.DocID,
			Text:              req.Text,
			Metadata:          req.Metadata,
			ExcludedEmbedKeys: req.ExcludedEmbedMetadataKeys,
			ExcludedIndexKeys: req.ExcludedLlmMetadataKeys,
		}},
	})
	if err != nil {
		if errors.Is(err, ingest.ErrValidation) {
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(ctx, "single ingestion failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]interface{}{"data": outcome})
}

func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.IngestBatch(ctx, ingest.Request{
		CommunityID:    req.CommunityID,
		PlatformID:     req.PlatformID,
		CollectionName: req.CollectionName,
		Documents:      req.Documents,
	}, req.ChunkSize)
	if err != nil {
		if errors.Is(err, ingest.ErrValidation) {
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(ctx, "batch ingestion failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]interface{}{"data": result})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	records, err := h.service.ListBatches(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list batches", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []BatchRecord{}
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]interface{}{
		"data": records,
		"meta": map[string]int{"count": len(records)},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	record, err := h.service.GetBatch(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(ctx, w, "NOT_FOUND", "Batch not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(ctx, "failed to get batch", "id", id, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]interface{}{"data": record})
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
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
