package ingest

import (
	"context"

	"github.com/google/uuid"
)

// Document is a single prepared document destined for a vector collection.
// It is treated as read-only once it enters the orchestrator.
type Document struct {
	ID                string         `json:"docId"`
	Text              string         `json:"text"`
	Metadata          map[string]any `json:"metadata"`
	ExcludedEmbedKeys []string       `json:"excludedEmbedMetadataKeys,omitempty"`
	ExcludedIndexKeys []string       `json:"excludedLlmMetadataKeys,omitempty"`
}

// Request carries one or more documents for a single resolved collection.
// The schema has exactly one collection field, so all documents in a
// request land in the same collection.
type Request struct {
	CommunityID    string     `json:"communityId"`
	PlatformID     string     `json:"platformId"`
	CollectionName string     `json:"collectionName,omitempty"`
	Documents      []Document `json:"documents"`
}

// Normalize assigns a generated id to any document that arrived without one.
func (r *Request) Normalize() {
	for i := range r.Documents {
		if r.Documents[i].ID == "" {
			r.Documents[i].ID = uuid.New().String()
		}
	}
}

// Chunk is a contiguous slice of a request's documents, the unit of
// concurrent ingestion. Index is the position in dispatch order.
type Chunk struct {
	Index     int
	Documents []Document
}

// DocumentIDs returns the ids of the chunk's documents in order.
func (c Chunk) DocumentIDs() []string {
	ids := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		ids[i] = d.ID
	}
	return ids
}

type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusFailed         Status = "failed"
)

// ChunkOutcome is the terminal record for one chunk. It carries the
// chunk's document ids so a caller can resubmit exactly the failed
// subset without re-deriving chunk boundaries.
type ChunkOutcome struct {
	ChunkIndex  int      `json:"chunk_index"`
	Status      Status   `json:"status"`
	Reason      string   `json:"reason,omitempty"`
	Attempts    int      `json:"attempts"`
	DocumentIDs []string `json:"document_ids"`
}

// BatchResult aggregates the outcomes of one batch run. Outcomes are
// ordered by chunk index regardless of completion order.
type BatchResult struct {
	Collection    string         `json:"collection"`
	OverallStatus Status         `json:"overall_status"`
	Outcomes      []ChunkOutcome `json:"outcomes"`
}

// FailedDocumentIDs returns the document ids of every failed chunk, in
// chunk order.
func (r *BatchResult) FailedDocumentIDs() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			ids = append(ids, o.DocumentIDs...)
		}
	}
	return ids
}

// DocumentIngestor is the external collaborator that durably writes a
// chunk's documents into a collection. Implementations mark
// non-retryable failures with Permanent; anything else is treated as
// transient and retried.
type DocumentIngestor interface {
	IngestDocuments(ctx context.Context, docs []Document, collection string) error
}
