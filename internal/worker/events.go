package worker

import "hivemind/apps/ingestor/internal/ingest"

// IngestRequestPayload is the queue envelope for one ingestion request.
// A single document still travels as a one-element batch.
type IngestRequestPayload struct {
	CommunityID    string            `json:"communityId"`
	PlatformID     string            `json:"platformId"`
	CollectionName string            `json:"collectionName,omitempty"`
	Documents      []ingest.Document `json:"documents"`

	// ChunkSize overrides the configured chunk size; 0 keeps the default.
	ChunkSize int `json:"chunk_size,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

func (p IngestRequestPayload) Request() ingest.Request {
	return ingest.Request{
		CommunityID:    p.CommunityID,
		PlatformID:     p.PlatformID,
		CollectionName: p.CollectionName,
		Documents:      p.Documents,
	}
}

// IngestResultPayload is published to the result topic once a request
// reaches a terminal state.
type IngestResultPayload struct {
	Collection    string                `json:"collection"`
	Status        ingest.Status         `json:"status"`
	Outcomes      []ingest.ChunkOutcome `json:"outcomes"`
	Error         string                `json:"error,omitempty"`
	CorrelationID string                `json:"correlation_id,omitempty"`
}
