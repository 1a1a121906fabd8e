package ingestion

import (
	"encoding/json"
	"time"
)

// BatchRecord is the persisted bookkeeping row for one finished batch
// run. Outcomes keep the failed chunks' document ids so a caller can
// resubmit exactly the failed subset.
type BatchRecord struct {
	ID            string          `json:"id"`
	Collection    string          `json:"collection"`
	CommunityID   string          `json:"community_id"`
	PlatformID    string          `json:"platform_id"`
	OverallStatus string          `json:"overall_status"`
	DocumentCount int             `json:"document_count"`
	ChunkCount    int             `json:"chunk_count"`
	Outcomes      json.RawMessage `json:"outcomes"`
	CreatedAt     time.Time       `json:"created_at"`
}
