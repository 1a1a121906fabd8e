package config

const (
	// TopicIngestRequest is the NSQ topic for incoming ingestion requests.
	TopicIngestRequest = "ingest.request"

	// TopicIngestResult is the NSQ topic for terminal batch results.
	TopicIngestResult = "ingest.result"
)
