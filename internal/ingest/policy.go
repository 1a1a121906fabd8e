package ingest

import "time"

// Policy holds the retry, timeout and concurrency knobs for one
// orchestrator. It is passed at construction so the core has no
// process-wide mutable defaults.
type Policy struct {
	// ChunkSize is the maximum number of documents per chunk.
	ChunkSize int

	// MaxAttempts is the total number of attempts per chunk,
	// including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry; it doubles
	// on each subsequent retry up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// SingleTimeout bounds one attempt on the single-document path;
	// ChunkTimeout bounds one attempt on a batch chunk, which carries
	// a heavier payload per call.
	SingleTimeout time.Duration
	ChunkTimeout  time.Duration

	// MaxConcurrency caps the number of chunks ingested at once
	// within a batch.
	MaxConcurrency int
}

// DefaultPolicy returns the stock policy: chunks of 10, 3 attempts,
// 1s..60s backoff, 5m/10m attempt timeouts, 8 concurrent chunks.
func DefaultPolicy() Policy {
	return Policy{
		ChunkSize:      10,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     60 * time.Second,
		SingleTimeout:  5 * time.Minute,
		ChunkTimeout:   10 * time.Minute,
		MaxConcurrency: 8,
	}
}

// withDefaults fills zero-valued fields from DefaultPolicy so partially
// populated policies stay usable.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.ChunkSize < 1 {
		p.ChunkSize = def.ChunkSize
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = def.MaxBackoff
	}
	if p.SingleTimeout <= 0 {
		p.SingleTimeout = def.SingleTimeout
	}
	if p.ChunkTimeout <= 0 {
		p.ChunkTimeout = def.ChunkTimeout
	}
	if p.MaxConcurrency < 1 {
		p.MaxConcurrency = def.MaxConcurrency
	}
	return p
}
