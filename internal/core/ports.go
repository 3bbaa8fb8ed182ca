package core

import (
	"context"
	"time"
)

// LLMClient defines the interface for asking a language model about chat text
type LLMClient interface {
	// AnalyzeChat returns a chat risk finding for the given conversation text
	AnalyzeChat(ctx context.Context, text string) (*RiskFinding, error)

	// ModelName identifies the model behind the client
	ModelName() string
}

// CacheRepository defines the interface for caching LLM chat verdicts
type CacheRepository interface {
	// Get retrieves a cached entry by evidence fingerprint
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// ReportPublisher hands finished reports to the reporting layer
type ReportPublisher interface {
	Publish(ctx context.Context, report *ReportPayload) error
}

// ScanObserver receives scan telemetry
type ScanObserver interface {
	// ScanCompleted is called once per finished scan
	ScanCompleted(agg AggregateRisk, elapsed time.Duration)

	// ChatFallback is called when the heuristic replaced an LLM verdict
	ChatFallback(reason string)

	// CacheLookup is called for every LLM verdict cache lookup
	CacheLookup(hit bool)
}
