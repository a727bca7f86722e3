package document

import "errors"

// Error taxonomy for the semantic store. Every failure surfaced by the
// ingestion and retrieval services wraps exactly one of these sentinels,
// checked with errors.Is, so callers have one narrow decision tree.
var (
	// ErrInvalidInput means caller-supplied data violates a precondition
	// (empty content, missing workspace, non-positive limit). Never worth
	// retrying.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable means the embedding provider failed or timed
	// out. Transient; callers may retry with backoff. The core never
	// retries internally.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrPersistence means the document store failed to read or write.
	ErrPersistence = errors.New("persistence error")
)
