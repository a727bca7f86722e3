// Package semantic is the public face of the document store: it orchestrates
// embedding, persistence, and similarity search behind three operations,
// StoreOne, StoreBatch, and SearchText.
//
// The service is stateless; every operation is independently invokable and
// safe for concurrent use. Errors from the embedding client and the store
// propagate unchanged, so callers match them with errors.Is against the
// sentinels in the document package.
package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finsight/finsight/internal/document"
	"github.com/finsight/finsight/internal/search"
)

// DefaultSearchLimit is the result limit when the caller does not set one.
const DefaultSearchLimit = 5

// Store persists documents. Interface defined here, on the consumer side;
// implemented by the postgres repository and the in-memory test store.
type Store interface {
	// Put assigns id and created_at and persists the document atomically.
	Put(ctx context.Context, doc document.Document) (document.Document, error)

	// CountByWorkspace counts stored documents; empty workspaceID counts
	// all.
	CountByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}

// Embedder turns text into a vector. Implemented by *embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Item is one ingestion request.
type Item struct {
	Content     string
	Metadata    document.Metadata
	WorkspaceID string
	Type        string
}

// BatchFailure reports one failed item of a StoreBatch call.
type BatchFailure struct {
	// Index is the item's position in the input slice.
	Index int

	// Err is the failure, wrapping one of the document error sentinels.
	Err error
}

// Service wires the embedding client, the document store, and the
// similarity index together.
type Service struct {
	store    Store
	index    search.Index
	embedder Embedder
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Service. A nil logger falls back to slog.Default.
func New(store Store, index search.Index, embedder Embedder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		index:    index,
		embedder: embedder,
		logger:   logger,
		tracer:   otel.Tracer("finsight/semantic"),
	}
}

// StoreOne embeds content and persists it as a new document in the given
// workspace.
//
// Fails with ErrInvalidInput when content or workspace is missing, the
// document type is unknown, or metadata holds non-primitive values.
// Embedding and persistence failures propagate unchanged.
func (s *Service) StoreOne(ctx context.Context, item Item) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "semantic.StoreOne")
	defer span.End()

	doc, err := s.storeOne(ctx, item)
	if err != nil {
		return document.Document{}, err
	}

	s.logger.Debug("stored document",
		"id", doc.ID,
		"workspace", doc.WorkspaceID,
		"type", doc.Type,
		"content_length", len(doc.Content))
	return doc, nil
}

func (s *Service) storeOne(ctx context.Context, item Item) (document.Document, error) {
	if strings.TrimSpace(item.Content) == "" {
		return document.Document{}, fmt.Errorf("%w: missing content", document.ErrInvalidInput)
	}
	if strings.TrimSpace(item.WorkspaceID) == "" {
		return document.Document{}, fmt.Errorf("%w: missing workspace id", document.ErrInvalidInput)
	}
	docType, err := document.ParseType(item.Type)
	if err != nil {
		return document.Document{}, err
	}
	if err := item.Metadata.Validate(); err != nil {
		return document.Document{}, err
	}

	vec, err := s.embedder.Embed(ctx, item.Content)
	if err != nil {
		return document.Document{}, err
	}

	return s.store.Put(ctx, document.Document{
		Content:     item.Content,
		Embedding:   vec,
		Metadata:    item.Metadata,
		WorkspaceID: item.WorkspaceID,
		Type:        docType,
	})
}

// StoreBatch ingests items in input order.
//
// Items missing content or workspace are silently skipped: no stored
// document, no failure entry. Any other failure (embedding, persistence,
// bad metadata or type) is recorded in the returned failure report and the
// batch continues; one bad record never aborts the rest. The returned
// documents preserve the input order of the items that succeeded.
//
// The only error returned directly is context cancellation, which stops
// the batch with the partial results collected so far.
func (s *Service) StoreBatch(ctx context.Context, items []Item) ([]document.Document, []BatchFailure, error) {
	ctx, span := s.tracer.Start(ctx, "semantic.StoreBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(items))))
	defer span.End()

	var (
		stored   []document.Document
		failures []BatchFailure
	)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return stored, failures, fmt.Errorf("batch aborted at item %d: %w", i, err)
		}

		// Reference behavior: invalid items drop out silently.
		if strings.TrimSpace(item.Content) == "" || strings.TrimSpace(item.WorkspaceID) == "" {
			continue
		}

		doc, err := s.storeOne(ctx, item)
		if err != nil {
			s.logger.Warn("batch item failed",
				"index", i,
				"workspace", item.WorkspaceID,
				"error", err)
			failures = append(failures, BatchFailure{Index: i, Err: err})
			continue
		}
		stored = append(stored, doc)
	}

	s.logger.Debug("batch ingested",
		"total", len(items),
		"stored", len(stored),
		"failed", len(failures))
	return stored, failures, nil
}

// SearchOption configures SearchText.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit       int
	workspaceID string
}

// WithLimit sets the maximum number of results. Values <= 0 fail the
// search with ErrInvalidInput.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) { c.limit = n }
}

// WithWorkspace scopes the search to one workspace. Without it the search
// ranks documents across all workspaces.
func WithWorkspace(id string) SearchOption {
	return func(c *searchConfig) { c.workspaceID = id }
}

// SearchText embeds the query and returns the most similar documents,
// ranked by descending cosine similarity.
func (s *Service) SearchText(ctx context.Context, query string, opts ...SearchOption) ([]document.Result, error) {
	ctx, span := s.tracer.Start(ctx, "semantic.SearchText")
	defer span.End()

	cfg := &searchConfig{limit: DefaultSearchLimit}
	for _, opt := range opts {
		opt(cfg)
	}

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", document.ErrInvalidInput)
	}
	if cfg.limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", document.ErrInvalidInput, cfg.limit)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.index.Search(ctx, vec, cfg.workspaceID, cfg.limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search completed",
		"workspace", cfg.workspaceID,
		"limit", cfg.limit,
		"results", len(results))
	return results, nil
}

// Count reports how many documents a workspace holds; empty counts all.
// Used by readiness checks and the CLI, not by the search path.
func (s *Service) Count(ctx context.Context, workspaceID string) (int64, error) {
	return s.store.CountByWorkspace(ctx, workspaceID)
}
