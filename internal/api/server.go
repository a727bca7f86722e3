// Package api exposes the semantic store over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight/finsight/internal/document"
	"github.com/finsight/finsight/internal/semantic"
)

// Service is the part of the semantic service the API consumes.
type Service interface {
	StoreOne(ctx context.Context, item semantic.Item) (document.Document, error)
	StoreBatch(ctx context.Context, items []semantic.Item) ([]document.Document, []semantic.BatchFailure, error)
	SearchText(ctx context.Context, query string, opts ...semantic.SearchOption) ([]document.Result, error)
	Count(ctx context.Context, workspaceID string) (int64, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger  *slog.Logger
	Service Service       // Required
	Pool    *pgxpool.Pool // Optional: nil disables pool stats in /ready
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dh := &documentHandler{service: cfg.Service, logger: logger}

	mux := http.NewServeMux()

	// Ingestion
	mux.HandleFunc("POST /api/v1/documents", dh.storeOne)
	mux.HandleFunc("POST /api/v1/documents/batch", dh.storeBatch)

	// Retrieval
	mux.HandleFunc("POST /api/v1/search", dh.search)

	// Stats
	mux.HandleFunc("GET /api/v1/stats", dh.stats)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Use a top-level mux to separate health probes from middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
