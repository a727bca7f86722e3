// Package embed wraps the embedding provider boundary: it turns text into
// fixed-dimension vectors and owns the error mapping for that single
// external call.
//
// The provider is an injected interface, never ambient state, so tests run
// against a deterministic fake. The client does not retry and does not
// cache; retry policy belongs to callers, and caching is a documented
// extension point that is deliberately not implemented here.
package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsight/finsight/internal/document"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 15 * time.Second

// Provider maps text to a vector. Implementations perform one outbound
// network call per invocation.
type Provider interface {
	// Name identifies the provider for logging.
	Name() string

	// Embed returns the embedding for text. The returned vector's length is
	// the provider's output dimensionality.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client validates input, bounds the provider call with a timeout, and maps
// provider failures to document.ErrEmbeddingUnavailable.
//
// Client is safe for concurrent use.
type Client struct {
	provider Provider
	dim      int
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDimension makes the client reject provider responses whose length is
// not d. Zero disables the check.
func WithDimension(d int) Option {
	return func(c *Client) { c.dim = d }
}

// WithTimeout overrides DefaultTimeout for each provider call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit throttles provider calls to rps requests per second with
// the given burst. Protects against provider quota exhaustion during batch
// ingestion.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the client logger (nil = default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client around provider.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed converts text into a vector.
//
// Text must be non-empty after trimming, otherwise ErrInvalidInput. Any
// provider failure, including timeout and malformed responses, surfaces as
// ErrEmbeddingUnavailable wrapping the cause.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", document.ErrInvalidInput)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", document.ErrEmbeddingUnavailable, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vec, err := c.provider.Embed(callCtx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: provider %s: %w", document.ErrEmbeddingUnavailable, c.provider.Name(), err)
	}

	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: provider %s returned empty embedding", document.ErrEmbeddingUnavailable, c.provider.Name())
	}
	if c.dim > 0 && len(vec) != c.dim {
		return nil, fmt.Errorf("%w: provider %s returned %d dimensions, want %d",
			document.ErrEmbeddingUnavailable, c.provider.Name(), len(vec), c.dim)
	}

	c.logger.Debug("embedded text", "provider", c.provider.Name(), "chars", len(text), "dimensions", len(vec))
	return vec, nil
}
