// Package search defines the similarity query contract and provides the
// linear-scan reference implementation.
//
// Two implementations exist: Linear here, which scores every candidate and
// is always correct, and the pgvector-backed index in internal/postgres,
// which answers the same queries through a native ANN index. Both must
// produce identical ranked output; the index is a performance optimization,
// never a behavior change. Correctness tests run against Linear.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/finsight/finsight/internal/document"
)

// Index answers nearest-neighbor queries over stored documents.
type Index interface {
	// Search returns up to limit documents ranked by descending cosine
	// similarity to query. workspaceID scopes candidates to one workspace;
	// empty means unscoped. Ties break by created_at ascending, then id,
	// so result order is deterministic.
	Search(ctx context.Context, query []float32, workspaceID string, limit int) ([]document.Result, error)
}

// Source lists candidate documents for the linear scan. The workspace
// filter is applied at the source, before any ranking, so scoping is a hard
// partition rather than a ranking boost.
type Source interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]document.Document, error)
	ListAll(ctx context.Context) ([]document.Document, error)
}

// Linear is the reference Index: cosine against every candidate.
type Linear struct {
	source Source
}

// NewLinear creates a linear-scan index over source.
func NewLinear(source Source) *Linear {
	return &Linear{source: source}
}

// Search implements Index.
func (l *Linear) Search(ctx context.Context, query []float32, workspaceID string, limit int) ([]document.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", document.ErrInvalidInput, limit)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", document.ErrInvalidInput)
	}

	var (
		candidates []document.Document
		err        error
	)
	if workspaceID != "" {
		candidates, err = l.source.ListByWorkspace(ctx, workspaceID)
	} else {
		candidates, err = l.source.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	results := make([]document.Result, 0, len(candidates))
	for _, doc := range candidates {
		score, err := Cosine(query, doc.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: scoring document %s: %v", document.ErrInvalidInput, doc.ID, err)
		}
		results = append(results, document.Result{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Document.CreatedAt.Equal(results[j].Document.CreatedAt) {
			return results[i].Document.CreatedAt.Before(results[j].Document.CreatedAt)
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Cosine computes the cosine similarity between a and b with float64
// accumulation. Vectors must be non-empty and of equal length. A
// zero-magnitude vector scores 0 against anything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
