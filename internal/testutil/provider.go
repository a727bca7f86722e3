// Package testutil provides shared testing utilities for the finsight
// project: a deterministic fake embedding provider, an in-memory document
// store, and a pgvector-enabled PostgreSQL test container.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
)

// DefaultFakeDimension is the vector width of FakeProvider unless
// overridden.
const DefaultFakeDimension = 16

// FakeProvider is a deterministic embedding provider for tests. It embeds
// text as a bag-of-words histogram: each lowercased token increments one
// vector slot chosen by hashing the token. Texts sharing tokens therefore
// score higher under cosine similarity than unrelated texts, which is
// enough semantic structure to exercise ranking without a network call.
type FakeProvider struct {
	// Dim is the vector width. Zero means DefaultFakeDimension.
	Dim int

	// Err, when set, is returned by every Embed call.
	Err error

	mu    sync.Mutex
	calls int
}

// Name implements the embedding provider interface.
func (f *FakeProvider) Name() string { return "fake" }

// Embed implements the embedding provider interface.
func (f *FakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}

	dim := f.Dim
	if dim <= 0 {
		dim = DefaultFakeDimension
	}

	vec := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?%()\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(dim)]++
	}
	return vec, nil
}

// Calls reports how many times Embed was invoked.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
