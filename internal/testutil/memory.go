package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finsight/finsight/internal/document"
)

// MemoryStore is an append-only in-memory document store. It satisfies
// both the ingestion store interface (Put, CountByWorkspace) and the linear
// index candidate source (ListByWorkspace, ListAll).
//
// IDs and timestamps are deterministic: documents get sequential IDs
// ("mem-0001", ...) and creation times one millisecond apart, so tie-break
// ordering is reproducible across runs.
type MemoryStore struct {
	// PutErr, when set, is returned by every Put call.
	PutErr error

	// FailContent, when non-empty, makes Put fail only for documents whose
	// content matches. Used to exercise mid-batch persistence failures.
	FailContent string

	mu   sync.Mutex
	docs []document.Document
	seq  int
	base time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		base: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Put assigns an ID and creation time and appends the document.
func (s *MemoryStore) Put(_ context.Context, doc document.Document) (document.Document, error) {
	if s.PutErr != nil {
		return document.Document{}, s.PutErr
	}
	if s.FailContent != "" && doc.Content == s.FailContent {
		return document.Document{}, fmt.Errorf("%w: simulated write failure", document.ErrPersistence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	doc.ID = fmt.Sprintf("mem-%04d", s.seq)
	doc.CreatedAt = s.base.Add(time.Duration(s.seq) * time.Millisecond)
	s.docs = append(s.docs, doc)
	return doc, nil
}

// ListByWorkspace returns copies of all documents in workspaceID.
func (s *MemoryStore) ListByWorkspace(_ context.Context, workspaceID string) ([]document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []document.Document
	for _, doc := range s.docs {
		if doc.WorkspaceID == workspaceID {
			out = append(out, doc)
		}
	}
	return out, nil
}

// ListAll returns copies of every stored document.
func (s *MemoryStore) ListAll(_ context.Context) ([]document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]document.Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

// CountByWorkspace returns the number of documents in workspaceID; empty
// counts everything.
func (s *MemoryStore) CountByWorkspace(_ context.Context, workspaceID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workspaceID == "" {
		return int64(len(s.docs)), nil
	}
	var n int64
	for _, doc := range s.docs {
		if doc.WorkspaceID == workspaceID {
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
