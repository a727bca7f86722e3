// Package document defines the data model for the semantic document store:
// the Document record, its type taxonomy, metadata constraints, and the
// error sentinels shared by the ingestion and retrieval paths.
package document

import (
	"fmt"
	"time"
)

// Type categorizes a stored document. The set is closed; anything outside
// it is rejected at the boundary.
type Type string

const (
	TypeInsight        Type = "insight"
	TypeRecommendation Type = "recommendation"
	TypeSummary        Type = "summary"
	TypeChat           Type = "chat"
	TypeOther          Type = "other"
)

// ValidTypes lists every accepted document type.
var ValidTypes = []Type{TypeInsight, TypeRecommendation, TypeSummary, TypeChat, TypeOther}

// ParseType validates a raw type string. The empty string defaults to
// TypeOther.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeOther, nil
	}
	for _, t := range ValidTypes {
		if Type(s) == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, s)
}

// Metadata is an open key-value map attached to a document. It is opaque to
// search ranking and returned verbatim with results. Values are restricted
// to JSON primitives so the map serializes to flat JSONB and compares
// cleanly in tests.
type Metadata map[string]any

// Validate rejects metadata values outside the supported primitive set
// (string, number, bool, nil).
func (m Metadata) Validate() error {
	for k, v := range m {
		switch v.(type) {
		case nil, string, bool, int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("%w: metadata key %q has unsupported value type %T", ErrInvalidInput, k, v)
		}
	}
	return nil
}

// Document is the unit of storage and retrieval. A Document is immutable
// once persisted: the store exposes no update or delete path, so the
// embedding can never drift from the content it was computed from.
type Document struct {
	// ID is assigned by the store at creation.
	ID string `db:"id"`

	// Content is the original text the embedding represents. Never empty.
	Content string `db:"content"`

	// Embedding has the deployment's fixed dimensionality. A document whose
	// embedding could not be computed is never persisted.
	Embedding []float32 `db:"-"`

	// Metadata is returned verbatim with search results.
	Metadata Metadata `db:"metadata"`

	// WorkspaceID is the owning workspace, treated as an opaque partition
	// key. Never empty; referential validity is the workspace service's
	// concern, not ours.
	WorkspaceID string `db:"workspace_id"`

	// Type defaults to TypeOther when unspecified.
	Type Type `db:"document_type"`

	// CreatedAt is set once by the store.
	CreatedAt time.Time `db:"created_at"`
}

// Result pairs a document with its similarity score for a query.
type Result struct {
	Document Document
	Score    float64
}
