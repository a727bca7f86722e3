package document

import (
	"errors"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Type
		wantErr bool
	}{
		{name: "insight", input: "insight", want: TypeInsight},
		{name: "recommendation", input: "recommendation", want: TypeRecommendation},
		{name: "summary", input: "summary", want: TypeSummary},
		{name: "chat", input: "chat", want: TypeChat},
		{name: "other", input: "other", want: TypeOther},
		{name: "empty defaults to other", input: "", want: TypeOther},
		{name: "unknown type rejected", input: "report", wantErr: true},
		{name: "case sensitive", input: "Insight", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error should wrap ErrInvalidInput, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMetadata_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{name: "nil metadata", meta: nil},
		{name: "empty metadata", meta: Metadata{}},
		{
			name: "primitive values",
			meta: Metadata{
				"source":    "quarterly-report",
				"author":    "analyst",
				"page":      3,
				"score":     0.87,
				"published": true,
				"reviewed":  nil,
			},
		},
		{
			name:    "nested map rejected",
			meta:    Metadata{"extra": map[string]any{"a": 1}},
			wantErr: true,
		},
		{
			name:    "slice rejected",
			meta:    Metadata{"tags": []string{"a", "b"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error should wrap ErrInvalidInput, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
		})
	}
}
