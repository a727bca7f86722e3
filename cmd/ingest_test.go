package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadJSONL(t *testing.T) {
	origWorkspace, origType := ingestWorkspace, ingestType
	defer func() { ingestWorkspace, ingestType = origWorkspace, origType }()
	ingestWorkspace = "ws1"
	ingestType = "insight"

	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := `{"content":"Revenue grew 12% YoY","metadata":{"source":"q3"}}

{"content":"Expenses fell 3%","type":"summary"}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	items, err := readJSONL(path)
	if err != nil {
		t.Fatalf("readJSONL failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (blank lines skipped)", len(items))
	}
	if items[0].WorkspaceID != "ws1" {
		t.Errorf("workspace flag should apply to every item, got %q", items[0].WorkspaceID)
	}
	if items[0].Type != "insight" {
		t.Errorf("item without type should inherit the flag, got %q", items[0].Type)
	}
	if items[0].Metadata["source"] != "q3" {
		t.Error("metadata should parse")
	}
	if items[1].Type != "summary" {
		t.Errorf("per-item type should win over the flag, got %q", items[1].Type)
	}
}

func TestReadJSONL_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"content\":\"ok\"}\nnot json\n"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := readJSONL(path); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestReadJSONL_MissingFile(t *testing.T) {
	if _, err := readJSONL(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
