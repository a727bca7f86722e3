package cmd

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn and returns what it printed.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fnErr := fn()
	_ = w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	if fnErr != nil {
		t.Fatalf("captured function failed: %v", fnErr)
	}
	return string(out)
}

func TestRunVersion(t *testing.T) {
	original := AppVersion
	defer func() { AppVersion = original }()

	tests := []struct {
		name    string
		version string
	}{
		{name: "release version", version: "1.2.3"},
		{name: "development build", version: "development"},
		{name: "pre-release", version: "2.0.0-beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AppVersion = tt.version
			t.Setenv("GEMINI_API_KEY", "")

			out := captureStdout(t, runVersion)

			if !strings.Contains(out, "finsight "+tt.version) {
				t.Errorf("output missing version %q:\n%s", tt.version, out)
			}
			if !strings.Contains(out, "Not set") {
				t.Errorf("output should report missing API key:\n%s", out)
			}
		})
	}
}

func TestRunVersion_APIKeyMasking(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "AIzaSyFakeKey1234567890")

	out := captureStdout(t, runVersion)

	if strings.Contains(out, "AIzaSyFakeKey1234567890") {
		t.Error("full API key must never be printed")
	}
	if !strings.Contains(out, "AIza...7890") {
		t.Errorf("output should show the masked key:\n%s", out)
	}
}

func TestRunVersion_ShortAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "abc")

	out := captureStdout(t, runVersion)

	if strings.Contains(out, "abc...") {
		t.Errorf("short keys must not be sliced:\n%s", out)
	}
	if !strings.Contains(out, "configured") {
		t.Errorf("output should report a configured key:\n%s", out)
	}
}
