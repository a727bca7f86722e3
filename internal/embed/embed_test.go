package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finsight/finsight/internal/document"
)

// mockProvider implements Provider for testing.
type mockProvider struct {
	vector    []float32     // vector to return
	err       error         // error to return
	delay     time.Duration // simulated provider latency
	callCount int
	lastText  string
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	m.lastText = text

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func TestClient_Embed_Success(t *testing.T) {
	provider := &mockProvider{vector: []float32{0.1, 0.2, 0.3}}
	client := NewClient(provider, WithDimension(3))

	vec, err := client.Embed(context.Background(), "Revenue grew 12% YoY")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vec) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(vec))
	}
	if provider.callCount != 1 {
		t.Errorf("expected one provider call, got %d", provider.callCount)
	}
	if provider.lastText != "Revenue grew 12% YoY" {
		t.Errorf("provider received wrong text: %q", provider.lastText)
	}
}

func TestClient_Embed_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \t\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{vector: []float32{0.1}}
			client := NewClient(provider)

			_, err := client.Embed(context.Background(), tt.text)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, document.ErrInvalidInput) {
				t.Errorf("error should wrap ErrInvalidInput, got: %v", err)
			}
			if provider.callCount != 0 {
				t.Error("provider should not be called for empty input")
			}
		})
	}
}

func TestClient_Embed_ProviderFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *mockProvider
	}{
		{
			name:     "provider error",
			provider: &mockProvider{err: errors.New("quota exceeded")},
		},
		{
			name:     "empty vector",
			provider: &mockProvider{vector: []float32{}},
		},
		{
			name:     "nil vector",
			provider: &mockProvider{vector: nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.provider)

			_, err := client.Embed(context.Background(), "some text")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, document.ErrEmbeddingUnavailable) {
				t.Errorf("error should wrap ErrEmbeddingUnavailable, got: %v", err)
			}
		})
	}
}

func TestClient_Embed_DimensionMismatch(t *testing.T) {
	provider := &mockProvider{vector: []float32{0.1, 0.2}}
	client := NewClient(provider, WithDimension(768))

	_, err := client.Embed(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, document.ErrEmbeddingUnavailable) {
		t.Errorf("dimension mismatch should surface as ErrEmbeddingUnavailable, got: %v", err)
	}
}

func TestClient_Embed_Timeout(t *testing.T) {
	provider := &mockProvider{
		vector: []float32{0.1},
		delay:  5 * time.Second,
	}
	client := NewClient(provider, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Embed(context.Background(), "slow provider")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, document.ErrEmbeddingUnavailable) {
		t.Errorf("timeout should surface as ErrEmbeddingUnavailable, got: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestClient_Embed_ContextCancellation(t *testing.T) {
	provider := &mockProvider{
		vector: []float32{0.1},
		delay:  5 * time.Second,
	}
	client := NewClient(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Embed(ctx, "cancelled")
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if !errors.Is(err, document.ErrEmbeddingUnavailable) {
		t.Errorf("cancellation should surface as ErrEmbeddingUnavailable, got: %v", err)
	}
}

func TestClient_Embed_RateLimit(t *testing.T) {
	provider := &mockProvider{vector: []float32{0.1}}
	// 100 rps with burst 1: second call waits ~10ms instead of failing.
	client := NewClient(provider, WithRateLimit(100, 1))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.Embed(ctx, "text"); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	if provider.callCount != 3 {
		t.Errorf("expected 3 provider calls, got %d", provider.callCount)
	}
}
