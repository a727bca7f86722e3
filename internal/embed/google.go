package embed

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"google.golang.org/genai"
)

// GoogleProvider is the production Provider backed by the Gemini embedding
// API via Genkit. Requires GEMINI_API_KEY in the environment and the
// googlegenai plugin registered on g.
type GoogleProvider struct {
	embedder ai.Embedder
	model    string
	dim      int32
}

// NewGoogleProvider creates a provider for the given embedder model.
//
// dim > 0 requests output truncation to dim dimensions
// (gemini-embedding-001 supports Matryoshka truncation; the full output is
// 3072 dimensions). dim must match the vector column width in the store
// schema.
func NewGoogleProvider(g *genkit.Genkit, model string, dim int32) *GoogleProvider {
	return &GoogleProvider{
		embedder: googlegenai.GoogleAIEmbedder(g, model),
		model:    model,
		dim:      dim,
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string {
	return "googleai/" + p.model
}

// Embed implements Provider.
func (p *GoogleProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	}
	if p.dim > 0 {
		dim := p.dim
		req.Options = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	resp, err := p.embedder.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Embeddings[0].Embedding, nil
}
