// Package gemini implements the TextTransformer port over Google's GenAI API,
// for deployments that route the cheap structuring call to Gemini instead of
// the deep research provider.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/campaignforge/research-api/internal/core"
)

// Transformer performs single-shot text transformation via Gemini.
type Transformer struct {
	client *genai.Client
	model  string
}

// TransformerOptions groups dependencies for Transformer.
type TransformerOptions struct {
	APIKey string // Required: Gemini API key
	Model  string // Optional: defaults to gemini-2.0-flash
}

// NewTransformer constructs a new Transformer.
func NewTransformer(ctx context.Context, opts TransformerOptions) (*Transformer, error) {
	if opts.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}

	return &Transformer{client: client, model: model}, nil
}

// TransformText issues one generation call and returns the response text.
func (t *Transformer) TransformText(ctx context.Context, prompt string) (string, error) {
	result, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("Gemini returned no text")
	}
	return text, nil
}

var _ core.TextTransformer = (*Transformer)(nil)
