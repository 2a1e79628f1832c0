// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiDefaultModel = "gemini-2.0-flash"

// Gemini summarizes with Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini returns a Gemini summarizer. An empty model selects
// gemini-2.0-flash. Extra options are passed to the genai client.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: %w (set gemini_api_key or TEXTTROVE_GEMINI_API_KEY)", ErrMissingAPIKey)
	}
	if model == "" {
		model = geminiDefaultModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.2)

	return &Gemini{client: client, model: m}, nil
}

// Name implements Summarizer.
func (g *Gemini) Name() string { return ProviderGemini }

// Summarize implements Summarizer.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return out, nil
}
