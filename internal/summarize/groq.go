// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama3-8b-8192"
)

// Groq summarizes through Groq's OpenAI-compatible chat completions API.
type Groq struct {
	client openai.Client
	model  string
}

// NewGroq returns a Groq summarizer. An empty model selects llama3-8b-8192.
func NewGroq(apiKey, model string, httpClient *http.Client, opts ...option.RequestOption) (*Groq, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("groq: %w (set groq_api_key or TEXTTROVE_GROQ_API_KEY)", ErrMissingAPIKey)
	}
	if model == "" {
		model = groqDefaultModel
	}

	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(groqBaseURL),
	}
	if httpClient != nil {
		base = append(base, option.WithHTTPClient(httpClient))
	}

	return &Groq{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

// Name implements Summarizer.
func (g *Groq) Name() string { return ProviderGroq }

// Summarize implements Summarizer.
func (g *Groq) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	return completionText(resp)
}

func completionText(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq: %w", ErrEmptyResponse)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("groq: %w", ErrEmptyResponse)
	}
	return out, nil
}
