// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize sends retrieved snippets to an LLM and returns its
// summary. Providers are Groq (OpenAI-compatible), Ollama and Gemini.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/texttrove/pkg/types"
)

// Provider names accepted in the ai_provider config key.
const (
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

const (
	// CombineCount is the number of results Combine keeps.
	CombineCount = 3

	// CombineChars is the per-result character limit in Combine.
	CombineChars = 500

	promptPrefix = "Summarize this:\n\n"
)

var (
	// ErrMissingAPIKey is returned when a hosted provider has no API key.
	ErrMissingAPIKey = errors.New("API key not configured")

	// ErrUnknownProvider is returned for an unrecognised ai_provider.
	ErrUnknownProvider = errors.New("unknown AI provider")

	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Summarizer produces a summary of text.
type Summarizer interface {
	// Name identifies the provider.
	Name() string

	Summarize(ctx context.Context, text string) (string, error)
}

// New returns the summarizer selected by cfg.AIProvider. An empty provider
// falls back to Ollama, the only provider that needs no credentials.
func New(ctx context.Context, cfg types.Config, client *http.Client) (Summarizer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	switch provider {
	case ProviderGroq:
		g, err := NewGroq(cfg.GroqAPIKey, cfg.GroqModel, client)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, client), nil
	case "":
		slog.Warn("ai_provider not set, falling back to ollama", "url", cfg.OllamaURL)
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, client), nil
	default:
		return nil, fmt.Errorf("%w %q: use groq, ollama or gemini", ErrUnknownProvider, cfg.AIProvider)
	}
}

// BuildPrompt wraps text in the summarization instruction.
func BuildPrompt(text string) string {
	return promptPrefix + text
}

// Combine joins the content of the first CombineCount results, each cut to
// CombineChars characters, separated by a blank line.
func Combine(results []types.SearchResult) string {
	if len(results) > CombineCount {
		results = results[:CombineCount]
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = Truncate(r.Content, CombineChars)
	}
	return strings.Join(parts, "\n\n")
}

// Truncate returns the first n characters of s. It counts runes, not bytes,
// so multi-byte characters are never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
