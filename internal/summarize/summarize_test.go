// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/texttrove/pkg/types"
)

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "Summarize this:\n\nsome text", BuildPrompt("some text"))
}

func TestCombine(t *testing.T) {
	long := strings.Repeat("x", 600)
	results := []types.SearchResult{
		{Content: "first"},
		{Content: long},
		{Content: "third"},
		{Content: "fourth is dropped"},
	}

	got := Combine(results)
	assert.Equal(t, "first\n\n"+strings.Repeat("x", 500)+"\n\nthird", got)
	assert.NotContains(t, got, "fourth")

	assert.Equal(t, "", Combine(nil))
	assert.Equal(t, "only", Combine([]types.SearchResult{{Content: "only"}}))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 4, "héll"},
		{"日本語テキスト", 3, "日本語"},
		{"anything", 0, ""},
		{"", 3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.n), "%q/%d", tt.in, tt.n)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      types.Config
		wantName string
		wantErr  error
	}{
		{"groq with key", types.Config{AIProvider: "groq", GroqAPIKey: "gsk_test"}, ProviderGroq, nil},
		{"groq case-insensitive", types.Config{AIProvider: " Groq ", GroqAPIKey: "gsk_test"}, ProviderGroq, nil},
		{"groq without key", types.Config{AIProvider: "groq"}, "", ErrMissingAPIKey},
		{"gemini without key", types.Config{AIProvider: "gemini"}, "", ErrMissingAPIKey},
		{"ollama", types.Config{AIProvider: "ollama"}, ProviderOllama, nil},
		{"empty falls back to ollama", types.Config{}, ProviderOllama, nil},
		{"unknown", types.Config{AIProvider: "claude"}, "", ErrUnknownProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(ctx, tt.cfg, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestOllamaSummarize(t *testing.T) {
	var got ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"model":"llama3","response":"  A short summary.\n","done":true}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL+"/", "", srv.Client())
	out, err := o.Summarize(context.Background(), "long text")
	require.NoError(t, err)

	assert.Equal(t, "A short summary.", out)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "Summarize this:\n\nlong text", got.Prompt)
	assert.False(t, got.Stream)
}

func TestOllamaErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusNotFound, `{"error":"model 'llama9' not found"}`, "status 404"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "out of memory"},
		{"empty response", http.StatusOK, `{"response":"   "}`, ErrEmptyResponse.Error()},
		{"bad json", http.StatusOK, `not json`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllama(srv.URL, "llama9", srv.Client()).Summarize(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGroqSummarize(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama3-8b-8192",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Groq summary."}}]
		}`))
	}))
	defer srv.Close()

	g, err := NewGroq("gsk_test", "", srv.Client(),
		option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := g.Summarize(context.Background(), "snippets")
	require.NoError(t, err)
	assert.Equal(t, "Groq summary.", out)
	assert.Equal(t, "Bearer gsk_test", gotAuth)
	assert.Equal(t, "llama3-8b-8192", gotBody["model"])

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "Summarize this:\n\nsnippets", msg["content"])
}

func TestGroqServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	g, err := NewGroq("bad", "", srv.Client(), option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = g.Summarize(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq")
}

func TestCompletionText(t *testing.T) {
	_, err := completionText(&openai.ChatCompletion{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	out, err := completionText(&openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  Hello  "}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	out, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Gemini "), genai.Text("summary.")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gemini summary.", out)
}

// countingSummarizer counts calls and can be told to fail.
type countingSummarizer struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingSummarizer) Name() string { return "counting" }

func (c *countingSummarizer) Summarize(_ context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return "", errors.New("provider down")
	}
	return "summary of " + text, nil
}

func TestCached(t *testing.T) {
	inner := &countingSummarizer{}
	c, err := NewCached(inner, 2)
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		out, err := c.Summarize(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "summary of a", out)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", c.Name())

	c.Summarize(ctx, "b")
	c.Summarize(ctx, "c") // evicts "a"
	assert.Equal(t, 2, c.Len())

	c.Summarize(ctx, "a")
	assert.Equal(t, 4, inner.calls)
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingSummarizer{fail: true}
	c, err := NewCached(inner, 0)
	require.NoError(t, err)

	_, err = c.Summarize(context.Background(), "a")
	assert.Error(t, err)
	_, err = c.Summarize(context.Background(), "a")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, c.Len())
}

func TestCachedConcurrent(t *testing.T) {
	inner := &countingSummarizer{}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Summarize(context.Background(), string(rune('a'+i%4)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
