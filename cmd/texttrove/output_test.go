// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/texttrove/pkg/types"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello world", "hello world"},
		{"exact", strings.Repeat("a", snippetChars), strings.Repeat("a", snippetChars)},
		{"long", strings.Repeat("a", snippetChars+1), strings.Repeat("a", snippetChars) + "..."},
		{"multibyte", strings.Repeat("é", snippetChars+5), strings.Repeat("é", snippetChars) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snippet(tt.content))
		})
	}
}

func TestRenderResult(t *testing.T) {
	out := renderResult(2, types.SearchResult{
		Content:   "Raft elects a leader.",
		Metadata:  types.Metadata{Source: "raft.md", Category: "distsys"},
		Relevance: 0.75,
	})
	assert.Contains(t, out, "Result 2")
	assert.Contains(t, out, "raft.md")
	assert.Contains(t, out, "distsys")
	assert.Contains(t, out, "0.75")
	assert.Contains(t, out, "Raft elects a leader.")

	out = renderResult(1, types.SearchResult{Content: "x"})
	assert.Contains(t, out, "Unknown")
	assert.NotContains(t, out, "Relevance")
}

func TestSummaryTable(t *testing.T) {
	out := summaryTable("Ingestion Summary", [][2]string{
		{"Files Processed", "3"},
		{"Category", "general"},
	})
	assert.Contains(t, out, "Ingestion Summary")
	assert.Contains(t, out, "Files Processed")
	assert.Contains(t, out, "general")
}

func TestRenderMarkdownKeepsText(t *testing.T) {
	out := renderMarkdown("## Summary\n\nLeaders are elected.\n")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "elected")
}
