// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/texttrove/internal/summarize"
	"github.com/pdiddy/texttrove/pkg/types"
)

const (
	snippetChars = 300
	wrapWidth    = 80
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1).
			Width(wrapWidth)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, bannerStyle.Render("TextTrove CLI\nSearch Smarter, Summarize Faster"))
}

func printNotice(w io.Writer, msg string) {
	fmt.Fprintln(w, noticeStyle.Render(msg))
}

// snippet shortens content for display, marking the cut with "...".
func snippet(content string) string {
	s := summarize.Truncate(content, snippetChars)
	if len(s) < len(content) {
		return s + "..."
	}
	return s
}

// renderResult draws one search result as a bordered panel.
func renderResult(i int, r types.SearchResult) string {
	source := r.Metadata.Source
	if source == "" {
		source = "Unknown"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Result %d", i)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Source:") + " " + source)
	if r.Metadata.Category != "" {
		b.WriteString("  " + labelStyle.Render("Category:") + " " + r.Metadata.Category)
	}
	if r.Relevance != 0 {
		b.WriteString(fmt.Sprintf("  %s %.2f", labelStyle.Render("Relevance:"), r.Relevance))
	}
	b.WriteString("\n\n")
	b.WriteString(snippet(r.Content))
	return panelStyle.Render(b.String())
}

// summaryTable renders label/value rows under a header.
func summaryTable(title string, rows [][2]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Value")
	for _, r := range rows {
		t.Row(r[0], r[1])
	}
	return titleStyle.Render(title) + "\n" + t.String()
}

// renderMarkdown formats an LLM summary for the terminal. The plain text is
// returned when rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func check(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}
