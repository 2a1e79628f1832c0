// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes the knowledge base to MCP clients over stdio:
// search, summarize and list tools backed by the same kb and summarize
// packages as the CLI.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/internal/summarize"
)

const (
	serverName    = "texttrove"
	searchLimit   = 5
	snippetChars  = 300
	maxToolLimit  = 50
	noResultsText = "No results found."
)

// Server answers MCP tool calls against one knowledge-base service.
type Server struct {
	kb         kb.Server
	kbName     string
	summarizer summarize.Summarizer
	version    string
}

// New returns a Server. kbName is used when a call names no knowledge
// base. A nil summarizer makes the summarize tool report an error.
func New(kbServer kb.Server, kbName string, summarizer summarize.Summarizer, version string) *Server {
	return &Server{kb: kbServer, kbName: kbName, summarizer: summarizer, version: version}
}

// MCPServer builds the protocol server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	ms := server.NewMCPServer(serverName, s.version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	ms.AddTool(
		mcp.NewTool("search_knowledge_base",
			mcp.WithDescription("Search ingested documents and return the best matching snippets with their source files."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
			mcp.WithNumber("limit", mcp.Description("Max number of results (default 5)")),
			mcp.WithString("kb_name", mcp.Description("Knowledge base to search (default from config)")),
		),
		s.handleSearch,
	)

	ms.AddTool(
		mcp.NewTool("summarize",
			mcp.WithDescription("Search the knowledge base and summarize the top results with the configured LLM."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
			mcp.WithNumber("limit", mcp.Description("Number of results to summarize (default 3)")),
			mcp.WithString("kb_name", mcp.Description("Knowledge base to search (default from config)")),
		),
		s.handleSummarize,
	)

	ms.AddTool(
		mcp.NewTool("list_knowledge_bases",
			mcp.WithDescription("List the knowledge bases on the connected service."),
		),
		s.handleList,
	)

	return ms
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	slog.Info("starting MCP server on stdio", "kb", s.kbName)
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query argument required"), nil
	}
	limit := clamp(req.GetInt("limit", searchLimit), searchLimit)

	target, errResult := s.target(ctx, req.GetString("kb_name", ""))
	if errResult != nil {
		return errResult, nil
	}
	results, err := target.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(noResultsText), nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		source := r.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, source)
		if r.Metadata.Category != "" {
			fmt.Fprintf(&b, " (%s)", r.Metadata.Category)
		}
		b.WriteString("\n")
		snippet := summarize.Truncate(r.Content, snippetChars)
		b.WriteString(snippet)
		if len(snippet) < len(r.Content) {
			b.WriteString("...")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query argument required"), nil
	}
	if s.summarizer == nil {
		return mcp.NewToolResultError("no summarizer configured: set ai_provider in config.yaml"), nil
	}
	limit := clamp(req.GetInt("limit", summarize.CombineCount), summarize.CombineCount)

	target, errResult := s.target(ctx, req.GetString("kb_name", ""))
	if errResult != nil {
		return errResult, nil
	}
	results, err := target.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results to summarize."), nil
	}

	summary, err := s.summarizer.Summarize(ctx, summarize.Combine(results))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s summarization failed: %v", s.summarizer.Name(), err)), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.kb.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing knowledge bases failed: %v", err)), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No knowledge bases found."), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// target resolves the knowledge base for a call. Failures come back as a
// tool error result so the client sees the message.
func (s *Server) target(ctx context.Context, name string) (kb.KnowledgeBase, *mcp.CallToolResult) {
	if name == "" {
		name = s.kbName
	}
	target, err := s.kb.Get(ctx, name)
	if errors.Is(err, kb.ErrNotFound) {
		msg := fmt.Sprintf("knowledge base %q not found", name)
		if names, lerr := s.kb.List(ctx); lerr == nil {
			if matches := kb.Suggest(name, names); len(matches) > 0 {
				msg += "; did you mean " + strings.Join(matches, ", ") + "?"
			}
		}
		return nil, mcp.NewToolResultError(msg)
	}
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("opening knowledge base: %v", err))
	}
	return target, nil
}

func clamp(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxToolLimit {
		return maxToolLimit
	}
	return limit
}
