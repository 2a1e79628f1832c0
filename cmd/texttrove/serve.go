// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/mcpserver"
	"github.com/pdiddy/texttrove/internal/summarize"
	"github.com/pdiddy/texttrove/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Long: `Serve starts the browser interface (search, upload, status) and the JSON
API under /v1. The server keeps running when the knowledge-base service is
down at startup; pages report it as disconnected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := web.Options{
				Config:     a.cfg,
				Extractor:  a.extractor(),
				Summarizer: a.summarizer(ctx),
			}
			defer closeQuietly(opts.Summarizer)

			server, err := a.openKB(ctx)
			if err != nil {
				slog.Warn("knowledge base unavailable, serving without it", "error", err)
			} else {
				defer server.Close()
				opts.KB = server
			}

			srv, err := web.NewServer(opts)
			if err != nil {
				return err
			}
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", web.DefaultAddr, "listen address")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdio",
		Long: `MCP serves the Model Context Protocol on stdin/stdout so that MCP clients
can call the search_knowledge_base, summarize and list_knowledge_bases tools.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			server, err := a.openKB(ctx)
			if err != nil {
				return err
			}
			defer server.Close()

			s := a.summarizer(ctx)
			defer closeQuietly(s)

			return mcpserver.New(server, a.cfg.KBName, s, version).ServeStdio()
		},
	}
}

// summarizer builds the cached summarizer for long-running servers. It
// returns nil, after logging, when the provider cannot be set up.
func (a *app) summarizer(ctx context.Context) summarize.Summarizer {
	s, err := summarize.New(ctx, a.cfg, a.httpClient())
	if err != nil {
		slog.Warn("summarization disabled", "provider", a.cfg.AIProvider, "error", err)
		return nil
	}
	cached, err := summarize.NewCached(s, summarize.DefaultCacheSize)
	if err != nil {
		slog.Warn("summary cache disabled", "error", err)
		return s
	}
	return cached
}
