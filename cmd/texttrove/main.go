// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the texttrove CLI: ingest documents
// into a knowledge base, search it, and summarize the results with an LLM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/config"
	"github.com/pdiddy/texttrove/internal/extract"
	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/internal/secrets"
	"github.com/pdiddy/texttrove/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries the loaded configuration to the subcommands.
type app struct {
	cfg     types.Config
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "texttrove",
		Short: "Search smarter, summarize faster",
		Long: `texttrove ingests local documents (.txt, .md, .rst, .pdf) into a knowledge
base, searches it, and summarizes what it finds with an LLM (Groq, Ollama or
Gemini).

The knowledge base is a MindsDB instance by default; set kb_backend: sqlite in
config.yaml for a local full-text index (the binary must be built with
-tags sqlite_fts5, as mage build does). Settings live in config.yaml, created
with defaults on first run.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", config.DefaultPath, "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newIngestCmd(a),
		newQueryCmd(a),
		newSummarizeCmd(a),
		newStatusCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newBenchCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup runs before every subcommand: logging, .env, config and secrets.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, created, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.ErrOrStderr(), "Created default %s. Please update it with your settings.\n", a.cfgFile)
	}

	s, err := secrets.Load(secrets.DefaultDir)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		slog.Debug("loaded secrets", "keys", secrets.Names(s))
	}
	config.ApplySecrets(&cfg, s)

	a.cfg = cfg
	return nil
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.RequestTimeout}
}

func (a *app) kbName(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.KBName
}

func (a *app) embedding() types.EmbeddingModel {
	return types.EmbeddingModel{
		ModelName: a.cfg.EmbeddingModel,
		Provider:  a.cfg.EmbeddingProvider,
	}
}

// openKB connects to the configured knowledge-base service.
func (a *app) openKB(ctx context.Context) (kb.Server, error) {
	return kb.Open(ctx, a.cfg, a.httpClient())
}

// extractor builds the text extractor for the configured PDF backend. A
// backend that cannot run here disables PDF support with a warning.
func (a *app) extractor() *extract.Extractor {
	pdf, err := extract.NewPDFReader(a.cfg.PDFBackend)
	if err != nil {
		slog.Warn("PDF support disabled", "backend", a.cfg.PDFBackend, "error", err)
		return extract.New(nil)
	}
	return extract.New(pdf)
}

// lookupKB returns an existing knowledge base, suggesting close names when
// it is missing.
func lookupKB(ctx context.Context, s kb.Server, name string) (kb.KnowledgeBase, error) {
	if err := kb.ValidateName(name); err != nil {
		return nil, err
	}
	target, err := s.Get(ctx, name)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, kb.ErrNotFound) {
		return nil, fmt.Errorf("opening knowledge base %s: %w", name, err)
	}

	hint := ""
	if names, lerr := s.List(ctx); lerr == nil {
		if matches := kb.Suggest(name, names); len(matches) > 0 {
			hint = fmt.Sprintf(" (did you mean %s?)", strings.Join(matches, ", "))
		}
	}
	return nil, fmt.Errorf("%w: %q%s", kb.ErrNotFound, name, hint)
}

// closeQuietly closes c when it implements io.Closer.
func closeQuietly(c any) {
	if cl, ok := c.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			slog.Debug("close failed", "error", err)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
