// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/summarize"
	"github.com/pdiddy/texttrove/pkg/types"
)

const defaultQueryLimit = 5

func newQueryCmd(a *app) *cobra.Command {
	var (
		kbName     string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "query SEARCH",
		Short: "Search the knowledge base",
		Long: `Query searches the knowledge base and prints each result with its source
file. Content is shortened to 300 characters; use --json for the full records.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			search := args[0]

			if !jsonOutput {
				printBanner(out)
			}

			server, err := a.openKB(ctx)
			if err != nil {
				return err
			}
			defer server.Close()

			target, err := lookupKB(ctx, server, a.kbName(kbName))
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = defaultQueryLimit
			}
			results, err := target.Search(ctx, search, limit)
			if err != nil {
				return fmt.Errorf("searching %s: %w", target.Name(), err)
			}

			if jsonOutput {
				if results == nil {
					results = []types.SearchResult{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				printNotice(out, "No results found.")
				return nil
			}

			fmt.Fprintf(out, "Found %d results for: '%s'\n\n", len(results), search)
			for i, r := range results {
				fmt.Fprintln(out, renderResult(i+1, r))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kbName, "kb-name", "k", "", "knowledge base name (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultQueryLimit, "maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	var (
		kbName string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "summarize SEARCH",
		Short: "Search the knowledge base and summarize the top results",
		Long: `Summarize searches the knowledge base, joins the first 500 characters of
each result and asks the configured ai_provider (groq, ollama or gemini) for a
summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			search := args[0]

			printBanner(out)

			// A misconfigured provider fails before any search runs.
			s, err := summarize.New(ctx, a.cfg, a.httpClient())
			if err != nil {
				return err
			}
			defer closeQuietly(s)

			server, err := a.openKB(ctx)
			if err != nil {
				return err
			}
			defer server.Close()

			target, err := lookupKB(ctx, server, a.kbName(kbName))
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = summarize.CombineCount
			}
			results, err := target.Search(ctx, search, limit)
			if err != nil {
				return fmt.Errorf("searching %s: %w", target.Name(), err)
			}
			if len(results) == 0 {
				printNotice(out, "No results to summarize.")
				return nil
			}

			summary, err := s.Summarize(ctx, summarize.Combine(results))
			if err != nil {
				return fmt.Errorf("summarizing with %s: %w", s.Name(), err)
			}

			md := fmt.Sprintf("**Query:** %s\n\n## Summary\n\n%s\n", search, summary)
			fmt.Fprint(out, renderMarkdown(md))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kbName, "kb-name", "k", "", "knowledge base name (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "l", summarize.CombineCount, "number of results to search (at most 3 are summarized)")
	return cmd
}
