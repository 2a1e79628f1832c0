// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/bench"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		kbName string
		opts   bench.Options
	)

	cmd := &cobra.Command{
		Use:   "bench [TERMS...]",
		Short: "Run concurrent searches and report latency",
		Long: `Bench issues -n searches against the knowledge base, cycling through TERMS
(or a built-in list), and prints the latency of each query and the total
time. By default all queries run at once; --concurrency caps parallelism.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			opts.Terms = args

			server, err := a.openKB(ctx)
			if err != nil {
				return err
			}
			defer server.Close()

			target, err := lookupKB(ctx, server, a.kbName(kbName))
			if err != nil {
				return err
			}

			report, err := bench.Run(ctx, target, opts, out)
			if err != nil {
				return err
			}
			if n := report.Failed(); n == len(report.Results) {
				return fmt.Errorf("all %d queries failed", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kbName, "kb-name", "k", "", "knowledge base name (default from config)")
	cmd.Flags().IntVarP(&opts.Queries, "queries", "n", bench.DefaultQueries, "number of queries")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "max queries in flight (0 = all)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", bench.DefaultLimit, "results per query")
	return cmd
}
