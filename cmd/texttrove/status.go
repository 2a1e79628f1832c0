// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/kb"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the knowledge-base connection and available knowledge bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			server, err := a.openKB(ctx)
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", check(false), kb.Describe(a.cfg))
				return err
			}
			defer server.Close()

			names, err := server.List(ctx)
			if err != nil {
				return fmt.Errorf("listing knowledge bases: %w", err)
			}

			configured := a.cfg.KBName
			if !slices.Contains(names, configured) {
				configured += " (not created yet)"
			}
			list := "none"
			if len(names) > 0 {
				list = strings.Join(names, ", ")
			}

			fmt.Fprintf(out, "%s Connected to %s\n\n", check(true), kb.Describe(a.cfg))
			fmt.Fprintln(out, summaryTable("Status", [][2]string{
				{"Backend", string(a.cfg.KBBackend)},
				{"Configured KB", configured},
				{"Knowledge Bases", list},
				{"AI Provider", a.cfg.AIProvider},
			}))
			return nil
		},
	}
}
