// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttrove/internal/ingest"
	"github.com/pdiddy/texttrove/internal/kb"
)

func newIngestCmd(a *app) *cobra.Command {
	var kbName, category string

	cmd := &cobra.Command{
		Use:   "ingest FOLDER",
		Short: "Ingest the documents in a folder into the knowledge base",
		Long: `Ingest reads every .txt, .md, .rst and .pdf file directly inside FOLDER
(subdirectories are not visited), extracts its text and inserts one record per
file into the knowledge base, creating the knowledge base if needed.

Empty files are skipped. A file that fails to extract or insert is reported
and counted; the run continues with the next file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			folder := args[0]
			name := a.kbName(kbName)

			printBanner(out)

			if _, err := ingest.SupportedFiles(folder); err != nil {
				return err
			}
			if err := kb.ValidateName(name); err != nil {
				return err
			}

			server, err := a.openKB(ctx)
			if err != nil {
				return err
			}
			defer server.Close()

			target, created, err := kb.GetOrCreate(ctx, server, name, a.embedding())
			if err != nil {
				return err
			}
			if created {
				printNotice(out, "Created new knowledge base: "+name)
			} else {
				printNotice(out, "Using existing knowledge base: "+name)
			}

			summary, err := ingest.New(a.extractor(), target).Run(ctx, folder, category, out)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\n"+summaryTable("Ingestion Summary", [][2]string{
				{"Files Processed", strconv.Itoa(summary.Processed)},
				{"Files Skipped", strconv.Itoa(summary.Skipped)},
				{"Files Failed", strconv.Itoa(summary.Failed)},
				{"Knowledge Base", name},
				{"Category", category},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kbName, "kb-name", "k", "", "knowledge base name (default from config)")
	cmd.Flags().StringVarP(&category, "category", "c", "general", "category stored with each record")
	return cmd
}
