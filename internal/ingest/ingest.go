// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest walks a folder, extracts each supported file and submits
// one record per non-empty file to a knowledge base. Failures are counted
// per file and never stop the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/texttrove/internal/extract"
	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/pkg/types"
)

var (
	// ErrFolderNotFound is returned when the ingestion folder does not exist.
	ErrFolderNotFound = errors.New("folder does not exist")

	// ErrNotDirectory is returned when the ingestion path is a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNoSupportedFiles is returned when the folder holds nothing to ingest.
	ErrNoSupportedFiles = errors.New("no supported files found")
)

// Extractor turns a file into text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Summary holds counts from an ingestion run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of files attempted.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// Ingester submits the files of a folder to one knowledge base.
type Ingester struct {
	extractor Extractor
	target    kb.KnowledgeBase
	now       func() time.Time
}

// New returns an Ingester that extracts with ext and inserts into target.
func New(ext Extractor, target kb.KnowledgeBase) *Ingester {
	return &Ingester{extractor: ext, target: target, now: time.Now}
}

// SupportedFiles validates folder and returns its supported files sorted by
// name. Subdirectories are not descended into.
func SupportedFiles(folder string) ([]string, error) {
	info, err := os.Stat(folder)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(folder, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (supported formats: %s)",
			ErrNoSupportedFiles, folder, strings.Join(extract.SupportedExtensions, ", "))
	}
	sort.Strings(files)
	return files, nil
}

// NewRecord builds the record submitted for one file.
func NewRecord(path, text, category string, now time.Time) types.Record {
	return types.Record{
		Content: text,
		Metadata: types.Metadata{
			Source:    filepath.Base(path),
			Category:  category,
			DateAdded: now.Format(types.DateLayout),
			FileType:  extract.Ext(path),
		},
	}
}

// Run ingests every supported file in folder under category, printing one
// status line per file and a summary line to w. It returns an error only
// when the folder fails validation or ctx is cancelled; per-file problems
// are reflected in the Summary.
func (i *Ingester) Run(ctx context.Context, folder, category string, w io.Writer) (Summary, error) {
	files, err := SupportedFiles(folder)
	if err != nil {
		return Summary{}, err
	}

	fmt.Fprintf(w, "processing %d files...\n", len(files))

	var summary Summary
	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)
		text, err := i.extractor.Extract(ctx, path)
		if err != nil {
			slog.Debug("extraction failed", "file", path, "error", err)
			fmt.Fprintf(w, "failed    %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		if strings.TrimSpace(text) == "" {
			fmt.Fprintf(w, "skipped   %s (empty)\n", name)
			summary.Skipped++
			continue
		}

		rec := NewRecord(path, text, category, i.now())
		if err := i.target.Insert(ctx, []types.Record{rec}); err != nil {
			slog.Debug("insert failed", "file", path, "kb", i.target.Name(), "error", err)
			fmt.Fprintf(w, "failed    %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "processed %s (%d chars)\n", name, len(text))
		summary.Processed++
	}

	fmt.Fprintf(w, "\nprocessed: %d, skipped: %d, failed: %d\n",
		summary.Processed, summary.Skipped, summary.Failed)
	return summary, nil
}
