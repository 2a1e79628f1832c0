// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bench fires concurrent searches at a knowledge base and reports
// per-query latency.
package bench

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/texttrove/internal/kb"
)

const (
	DefaultQueries = 10
	DefaultLimit   = 3
)

// DefaultTerms are cycled through when no search terms are given.
var DefaultTerms = []string{
	"project management",
	"artificial intelligence",
	"cloud computing",
	"cybersecurity",
	"technology trends",
}

// Options controls a run. Zero values pick the defaults.
type Options struct {
	Queries     int
	Concurrency int // 0 runs all queries at once
	Limit       int
	Terms       []string
}

// Result is the outcome of one query.
type Result struct {
	ID       int
	Term     string
	Hits     int
	Duration time.Duration
	Err      error
}

// Report aggregates a run.
type Report struct {
	Results []Result
	Total   time.Duration
}

// Failed counts queries that returned an error.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Run issues the queries against target and prints one line per query as
// it completes, then a summary line. A failed query is reported, not
// returned; Run only errors when ctx is cancelled.
func Run(ctx context.Context, target kb.KnowledgeBase, opts Options, w io.Writer) (Report, error) {
	opts = withDefaults(opts)

	results := make([]Result, opts.Queries)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	start := time.Now()
	for i := range opts.Queries {
		term := opts.Terms[i%len(opts.Terms)]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Result{ID: i + 1, Term: term}
			t0 := time.Now()
			hits, err := target.Search(ctx, term, opts.Limit)
			res.Duration = time.Since(t0)
			res.Hits = len(hits)
			res.Err = err

			mu.Lock()
			results[i] = res
			if err != nil {
				fmt.Fprintf(w, "query %-3d %q failed: %v\n", res.ID, term, err)
			} else {
				fmt.Fprintf(w, "query %-3d %q: %d results in %.2fs\n", res.ID, term, res.Hits, res.Duration.Seconds())
			}
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	report := Report{Results: results, Total: time.Since(start)}
	if err != nil {
		return report, err
	}

	fmt.Fprintf(w, "\ncompleted %d queries in %.2fs (%d failed)\n",
		len(results), report.Total.Seconds(), report.Failed())
	return report, nil
}

func withDefaults(opts Options) Options {
	if opts.Queries <= 0 {
		opts.Queries = DefaultQueries
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if len(opts.Terms) == 0 {
		opts.Terms = DefaultTerms
	}
	return opts
}
