// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of summaries Cached keeps.
const DefaultCacheSize = 128

// Cached memoises a Summarizer by input text. Failures are not cached.
// It is safe for concurrent use.
type Cached struct {
	next  Summarizer
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU cache of size entries.
func NewCached(next Summarizer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

// Name implements Summarizer.
func (c *Cached) Name() string { return c.next.Name() }

// Summarize implements Summarizer.
func (c *Cached) Summarize(ctx context.Context, text string) (string, error) {
	key := c.key(text)
	if out, ok := c.cache.Get(key); ok {
		slog.Debug("summary cache hit", "provider", c.next.Name())
		return out, nil
	}

	out, err := c.next.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, out)
	return out, nil
}

// Close releases the wrapped summarizer when it holds resources.
func (c *Cached) Close() error {
	if cl, ok := c.next.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// Len returns the number of cached summaries.
func (c *Cached) Len() int { return c.cache.Len() }

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.next.Name() + ":" + hex.EncodeToString(sum[:])
}
