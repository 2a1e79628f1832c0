// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kb talks to the knowledge-base service that stores and searches
// ingested documents. The MindsDB backend forwards everything to a remote
// MindsDB instance; the SQLite backend keeps a local full-text index for
// offline use.
package kb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/pdiddy/texttrove/pkg/types"
)

var (
	// ErrNotFound is returned by Server.Get for an unknown knowledge base.
	ErrNotFound = errors.New("knowledge base not found")

	// ErrInvalidName is returned for names that are not plain identifiers.
	ErrInvalidName = errors.New("invalid knowledge base name")
)

// KnowledgeBase is a named collection of documents on the service.
type KnowledgeBase interface {
	Name() string

	// Insert submits records to the collection.
	Insert(ctx context.Context, records []types.Record) error

	// Search returns up to limit results for a text query.
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// Server is a connection to a knowledge-base service.
type Server interface {
	// Ping checks that the service is reachable.
	Ping(ctx context.Context) error

	// Get returns the named knowledge base or ErrNotFound.
	Get(ctx context.Context, name string) (KnowledgeBase, error)

	// Create makes a new knowledge base using the given embedding model.
	Create(ctx context.Context, name string, embedding types.EmbeddingModel) (KnowledgeBase, error)

	// List returns the names of all knowledge bases.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// GetOrCreate returns the named knowledge base, creating it when it does not
// exist. The bool reports whether it was created.
func GetOrCreate(ctx context.Context, s Server, name string, embedding types.EmbeddingModel) (KnowledgeBase, bool, error) {
	kb, err := s.Get(ctx, name)
	if err == nil {
		return kb, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	kb, err = s.Create(ctx, name, embedding)
	if err != nil {
		return nil, false, fmt.Errorf("creating knowledge base %s: %w", name, err)
	}
	return kb, true, nil
}

// Open connects to the backend selected in cfg and pings it.
func Open(ctx context.Context, cfg types.Config, client *http.Client) (Server, error) {
	var (
		s   Server
		err error
	)
	switch cfg.KBBackend {
	case types.BackendMindsDB, "":
		s = NewMindsDB(cfg.MindsDBURL, client)
	case types.BackendSQLite:
		s, err = OpenSQLite(filepath.Join(cfg.DataDir, sqliteFile))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown kb_backend %q: use mindsdb or sqlite", cfg.KBBackend)
	}

	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to %s: %w", Describe(cfg), err)
	}
	return s, nil
}

// Describe names the configured backend for status output.
func Describe(cfg types.Config) string {
	if cfg.KBBackend == types.BackendSQLite {
		return "SQLite at " + filepath.Join(cfg.DataDir, sqliteFile)
	}
	return "MindsDB at " + cfg.MindsDBURL
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName checks that name can be used as a knowledge-base identifier.
func ValidateName(name string) error {
	if !identRe.MatchString(name) || len(name) > 64 {
		return fmt.Errorf("%w: %q (letters, digits and underscores only)", ErrInvalidName, name)
	}
	return nil
}
