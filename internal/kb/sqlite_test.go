// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/texttrove/pkg/types"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", sqliteFile))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []types.Record {
	meta := func(src string) types.Metadata {
		return types.Metadata{Source: src, Category: "general", DateAdded: "2026-03-01", FileType: "txt"}
	}
	return []types.Record{
		{Content: "Efficient attention reduces computation for long sequences", Metadata: meta("attention.txt")},
		{Content: "Softmax attention computes weighted averages over all input positions", Metadata: meta("softmax.txt")},
		{Content: "The GLUE benchmark measures language understanding", Metadata: meta("glue.txt")},
	}
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	s := testSQLite(t)

	for _, table := range []string{"knowledge_bases", "records", "records_fts"} {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestOpenSQLiteReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), sqliteFile)

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Create(context.Background(), "docs", types.EmbeddingModel{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	names, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, names)
}

func TestSQLiteGetOrCreate(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()
	emb := types.EmbeddingModel{ModelName: "nomic-embed-text", Provider: "ollama"}

	_, err := s.Get(ctx, "docs")
	assert.ErrorIs(t, err, ErrNotFound)

	kb, created, err := GetOrCreate(ctx, s, "docs", emb)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "docs", kb.Name())

	kb, created, err = GetOrCreate(ctx, s, "docs", emb)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "docs", kb.Name())
}

func TestSQLiteInsertAndSearch(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	kb, err := s.Create(ctx, "docs", types.EmbeddingModel{})
	require.NoError(t, err)
	require.NoError(t, kb.Insert(ctx, sampleRecords()))

	tests := []struct {
		name    string
		query   string
		limit   int
		wantMin int
		wantMax int
		contain string
	}{
		{"matching term", "attention", 5, 2, 2, "attention"},
		{"any term matches", "GLUE softmax", 5, 2, 2, ""},
		{"limit applies", "attention", 1, 1, 1, "attention"},
		{"no match", "quantum entanglement xyzzy", 5, 0, 0, ""},
		{"punctuation only", `"*():`, 5, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := kb.Search(ctx, tt.query, tt.limit)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(results), tt.wantMin)
			assert.LessOrEqual(t, len(results), tt.wantMax)
			for _, r := range results {
				if tt.contain != "" {
					assert.Contains(t, strings.ToLower(r.Content), tt.contain)
				}
				assert.Equal(t, "general", r.Metadata.Category)
				assert.NotEmpty(t, r.Metadata.Source)
			}
		})
	}
}

func TestSQLiteSearchScopedToKnowledgeBase(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "alpha", types.EmbeddingModel{})
	require.NoError(t, err)
	b, err := s.Create(ctx, "beta", types.EmbeddingModel{})
	require.NoError(t, err)
	require.NoError(t, a.Insert(ctx, sampleRecords()))

	results, err := b.Search(ctx, "attention", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteDuplicatesAreKept(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	kb, err := s.Create(ctx, "docs", types.EmbeddingModel{})
	require.NoError(t, err)
	recs := sampleRecords()[:1]
	require.NoError(t, kb.Insert(ctx, recs))
	require.NoError(t, kb.Insert(ctx, recs))

	results, err := kb.Search(ctx, "efficient", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFTSQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"attention", `"attention"`},
		{"GLUE benchmark", `"GLUE" OR "benchmark"`},
		{`what's "new"?`, `"what's" OR "new"`},
		{"  ", ""},
		{"self-attention", `"self-attention"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ftsQuery(tt.in), tt.in)
	}
}

func TestFTSErrorNamesBuildTag(t *testing.T) {
	err := ftsError(errors.New("no such module: fts5"))
	assert.ErrorIs(t, err, ErrNoFTS5)
	assert.Contains(t, err.Error(), "-tags sqlite_fts5")

	other := errors.New("disk I/O error")
	err = ftsError(other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrNoFTS5)
}
