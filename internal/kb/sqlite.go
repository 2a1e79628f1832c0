// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/texttrove/pkg/types"
)

const sqliteFile = "texttrove.db"

// ErrNoFTS5 is returned by OpenSQLite when the SQLite driver was compiled
// without the FTS5 extension.
var ErrNoFTS5 = errors.New("sqlite built without FTS5: rebuild with -tags sqlite_fts5 (mage build / mage test pass it)")

// SQLite is a Server backed by a local SQLite database with an FTS5 index.
// Relevance is the negated BM25 rank, so higher is better.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_bases (
			name TEXT PRIMARY KEY,
			embedding_model TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kb TEXT NOT NULL REFERENCES knowledge_bases(name) ON DELETE CASCADE,
			content TEXT NOT NULL,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_kb ON records(kb)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(content, content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return ftsError(err)
		}
	}
	return nil
}

// ftsError names the missing build tag when the driver lacks FTS5.
func ftsError(err error) error {
	if strings.Contains(err.Error(), "no such module: fts5") {
		return fmt.Errorf("%w (%v)", ErrNoFTS5, err)
	}
	return fmt.Errorf("creating FTS infrastructure: %w", err)
}

// Ping implements Server.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get implements Server.
func (s *SQLite) Get(ctx context.Context, name string) (KnowledgeBase, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var found string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM knowledge_bases WHERE name = ?`, name,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up knowledge base %s: %w", name, err)
	}
	return &sqliteKB{db: s.db, name: found}, nil
}

// Create implements Server. The embedding model is recorded but unused;
// the local index is lexical.
func (s *SQLite) Create(ctx context.Context, name string, embedding types.EmbeddingModel) (KnowledgeBase, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	emb, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding model: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_bases (name, embedding_model, created_at) VALUES (?, ?, ?)`,
		name, string(emb), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("creating knowledge base %s: %w", name, err)
	}
	return &sqliteKB{db: s.db, name: name}, nil
}

// List implements Server.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM knowledge_bases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type sqliteKB struct {
	db   *sql.DB
	name string
}

func (k *sqliteKB) Name() string { return k.name }

// Insert implements KnowledgeBase. All records land in one transaction.
func (k *sqliteKB) Insert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, kb, content, metadata) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", r.Metadata.Source, err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), k.name, r.Content, string(meta)); err != nil {
			return fmt.Errorf("inserting %s: %w", r.Metadata.Source, err)
		}
	}
	return tx.Commit()
}

// Search implements KnowledgeBase. Any query term may match; results are
// ordered by BM25 rank.
func (k *sqliteKB) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	match := ftsQuery(query)
	if match == "" {
		return []types.SearchResult{}, nil
	}

	rows, err := k.db.QueryContext(ctx,
		`SELECT r.content, r.metadata, records_fts.rank
		FROM records_fts
		JOIN records r ON r.rowid = records_fts.rowid
		WHERE records_fts MATCH ? AND r.kb = ?
		ORDER BY records_fts.rank
		LIMIT ?`, match, k.name, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", k.name, err)
	}
	defer rows.Close()

	results := []types.SearchResult{}
	for rows.Next() {
		var (
			r        types.SearchResult
			metaJSON sql.NullString
			rank     float64
		)
		if err := rows.Scan(&r.Content, &metaJSON, &rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if metaJSON.Valid {
			json.Unmarshal([]byte(metaJSON.String), &r.Metadata)
		}
		r.Relevance = -rank
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that ORs every word as
// a quoted string, so user punctuation never reaches the FTS5 parser.
func ftsQuery(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !(r == '_' || r == '-' || r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-'")
		if w == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " OR ")
}
