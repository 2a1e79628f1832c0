// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/texttrove/internal/httputil"
	"github.com/pdiddy/texttrove/pkg/types"
)

const (
	mindsdbQueryPath  = "/api/sql/query"
	mindsdbStatusPath = "/api/status"
	mindsdbProject    = "mindsdb"
)

// MindsDB is a Server backed by the MindsDB HTTP SQL API.
type MindsDB struct {
	baseURL string
	client  *http.Client
}

// NewMindsDB returns a client for the MindsDB instance at baseURL.
func NewMindsDB(baseURL string, client *http.Client) *MindsDB {
	if client == nil {
		client = http.DefaultClient
	}
	return &MindsDB{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// sqlRequest is the body of POST /api/sql/query.
type sqlRequest struct {
	Query   string            `json:"query"`
	Context map[string]string `json:"context,omitempty"`
}

// sqlResponse is the reply of POST /api/sql/query. Type is "table", "ok"
// or "error".
type sqlResponse struct {
	Type         string   `json:"type"`
	ColumnNames  []string `json:"column_names"`
	Data         [][]any  `json:"data"`
	ErrorCode    int      `json:"error_code"`
	ErrorMessage string   `json:"error_message"`
}

// rows returns the table as column-name keyed maps.
func (r *sqlResponse) rows() []map[string]any {
	out := make([]map[string]any, 0, len(r.Data))
	for _, row := range r.Data {
		m := make(map[string]any, len(r.ColumnNames))
		for i, col := range r.ColumnNames {
			if i < len(row) {
				m[strings.ToLower(col)] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// query runs one SQL statement and returns the decoded reply. Service-side
// SQL errors come back as Go errors carrying the MindsDB message.
func (m *MindsDB) query(ctx context.Context, sql string) (*sqlResponse, error) {
	body, err := json.Marshal(sqlRequest{
		Query:   sql,
		Context: map[string]string{"db": mindsdbProject},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+mindsdbQueryPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, m.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("mindsdb error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var sr sqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if sr.Type == "error" {
		return nil, fmt.Errorf("mindsdb: %s", sr.ErrorMessage)
	}
	return &sr, nil
}

// Ping implements Server.
func (m *MindsDB) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+mindsdbStatusPath, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mindsdb status returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Get implements Server.
func (m *MindsDB) Get(ctx context.Context, name string) (KnowledgeBase, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	sr, err := m.query(ctx, fmt.Sprintf(
		"SELECT name FROM information_schema.knowledge_bases WHERE name = %s",
		quoteString(name)))
	if err != nil {
		return nil, fmt.Errorf("looking up knowledge base %s: %w", name, err)
	}
	if len(sr.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &mindsdbKB{server: m, name: name}, nil
}

// Create implements Server.
func (m *MindsDB) Create(ctx context.Context, name string, embedding types.EmbeddingModel) (KnowledgeBase, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	params, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding model: %w", err)
	}
	sql := fmt.Sprintf("CREATE KNOWLEDGE_BASE %s USING embedding_model = %s",
		quoteIdent(name), params)
	if _, err := m.query(ctx, sql); err != nil {
		return nil, err
	}
	return &mindsdbKB{server: m, name: name}, nil
}

// List implements Server.
func (m *MindsDB) List(ctx context.Context) ([]string, error) {
	sr, err := m.query(ctx, "SELECT name FROM information_schema.knowledge_bases")
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}
	var names []string
	for _, row := range sr.rows() {
		if n, ok := row["name"].(string); ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// Close implements Server. The HTTP client holds no per-server state.
func (m *MindsDB) Close() error { return nil }

// mindsdbKB is a KnowledgeBase on a MindsDB server.
type mindsdbKB struct {
	server *MindsDB
	name   string
}

func (k *mindsdbKB) Name() string { return k.name }

// Insert implements KnowledgeBase with a single multi-row INSERT.
func (k *mindsdbKB) Insert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (content, metadata) VALUES ", quoteIdent(k.name))
	for i, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", r.Metadata.Source, err)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%s, %s)", quoteString(r.Content), quoteString(string(meta)))
	}

	if _, err := k.server.query(ctx, b.String()); err != nil {
		return fmt.Errorf("inserting into %s: %w", k.name, err)
	}
	return nil
}

// Search implements KnowledgeBase.
func (k *mindsdbKB) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE content = %s LIMIT %d",
		quoteIdent(k.name), quoteString(query), limit)

	sr, err := k.server.query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", k.name, err)
	}

	rows := sr.rows()
	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, resultFromRow(row))
	}
	return results, nil
}

// resultFromRow maps a knowledge-base row onto a SearchResult. Newer
// MindsDB versions return chunk_content and relevance, older ones content
// and distance.
func resultFromRow(row map[string]any) types.SearchResult {
	var r types.SearchResult

	for _, col := range []string{"chunk_content", "content"} {
		if s, ok := row[col].(string); ok && s != "" {
			r.Content = s
			break
		}
	}

	switch meta := row["metadata"].(type) {
	case string:
		json.Unmarshal([]byte(meta), &r.Metadata)
	case map[string]any:
		if b, err := json.Marshal(meta); err == nil {
			json.Unmarshal(b, &r.Metadata)
		}
	}

	if v, ok := row["relevance"].(float64); ok {
		r.Relevance = v
	} else if v, ok := row["distance"].(float64); ok {
		r.Relevance = 1 - v
	}
	return r
}
