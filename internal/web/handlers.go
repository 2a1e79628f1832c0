// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/texttrove/internal/ingest"
	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/internal/summarize"
	"github.com/pdiddy/texttrove/pkg/types"
)

// UploadedVia marks records submitted through the upload form.
const UploadedVia = "web_interface"

const maxAPILimit = 50

// resultView is one search hit as shown on the page.
type resultView struct {
	Source    string
	Category  string
	Snippet   string
	Relevance float64
}

// statusView is the body of /status.
type statusView struct {
	Connected      bool     `json:"connected"`
	Backend        string   `json:"backend"`
	KBName         string   `json:"kb_name"`
	KnowledgeBases []string `json:"knowledge_bases"`
	Error          string   `json:"error,omitempty"`
}

// pageData feeds the HTML templates.
type pageData struct {
	KBName     string
	PDFEnabled bool
	Query      string
	Category   string
	Results    []resultView
	Summary    string
	Message    string
	Warning    string
	Error      string
	Status     *statusView
}

func (s *Server) page() pageData {
	return pageData{KBName: s.cfg.KBName, PDFEnabled: s.extractor.PDFEnabled()}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// handleError renders err as JSON for API clients and as the index page
// with an error banner for browsers.
func (s *Server) handleError(c *gin.Context, err error, data pageData) {
	appErr := MapError(err)
	logError(c.Request.URL.Path, appErr)

	if strings.HasPrefix(c.Request.URL.Path, "/v1/") || wantsJSON(c) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	data.Error = appErr.Message
	c.HTML(appErr.Code, "index.html", data)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.page())
}

// handleSearchForm runs a search from the index page form.
func (s *Server) handleSearchForm(c *gin.Context) {
	data := s.page()
	data.Query = strings.TrimSpace(c.PostForm("search"))
	data.Category = strings.TrimSpace(c.PostForm("category"))

	if data.Query == "" {
		data.Warning = "Please enter a search query"
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	results, err := s.search(c.Request.Context(), data.Query, data.Category, searchLimit)
	if err != nil {
		s.handleError(c, err, data)
		return
	}

	data.Results = s.views(results)
	data.Summary = HeuristicSummary(data.Query, results)
	data.Message = fmt.Sprintf("Found %d results for '%s'", len(results), data.Query)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"query": data.Query, "results": results, "summary": data.Summary})
		return
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// handleUpload extracts an uploaded file and inserts it into the
// configured knowledge base, creating the knowledge base if needed.
func (s *Server) handleUpload(c *gin.Context) {
	data := s.page()
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.handleError(c, err, data)
			return
		}
		s.handleError(c, NewAppError(http.StatusBadRequest, "No file selected", err), data)
		return
	}
	if fh.Size > MaxUploadBytes {
		s.handleError(c, &http.MaxBytesError{Limit: MaxUploadBytes}, data)
		return
	}

	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		s.handleError(c, NewAppError(http.StatusBadRequest, "No file selected", nil), data)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.handleError(c, err, data)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		s.handleError(c, err, data)
		return
	}

	text, err := s.extractor.ExtractBytes(ctx, name, raw)
	if err != nil {
		s.handleError(c, err, data)
		return
	}
	if strings.TrimSpace(text) == "" {
		s.handleError(c, NewAppError(http.StatusUnprocessableEntity, "File appears to be empty or unreadable", nil), data)
		return
	}

	if s.kb == nil {
		s.handleError(c, errNotConnected, data)
		return
	}
	target, created, err := kb.GetOrCreate(ctx, s.kb, s.cfg.KBName, types.EmbeddingModel{
		ModelName: s.cfg.EmbeddingModel,
		Provider:  s.cfg.EmbeddingProvider,
	})
	if err != nil {
		s.handleError(c, err, data)
		return
	}

	category := strings.TrimSpace(c.PostForm("category"))
	if category == "" {
		category = "general"
	}
	rec := ingest.NewRecord(name, text, category, s.now())
	rec.Metadata.UploadedVia = UploadedVia

	if err := target.Insert(ctx, []types.Record{rec}); err != nil {
		s.handleError(c, err, data)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"source": name, "category": category, "kb": target.Name(), "kb_created": created})
		return
	}
	data.Message = "Successfully uploaded and processed: " + name
	c.HTML(http.StatusOK, "index.html", data)
}

// handleStatus reports the knowledge-base connection.
func (s *Server) handleStatus(c *gin.Context) {
	st := s.status(c.Request.Context())

	if wantsJSON(c) {
		c.JSON(http.StatusOK, st)
		return
	}
	data := s.page()
	data.Status = &st
	c.HTML(http.StatusOK, "status.html", data)
}

func (s *Server) status(ctx context.Context) statusView {
	st := statusView{
		Connected:      s.kb != nil,
		Backend:        kb.Describe(s.cfg),
		KBName:         s.cfg.KBName,
		KnowledgeBases: []string{},
	}
	if s.kb == nil {
		return st
	}
	if err := s.kb.Ping(ctx); err != nil {
		st.Connected = false
		st.Error = "Knowledge base service is not responding"
		return st
	}
	names, err := s.kb.List(ctx)
	if err != nil {
		st.Error = "Error loading knowledge bases"
		return st
	}
	if names != nil {
		st.KnowledgeBases = names
	}
	return st
}

type searchRequest struct {
	Query    string `json:"query" binding:"required"`
	Limit    int    `json:"limit"`
	Category string `json:"category"`
}

// handleSearchAPI is the JSON form of the index search.
func (s *Server) handleSearchAPI(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, NewAppError(http.StatusBadRequest, "Invalid request body", err), pageData{})
		return
	}

	results, err := s.search(c.Request.Context(), req.Query, req.Category, clampLimit(req.Limit, searchLimit))
	if err != nil {
		s.handleError(c, err, pageData{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"summary": HeuristicSummary(req.Query, results),
	})
}

type summarizeRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// handleSummarizeAPI searches and sends the combined snippets to the
// configured summarizer.
func (s *Server) handleSummarizeAPI(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, NewAppError(http.StatusBadRequest, "Invalid request body", err), pageData{})
		return
	}
	if s.summarizer == nil {
		s.handleError(c, errNoSummarizer, pageData{})
		return
	}

	ctx := c.Request.Context()
	results, err := s.search(ctx, req.Query, "", clampLimit(req.Limit, summarize.CombineCount))
	if err != nil {
		s.handleError(c, err, pageData{})
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusOK, gin.H{"query": req.Query, "summary": "", "message": "No results to summarize.", "sources": []string{}})
		return
	}

	summary, err := s.summarizer.Summarize(ctx, summarize.Combine(results))
	if err != nil {
		s.handleError(c, NewAppError(http.StatusBadGateway, "Summarizer request failed", err), pageData{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"provider": s.summarizer.Name(),
		"summary":  summary,
		"sources":  sources(results, summarize.CombineCount),
	})
}

// search validates the query, runs it against the configured knowledge
// base and applies the optional category filter.
func (s *Server) search(ctx context.Context, query, category string, limit int) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewAppError(http.StatusBadRequest, "Please enter a search query", nil)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, NewAppError(http.StatusBadRequest,
			fmt.Sprintf("Search query too long (limit %d characters)", MaxQueryLength), nil)
	}
	if s.kb == nil {
		return nil, errNotConnected
	}

	target, err := s.kb.Get(ctx, s.cfg.KBName)
	if errors.Is(err, kb.ErrNotFound) {
		return nil, s.notFound(ctx, err)
	}
	if err != nil {
		return nil, err
	}

	results, err := target.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return results, nil
	}
	filtered := results[:0]
	for _, r := range results {
		if strings.EqualFold(r.Metadata.Category, category) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// notFound builds the 404 for a missing knowledge base, naming close
// matches when there are any.
func (s *Server) notFound(ctx context.Context, cause error) error {
	msg := fmt.Sprintf("Knowledge base '%s' not found. Upload a file to create it", s.cfg.KBName)
	if names, err := s.kb.List(ctx); err == nil {
		if matches := kb.Suggest(s.cfg.KBName, names); len(matches) > 0 {
			msg = fmt.Sprintf("Knowledge base '%s' not found. Did you mean: %s?", s.cfg.KBName, strings.Join(matches, ", "))
		}
	}
	return NewAppError(http.StatusNotFound, msg, cause)
}

func (s *Server) views(results []types.SearchResult) []resultView {
	out := make([]resultView, len(results))
	for i, r := range results {
		out[i] = resultView{
			Source:    sourceName(r),
			Category:  r.Metadata.Category,
			Snippet:   s.snippet(r.Content),
			Relevance: r.Relevance,
		}
	}
	return out
}

// snippet strips markup from content and cuts it for display.
func (s *Server) snippet(content string) string {
	plain := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(content)))
	cut := summarize.Truncate(plain, snippetChars)
	if len(cut) < len(plain) {
		cut += "..."
	}
	return cut
}

// HeuristicSummary describes a result set without calling an LLM.
func HeuristicSummary(query string, results []types.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	top := results
	if len(top) > summarize.CombineCount {
		top = top[:summarize.CombineCount]
	}
	hasContent := false
	for _, r := range top {
		if r.Content != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return ""
	}
	return fmt.Sprintf("Found %d results related to '%s'. Key topics include information from %s",
		len(results), query, strings.Join(sources(results, summarize.CombineCount), ", "))
}

func sources(results []types.SearchResult, n int) []string {
	if len(results) > n {
		results = results[:n]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = sourceName(r)
	}
	return out
}

func sourceName(r types.SearchResult) string {
	if r.Metadata.Source == "" {
		return "unknown source"
	}
	return r.Metadata.Source
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxAPILimit {
		return maxAPILimit
	}
	return limit
}

func formatRelevance(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
