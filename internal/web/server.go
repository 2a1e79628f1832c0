// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the browser interface and a small JSON API over the
// same knowledge base the CLI uses.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/texttrove/internal/extract"
	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/internal/summarize"
	"github.com/pdiddy/texttrove/pkg/types"
)

const (
	// DefaultAddr is the listen address of `texttrove serve`.
	DefaultAddr = ":5000"

	// MaxUploadBytes bounds the size of an uploaded file.
	MaxUploadBytes = 10 << 20

	// MaxQueryLength bounds search terms in characters.
	MaxQueryLength = 1000

	searchLimit    = 5
	snippetChars   = 300
	shutdownWindow = 10 * time.Second
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options configures a Server.
type Options struct {
	Config types.Config

	// KB is the connected knowledge-base service. Nil means the service
	// was unreachable at startup; pages still render and report it.
	KB kb.Server

	Extractor *extract.Extractor

	// Summarizer backs /v1/summarize. Nil disables it.
	Summarizer summarize.Summarizer
}

// Server holds the state for the web interface.
type Server struct {
	cfg        types.Config
	kb         kb.Server
	extractor  *extract.Extractor
	summarizer summarize.Summarizer
	policy     *bluemonday.Policy
	router     *gin.Engine
	now        func() time.Time
}

// NewServer creates a Server with its routes registered.
func NewServer(opts Options) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"score": formatRelevance,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	ext := opts.Extractor
	if ext == nil {
		ext = extract.New(nil)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = MaxUploadBytes
	r.SetHTMLTemplate(tmpl)

	s := &Server{
		cfg:        opts.Config,
		kb:         opts.KB,
		extractor:  ext,
		summarizer: opts.Summarizer,
		policy:     bluemonday.StrictPolicy(),
		router:     r,
		now:        time.Now,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/", s.handleSearchForm)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/status", s.handleStatus)
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/v1/search", s.handleSearchAPI)
	s.router.POST("/v1/summarize", s.handleSummarizeAPI)
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web interface listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request at debug level through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
