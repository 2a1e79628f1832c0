// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/texttrove/internal/extract"
	"github.com/pdiddy/texttrove/internal/kb"
	"github.com/pdiddy/texttrove/internal/summarize"
)

var (
	errNotConnected = errors.New("knowledge base service not connected")
	errNoSummarizer = errors.New("summarizer not configured")
)

// AppError is an error with the HTTP status and the message shown to the
// client. Err holds the internal cause and is only logged.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// MapError converts err into an AppError with a client-safe message.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return NewAppError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large (limit %d MB)", maxErr.Limit>>20), err)
	case errors.Is(err, extract.ErrUnsupportedType):
		return NewAppError(http.StatusBadRequest,
			"Unsupported file type. Please upload "+strings.Join(extract.SupportedExtensions, ", ")+" files", err)
	case errors.Is(err, extract.ErrNoPDFSupport):
		return NewAppError(http.StatusBadRequest, "PDF support is not available on this server", err)
	case errors.Is(err, extract.ErrRead):
		return NewAppError(http.StatusUnprocessableEntity, "File appears to be empty or unreadable", err)
	case errors.Is(err, kb.ErrInvalidName):
		return NewAppError(http.StatusBadRequest, "Invalid knowledge base name", err)
	case errors.Is(err, kb.ErrNotFound):
		return NewAppError(http.StatusNotFound, "Knowledge base not found", err)
	case errors.Is(err, errNotConnected):
		return NewAppError(http.StatusServiceUnavailable, "Knowledge base service is not available", err)
	case errors.Is(err, errNoSummarizer), errors.Is(err, summarize.ErrMissingAPIKey):
		return NewAppError(http.StatusServiceUnavailable, "Summarizer is not configured", err)
	}
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

// logError records the internal cause of server-side failures.
func logError(path string, appErr *AppError) {
	if appErr.Code >= http.StatusInternalServerError {
		slog.Error("request failed", "path", path, "status", appErr.Code, "error", appErr.Err)
		return
	}
	slog.Debug("request rejected", "path", path, "status", appErr.Code, "error", appErr.Err)
}
