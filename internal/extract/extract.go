// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls raw text out of the document formats texttrove
// ingests: plain text, Markdown and reStructuredText are read as text, PDFs
// go through a pluggable PDFReader.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrUnsupportedType is returned for extensions outside SupportedExtensions.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrRead wraps failures to read or decode a supported file.
	ErrRead = errors.New("read error")

	// ErrNoPDFSupport is returned for PDFs when no PDFReader is configured.
	ErrNoPDFSupport = errors.New("PDF support not available")
)

// SupportedExtensions lists the lower-case extensions Extract accepts.
var SupportedExtensions = []string{".txt", ".pdf", ".md", ".rst"}

// IsSupported reports whether name has a supported extension.
func IsSupported(name string) bool {
	return slices.Contains(SupportedExtensions, Ext(name))
}

// Ext returns the lower-case extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Extractor dispatches on file extension. The zero value handles the text
// family and reports ErrNoPDFSupport for PDFs.
type Extractor struct {
	pdf PDFReader
}

// New returns an Extractor that uses pdf for PDF files. A nil pdf means
// PDF extraction is unavailable.
func New(pdf PDFReader) *Extractor {
	return &Extractor{pdf: pdf}
}

// PDFEnabled reports whether a PDF capability is configured.
func (e *Extractor) PDFEnabled() bool {
	return e.pdf != nil
}

// Extract reads the file at path and returns its text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := Ext(path)
	if !IsSupported(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if ext == ".pdf" && e.pdf == nil {
		return "", ErrNoPDFSupport
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return e.ExtractBytes(ctx, filepath.Base(path), data)
}

// ExtractBytes extracts text from data, using name only to pick the format.
// The web upload handler calls it with the uploaded file's name.
func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) (string, error) {
	switch ext := Ext(name); ext {
	case ".txt", ".md", ".rst":
		return decodeText(data), nil
	case ".pdf":
		if e.pdf == nil {
			return "", ErrNoPDFSupport
		}
		pages, err := e.pdf.Pages(ctx, data)
		if err != nil {
			if errors.Is(err, ErrRead) {
				return "", err
			}
			return "", fmt.Errorf("%w: %s: %v", ErrRead, name, err)
		}
		return joinPages(pages), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// decodeText interprets data as UTF-8, dropping byte sequences that do not
// decode.
func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// joinPages concatenates page texts with a newline, leaving out pages that
// are blank.
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
