// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/texttrove/pkg/types"
)

func init() {
	// Keep pdfcpu from writing a config file under the user's config dir.
	model.ConfigPath = "disable"
}

// PDFReader turns PDF bytes into per-page text. Implementations return one
// entry per page, in order, including blank pages.
type PDFReader interface {
	Pages(ctx context.Context, data []byte) ([]string, error)
}

// NewPDFReader returns the PDFReader for backend. It returns nil, nil for
// PDFNone, and nil with an error when the backend cannot run here; callers
// treat both as "no PDF capability".
func NewPDFReader(backend types.PDFBackend) (PDFReader, error) {
	switch backend {
	case types.PDFNative, "":
		return NativePDF{}, nil
	case types.PDFPdftotext:
		return NewPdftotext()
	case types.PDFNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown pdf_backend %q: use native, pdftotext, or none", backend)
	}
}

// NativePDF extracts page text in-process. pdfcpu checks the document
// structure and counts pages first so that corrupt files fail with a
// useful message before the text pass.
type NativePDF struct{}

// Pages implements PDFReader.
func (NativePDF) Pages(ctx context.Context, data []byte) (pages []string, err error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PDF: %v", ErrRead, err)
	}

	// The text parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: parsing PDF text: %v", ErrRead, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening PDF: %v", ErrRead, err)
	}
	if n := r.NumPage(); n != count {
		slog.Debug("pdf page count mismatch", "pdfcpu", count, "reader", n)
	}

	pages = make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrRead, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
