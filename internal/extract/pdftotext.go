// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Pdftotext extracts page text with poppler's pdftotext binary, which
// separates pages with a form feed.
type Pdftotext struct {
	bin  string
	exec executor
}

// NewPdftotext locates pdftotext on PATH. It returns an error when the
// binary is missing.
func NewPdftotext() (*Pdftotext, error) {
	return newPdftotext(osExecutor{})
}

func newPdftotext(exec executor) (*Pdftotext, error) {
	bin, err := exec.LookPath(binPdftotext)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &Pdftotext{bin: bin, exec: exec}, nil
}

// Pages implements PDFReader.
func (p *Pdftotext) Pages(ctx context.Context, data []byte) ([]string, error) {
	var out, errOut bytes.Buffer
	args := []string{"-layout", "-enc", "UTF-8", "-", "-"}
	if err := p.exec.RunPiped(ctx, p.bin, args, bytes.NewReader(data), &out, &errOut); err != nil {
		msg := strings.TrimSpace(errOut.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrRead, binPdftotext, msg)
	}
	return splitPages(out.String()), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so the trailing empty element is dropped.
func splitPages(s string) []string {
	pages := strings.Split(s, "\f")
	if n := len(pages); n > 0 && pages[n-1] == "" {
		pages = pages[:n-1]
	}
	return pages
}
