// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout, stderr)
	}
	return nil
}

func TestNewPdftotextMissingBinary(t *testing.T) {
	_, err := newPdftotext(&mockExecutor{})
	assert.Error(t, err)
}

func TestPdftotextPages(t *testing.T) {
	var gotStdin string
	m := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout, _ io.Writer) error {
			assert.Equal(t, "/usr/bin/pdftotext", name)
			assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-", "-"}, args)
			b, _ := io.ReadAll(stdin)
			gotStdin = string(b)
			io.WriteString(stdout, "A\f\fB\f")
			return nil
		},
	}
	p, err := newPdftotext(m)
	require.NoError(t, err)

	pages, err := p.Pages(context.Background(), []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "", "B"}, pages)
	assert.Equal(t, "%PDF-1.7", gotStdin)

	// Wired through the extractor, blank pages disappear.
	text, err := New(p).ExtractBytes(context.Background(), "doc.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
}

func TestPdftotextFailure(t *testing.T) {
	m := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		runPipedFunc: func(_ string, _ []string, _ io.Reader, _, stderr io.Writer) error {
			io.WriteString(stderr, "Syntax Error: Couldn't find trailer dictionary\n")
			return errors.New("exit status 1")
		},
	}
	p, err := newPdftotext(m)
	require.NoError(t, err)

	_, err = p.Pages(context.Background(), []byte("junk"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.Contains(t, err.Error(), "Couldn't find trailer dictionary")
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"one\f", []string{"one"}},
		{"one\ftwo\f", []string{"one", "two"}},
		{"no trailing feed", []string{"no trailing feed"}},
	}
	for _, tt := range tests {
		got := splitPages(tt.in)
		assert.Equal(t, len(tt.want), len(got), "%q", tt.in)
		for i := range tt.want {
			assert.Equal(t, tt.want[i], got[i])
		}
	}
}
