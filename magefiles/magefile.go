//go:build mage

// Package main contains Mage build targets for texttrove developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	binName    = "texttrove"
	cmdPkg     = "./cmd/texttrove"
	sampleDir  = "sample_docs"
	versionVar = "main.version"

	// buildTags enables FTS5 in mattn/go-sqlite3; the local backend needs it.
	buildTags = "sqlite_fts5"
)

// sampleDocs seeds sample_docs/ so that `texttrove ingest sample_docs` has
// something to index on a fresh checkout.
var sampleDocs = map[string]string{
	"project_management.txt": `Project management is the practice of leading a team to reach its goals
within a given scope, time and budget. Agile methods split work into short
iterations and review progress with stakeholders after each one.
`,
	"artificial_intelligence.md": `# Artificial Intelligence

Artificial intelligence covers systems that learn from data. Large language
models summarize documents, answer questions and draft text.
`,
	"cloud_computing.rst": `Cloud Computing
===============

Cloud computing rents compute, storage and networking on demand. Teams trade
capital expense for operating expense and scale with load.
`,
	"cybersecurity.txt": `Cybersecurity protects systems and data from attack. Least privilege,
patching and monitoring reduce the chance that one compromised account
spreads across a network.
`,
}

// Build compiles the CLI binary into bin/, stamping the version from
// TEXTTROVE_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("TEXTTROVE_VERSION")
	if version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := fmt.Sprintf("-X %s=%s", versionVar, version)
	if err := sh.RunV("go", "build", "-tags", buildTags, "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests. CGO is required by the SQLite driver.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "-tags", buildTags, "./...")
}

// Check runs vet and the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "-tags", buildTags, "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Init writes the sample documents into sample_docs/. Existing files are
// left alone.
func Init() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	for name, content := range sampleDocs {
		path := filepath.Join(sampleDir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Println("   exists ", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("   wrote  ", path)
	}
	fmt.Printf("Sample documents ready: run `texttrove ingest %s`.\n", sampleDir)
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	var prod, tests, words int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".go":
			n, err := countLines(path)
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, "_test.go") {
				tests += n
			} else {
				prod += n
			}
		case ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			words += len(bytes.Fields(data))
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	fmt.Printf("Words (documentation):           %d\n", words)
	return nil
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
