// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads config.yaml, writing a default file on first run.
// Values can be overridden with TEXTTROVE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/texttrove/pkg/types"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "config.yaml"

// EnvPrefix is the prefix for environment overrides (TEXTTROVE_KB_NAME, ...).
const EnvPrefix = "TEXTTROVE"

// Default returns the configuration written to a fresh config.yaml.
func Default() types.Config {
	return types.Config{
		AIProvider:          "groq",
		GroqAPIKey:          "",
		GroqModel:           "llama3-8b-8192",
		GeminiModel:         "gemini-2.0-flash",
		MindsDBURL:          "http://127.0.0.1:47334",
		KBName:              "texttrove_kb",
		KBBackend:           types.BackendMindsDB,
		DataDir:             "data",
		OllamaURL:           "http://localhost:11434",
		OllamaModel:         "llama3",
		EmbeddingModel:      "nomic-embed-text",
		EmbeddingProvider:   "ollama",
		HuggingFaceAPIToken: "",
		PDFBackend:          types.PDFNative,
		RequestTimeout:      60 * time.Second,
	}
}

// EnsureFile writes the default configuration to path unless a file is
// already there. It reports whether a new file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking config file %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(fileValues(Default()))
	if err != nil {
		return false, fmt.Errorf("marshaling default config: %w", err)
	}
	// The file holds API keys.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("writing config file %s: %w", path, err)
	}
	return true, nil
}

// Load bootstraps path if needed and reads it, applying environment
// overrides. Missing keys fall back to Default().
func Load(path string) (types.Config, bool, error) {
	if path == "" {
		path = DefaultPath
	}

	created, err := EnsureFile(path)
	if err != nil {
		return types.Config{}, false, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for k, val := range fileValues(Default()) {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		return types.Config{}, created, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, created, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	return cfg, created, nil
}

// ApplySecrets fills empty API key fields from a secrets map keyed by file
// name (see internal/secrets). Values already in the config win.
func ApplySecrets(cfg *types.Config, secrets map[string]string) {
	fill := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		if v, ok := secrets[key]; ok {
			*dst = v
		}
	}
	fill(&cfg.GroqAPIKey, "groq-api-key")
	fill(&cfg.GeminiAPIKey, "gemini-api-key")
	fill(&cfg.HuggingFaceAPIToken, "huggingface-api-token")
}

// fileValues flattens cfg into the key/value layout of config.yaml.
func fileValues(cfg types.Config) map[string]any {
	return map[string]any{
		"ai_provider":           cfg.AIProvider,
		"groq_api_key":          cfg.GroqAPIKey,
		"groq_model":            cfg.GroqModel,
		"gemini_api_key":        cfg.GeminiAPIKey,
		"gemini_model":          cfg.GeminiModel,
		"mindsdb_url":           cfg.MindsDBURL,
		"kb_name":               cfg.KBName,
		"kb_backend":            string(cfg.KBBackend),
		"data_dir":              cfg.DataDir,
		"ollama_url":            cfg.OllamaURL,
		"ollama_model":          cfg.OllamaModel,
		"embedding_model":       cfg.EmbeddingModel,
		"embedding_provider":    cfg.EmbeddingProvider,
		"huggingface_api_token": cfg.HuggingFaceAPIToken,
		"pdf_backend":           string(cfg.PDFBackend),
		"request_timeout":       cfg.RequestTimeout.String(),
	}
}
