package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRetrieverDefaults(t *testing.T) {
	t.Setenv("RETRIEVER_MAX_FEATURES", "")
	t.Setenv("RETRIEVER_TOP_K", "")
	t.Setenv("GEN_MAX_NEW_TOKENS", "")
	t.Setenv("GEN_TEMPERATURE", "")

	cfg := Load()
	if cfg.RetrieverMaxFeatures != 1000 {
		t.Fatalf("expected default max features 1000, got %d", cfg.RetrieverMaxFeatures)
	}
	if cfg.RetrieverTopK != 3 {
		t.Fatalf("expected default top-k 3, got %d", cfg.RetrieverTopK)
	}
	if cfg.GenMaxNewTokens != 150 {
		t.Fatalf("expected default max new tokens 150, got %d", cfg.GenMaxNewTokens)
	}
	if cfg.GenTemperature != 0.7 {
		t.Fatalf("expected default temperature 0.7, got %v", cfg.GenTemperature)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVER_MAX_FEATURES", "500")
	t.Setenv("RETRIEVER_TOP_K", "5")
	t.Setenv("GEN_TEMPERATURE", "0.2")
	t.Setenv("OLLAMA_MODEL", "mistral")

	cfg := Load()
	if cfg.RetrieverMaxFeatures != 500 {
		t.Fatalf("expected max features 500, got %d", cfg.RetrieverMaxFeatures)
	}
	if cfg.RetrieverTopK != 5 {
		t.Fatalf("expected top-k 5, got %d", cfg.RetrieverTopK)
	}
	if cfg.GenTemperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", cfg.GenTemperature)
	}
	if cfg.OllamaModel != "mistral" {
		t.Fatalf("expected model override, got %q", cfg.OllamaModel)
	}
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("RETRIEVER_TOP_K", "many")
	cfg := Load()
	if cfg.RetrieverTopK != 3 {
		t.Fatalf("unparsable int must fall back to default, got %d", cfg.RetrieverTopK)
	}
}

func TestLoadSourcesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := "urls:\n  - https://example.org/mat\n  - https://example.org/standards\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(sources.URLs) != 2 || sources.URLs[0] != "https://example.org/mat" {
		t.Fatalf("unexpected sources %v", sources.URLs)
	}
}

func TestLoadSourcesDefaultsWithoutPath(t *testing.T) {
	sources, err := LoadSources("")
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(sources.URLs) == 0 {
		t.Fatalf("expected built-in sources")
	}
}

func TestLoadSourcesRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte("urls: []\n"), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	if _, err := LoadSources(path); err == nil {
		t.Fatalf("expected error for empty url list")
	}
}
