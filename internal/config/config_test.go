package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupHome points HOME at a fresh temp directory for the test
func setupHome(t *testing.T) string {
	t.Helper()

	tmpHome, err := os.MkdirTemp("", "moodjournal-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)

	t.Cleanup(func() {
		os.Setenv("HOME", origHome)
		os.RemoveAll(tmpHome)
	})

	return tmpHome
}

// TestInitCreatesRequiredFiles verifies that Init() creates all necessary
// configuration files and directories on a fresh setup.
func TestInitCreatesRequiredFiles(t *testing.T) {
	tmpHome := setupHome(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	configDir := filepath.Join(tmpHome, ".config", "moodjournal")
	for _, rel := range []string{
		"config.yaml",
		"system_prompt.md",
		"reflection_prompt.md",
		filepath.Join("companions", "companion.md"),
	} {
		if _, err := os.Stat(filepath.Join(configDir, rel)); os.IsNotExist(err) {
			t.Errorf("%s was not created", rel)
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config after Init: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Provider)
	}
	if cfg.ReflectionTimeout != 30*time.Second {
		t.Errorf("expected reflection_timeout 30s, got %v", cfg.ReflectionTimeout)
	}

	systemPrompt, err := LoadSystemPrompt()
	if err != nil {
		t.Fatalf("failed to load system prompt: %v", err)
	}
	if !strings.Contains(systemPrompt, "journaling companion") {
		t.Errorf("unexpected system prompt: %q", systemPrompt)
	}

	reflectionPrompt, err := LoadReflectionPrompt()
	if err != nil {
		t.Fatalf("failed to load reflection prompt: %v", err)
	}
	for _, placeholder := range []string{"{{.Mood}}", "{{.Text}}", ".Companion"} {
		if !strings.Contains(reflectionPrompt, placeholder) {
			t.Errorf("reflection_prompt.md missing placeholder: %s", placeholder)
		}
	}
}

// TestInitIsIdempotent verifies that running Init() multiple times
// doesn't overwrite existing config files.
func TestInitIsIdempotent(t *testing.T) {
	setupHome(t)

	if err := Init(); err != nil {
		t.Fatalf("first Init() failed: %v", err)
	}

	cfg, _ := Load()
	cfg.Companion = "stoic"
	cfg.Storage.Backend = "csv"
	if err := Save(cfg); err != nil {
		t.Fatalf("failed to save modified config: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}

	cfg2, _ := Load()
	if cfg2.Companion != "stoic" {
		t.Errorf("Init() overwrote config.yaml: expected 'stoic', got %q", cfg2.Companion)
	}
	if cfg2.Storage.Backend != "csv" {
		t.Errorf("expected backend 'csv', got %q", cfg2.Storage.Backend)
	}
}

// TestLoadReturnsDefaultsForMissingFile verifies that Load() returns
// sensible defaults when config.yaml doesn't exist.
func TestLoadReturnsDefaultsForMissingFile(t *testing.T) {
	setupHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed on missing config: %v", err)
	}

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("unexpected default model: %q", cfg.Model)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("unexpected default backend: %q", cfg.Storage.Backend)
	}
	if cfg.Server.Addr == "" {
		t.Error("expected default server address")
	}
}

func TestLoadParsesDurationAndStorage(t *testing.T) {
	tmpHome := setupHome(t)

	dir := filepath.Join(tmpHome, ".config", "moodjournal")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data := `provider: anthropic
model: claude-sonnet-4-5-20250929
reflection_timeout: 5s
storage:
  backend: csv
  path: /tmp/journal.csv
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ReflectionTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.ReflectionTimeout)
	}
	if cfg.APIKeyEnv() != "ANTHROPIC_API_KEY" {
		t.Errorf("unexpected key env %q", cfg.APIKeyEnv())
	}
	path, err := cfg.StoragePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/journal.csv" {
		t.Errorf("unexpected storage path %q", path)
	}
	// Unset fields keep their defaults
	if cfg.Server.Addr != DefaultConfig().Server.Addr {
		t.Errorf("server addr lost its default: %q", cfg.Server.Addr)
	}
}

func TestLoadSecretsFromDotEnv(t *testing.T) {
	tmpHome := setupHome(t)

	dir := filepath.Join(tmpHome, ".config", "moodjournal")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-test-123\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	if err := LoadSecrets(); err != nil {
		t.Fatalf("LoadSecrets() failed: %v", err)
	}
	if got := DefaultConfig().APIKey(); got != "sk-test-123" {
		t.Errorf("expected key from .env, got %q", got)
	}
}
