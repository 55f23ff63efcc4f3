package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/system_prompt.md
var DefaultSystemPrompt string

//go:embed defaults/reflection_prompt.md
var DefaultReflectionPrompt string

//go:embed defaults/companions/*.md
var defaultCompanionsFS embed.FS

// StorageConfig selects and configures the entry store backend
type StorageConfig struct {
	Backend   string `yaml:"backend"`              // memory, csv, sqlite, postgres, or redis
	Path      string `yaml:"path,omitempty"`       // file path for csv and sqlite
	DSN       string `yaml:"dsn,omitempty"`        // postgres connection string
	RedisAddr string `yaml:"redis_addr,omitempty"` // host:port
	RedisKey  string `yaml:"redis_key,omitempty"`
}

// ServerConfig holds settings for the web UI
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, or error
}

// Config holds application-level settings
type Config struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	Companion         string        `yaml:"companion"`
	ReflectionTimeout time.Duration `yaml:"reflection_timeout"`
	Storage           StorageConfig `yaml:"storage"`
	Server            ServerConfig  `yaml:"server"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider:          "openai",
		Model:             "gpt-4o-mini",
		Companion:         "companion",
		ReflectionTimeout: 30 * time.Second,
		Storage: StorageConfig{
			Backend:  "sqlite",
			RedisKey: "moodjournal:entries",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8501",
			LogLevel: "info",
		},
	}
}

// Dir returns the moodjournal config directory path
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "moodjournal"), nil
}

// Path returns the full path to config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file, returning defaults if it doesn't exist
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.ReflectionTimeout <= 0 {
		cfg.ReflectionTimeout = DefaultConfig().ReflectionTimeout
	}

	return cfg, nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Init ensures the config directory exists with all necessary files
func Init() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	companionDir := filepath.Join(dir, "companions")
	if err := os.MkdirAll(companionDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directories: %w", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	}

	prompts := map[string]string{
		"system_prompt.md":     DefaultSystemPrompt,
		"reflection_prompt.md": DefaultReflectionPrompt,
	}
	for name, content := range prompts {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
		}
	}

	// Seed companions only into an empty directory so user deletions stick
	entries, _ := os.ReadDir(companionDir)
	if len(entries) == 0 {
		files, err := defaultCompanionsFS.ReadDir("defaults/companions")
		if err != nil {
			return fmt.Errorf("failed to read embedded companions: %w", err)
		}

		for _, file := range files {
			content, err := defaultCompanionsFS.ReadFile("defaults/companions/" + file.Name())
			if err != nil {
				return fmt.Errorf("failed to read embedded companion %s: %w", file.Name(), err)
			}

			destPath := filepath.Join(companionDir, file.Name())
			if err := os.WriteFile(destPath, content, 0644); err != nil {
				return fmt.Errorf("failed to write companion %s: %w", file.Name(), err)
			}
		}
	}

	return nil
}

// SystemPromptPath returns the path to the system prompt file
func SystemPromptPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "system_prompt.md"), nil
}

// LoadSystemPrompt reads the system prompt from disk
func LoadSystemPrompt() (string, error) {
	path, err := SystemPromptPath()
	if err != nil {
		return "", err
	}
	return loadOrDefault(path, DefaultSystemPrompt)
}

// ReflectionPromptPath returns the path to the reflection prompt template
func ReflectionPromptPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reflection_prompt.md"), nil
}

// LoadReflectionPrompt reads the reflection prompt template from disk
func LoadReflectionPrompt() (string, error) {
	path, err := ReflectionPromptPath()
	if err != nil {
		return "", err
	}
	return loadOrDefault(path, DefaultReflectionPrompt)
}

func loadOrDefault(path, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}

// StoragePath returns the file path for file-backed stores, defaulting to
// a backend-specific file inside the config directory
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	switch c.Storage.Backend {
	case "csv":
		return filepath.Join(dir, "journal.csv"), nil
	default:
		return filepath.Join(dir, "moodjournal.db"), nil
	}
}

// APIKeyEnv returns the environment variable holding the completion
// service credential for the configured provider
func (c *Config) APIKeyEnv() string {
	switch c.Provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// LoadSecrets populates the environment from .env files in the working
// directory and the config directory. Variables already set win.
func LoadSecrets() error {
	candidates := []string{".env"}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// APIKey returns the completion service credential, or "" when unset
func (c *Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv())
}
