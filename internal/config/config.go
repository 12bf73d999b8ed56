package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every path and credential the tool needs. Nothing in the
// other packages reads the environment or guesses a home-relative path on
// its own; everything is resolved here once and threaded into constructors.
type Config struct {
	// Safari selects which local app variant to read ("safari" or
	// "preview"). SafariDBPath, when set, overrides variant resolution
	// with an explicit database path.
	Safari       string `yaml:"safari"`
	SafariDBPath string `yaml:"safari_db_path"`

	// CacheDir holds the local snapshot files and the remote snapshot JSON.
	CacheDir string `yaml:"cache_dir"`

	// RaindropToken is the bearer token for the Raindrop.io API. Empty
	// disables the remote source.
	RaindropToken string `yaml:"-"`
	RaindropURL   string `yaml:"raindrop_url"`

	// LLM enrichment endpoint (chat-completions style).
	LLMBaseURL string `yaml:"llm_base_url"`
	LLMModel   string `yaml:"llm_model"`
	LLMKey     string `yaml:"-"`

	LogLevel string `yaml:"log_level"` // "debug" | "info" | "warn" | "error"
	Pretty   bool   `yaml:"pretty"`    // true => zap dev encoder
}

// Load reads the optional YAML config file, applies defaults, then lets the
// environment override. A missing config file is not an error; a malformed
// one is. Secrets (tokens) come only from the environment, with .env files
// honored via godotenv.
func Load(path string) (*Config, error) {
	// Best-effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		Safari:      "safari",
		RaindropURL: "https://api.raindrop.io/rest/v1",
		LLMBaseURL:  "https://api.openai.com/v1",
		LLMModel:    "gpt-4o-mini",
		LogLevel:    "info",
		Pretty:      true,
	}

	if path == "" {
		path = defaultConfigPath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir()
	}

	// Env overrides, secrets included.
	cfg.Safari = getenv("TABDEX_SAFARI", cfg.Safari)
	cfg.SafariDBPath = getenv("TABDEX_SAFARI_DB", cfg.SafariDBPath)
	cfg.CacheDir = getenv("TABDEX_CACHE_DIR", cfg.CacheDir)
	cfg.RaindropToken = getenv("RAINDROP_TOKEN", cfg.RaindropToken)
	cfg.RaindropURL = getenv("TABDEX_RAINDROP_URL", cfg.RaindropURL)
	cfg.LLMBaseURL = getenv("TABDEX_LLM_URL", cfg.LLMBaseURL)
	cfg.LLMModel = getenv("TABDEX_LLM_MODEL", cfg.LLMModel)
	cfg.LLMKey = getenv("TABDEX_LLM_KEY", cfg.LLMKey)
	cfg.LogLevel = getenv("TABDEX_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// RemoteSnapshotPath is the single JSON document holding the last fetched
// Raindrop state.
func (c *Config) RemoteSnapshotPath() string {
	return filepath.Join(c.CacheDir, "raindrop.json")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tabdex", "config.yaml")
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tabdex")
	}
	return filepath.Join(home, ".cache", "tabdex")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
