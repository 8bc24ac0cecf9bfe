package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI          AIConfig          `yaml:"ai"`
	Store       StoreConfig       `yaml:"store"`
	Prompt      PromptConfig      `yaml:"prompt"`
	FileMode    FileModeConfig    `yaml:"filemode"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type AIConfig struct {
	// Provider is "gemini" or "openai" (any OpenAI-compatible chat completions endpoint).
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	GeminiAPIKey string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	APIKey       string        `yaml:"api_key" env:"LLM_API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Timeout      time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	// Driver is one of "postgres", "mysql", "sqlite".
	Driver       string        `yaml:"driver" env:"STORE_DRIVER"`
	URL          string        `yaml:"url" env:"DATABASE_URL"`
	MinConns     int           `yaml:"min_conns"`
	MaxConns     int           `yaml:"max_conns"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

type PromptConfig struct {
	// DefaultYear is used when a question names a date without a year.
	DefaultYear int `yaml:"default_year"`
}

type FileModeConfig struct {
	CacheDir   string `yaml:"cache_dir" env:"CACHE_DIR"`
	MaxContext int    `yaml:"max_context"`
	SampleSize int    `yaml:"sample_size"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

type MaintenanceConfig struct {
	Schedule string `yaml:"schedule"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

var (
	ErrModelNotConfigured = errors.New("model credentials are not configured")
	ErrStoreNotConfigured = errors.New("store is not configured")
)

// Load reads CONFIG_FILE (default config.yaml), then applies environment
// overrides and defaults. A missing default config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = "config.yaml"
	}
	return LoadFile(configFile, explicit)
}

// LoadFile reads the given YAML file. When required is false a missing file
// yields a config built from the environment and defaults.
func LoadFile(path string, required bool) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !required:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("LLM_API_KEY")
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = os.Getenv("LLM_BASE_URL")
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if c.Store.URL == "" {
		c.Store.URL = os.Getenv("DATABASE_URL")
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.FileMode.CacheDir = v
	}
	if v := os.Getenv("DEFAULT_YEAR"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			c.Prompt.DefaultYear = year
		}
	}
}

func (c *Config) applyDefaults() {
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 120 * time.Second
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "postgres"
	}
	if c.Store.MinConns == 0 {
		c.Store.MinConns = 1
	}
	if c.Store.MaxConns == 0 {
		c.Store.MaxConns = 5
	}
	if c.Store.QueryTimeout == 0 {
		c.Store.QueryTimeout = 30 * time.Second
	}
	if c.Prompt.DefaultYear == 0 {
		c.Prompt.DefaultYear = 2025
	}
	if c.FileMode.CacheDir == "" {
		c.FileMode.CacheDir = "cache"
	}
	if c.FileMode.MaxContext == 0 {
		c.FileMode.MaxContext = 100000
	}
	if c.FileMode.SampleSize == 0 {
		c.FileMode.SampleSize = 3
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Maintenance.Schedule == "" {
		c.Maintenance.Schedule = "0 */10 * * * *" // every 10 minutes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown ai.provider %q (want gemini or openai)", c.AI.Provider)
	}
	switch c.Store.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unknown store.driver %q (want postgres, mysql or sqlite)", c.Store.Driver)
	}
	if c.Store.MinConns < 0 || c.Store.MaxConns < 1 {
		return fmt.Errorf("store pool bounds must be positive (min %d, max %d)", c.Store.MinConns, c.Store.MaxConns)
	}
	if c.Store.MinConns > c.Store.MaxConns {
		return fmt.Errorf("store.min_conns (%d) exceeds store.max_conns (%d)", c.Store.MinConns, c.Store.MaxConns)
	}
	if c.FileMode.SampleSize < 1 {
		return fmt.Errorf("filemode.sample_size must be at least 1")
	}
	return nil
}

// RequireModel reports whether the configured provider has credentials.
func (c *Config) RequireModel() error {
	switch c.AI.Provider {
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY or ai.gemini_api_key", ErrModelNotConfigured)
		}
	case "openai":
		if c.AI.APIKey == "" || c.AI.BaseURL == "" {
			return fmt.Errorf("%w: set LLM_API_KEY and LLM_BASE_URL or ai.api_key and ai.base_url", ErrModelNotConfigured)
		}
	}
	return nil
}

// RequireStore reports whether a store connection string is set.
func (c *Config) RequireStore() error {
	if c.Store.URL == "" {
		return fmt.Errorf("%w: set DATABASE_URL or store.url", ErrStoreNotConfigured)
	}
	return nil
}
