package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
)

// Config holds all application configuration.
type Config struct {
	Port              int           `yaml:"port"`
	DBPath            string        `yaml:"db_path"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
	DataSource        string        `yaml:"data_source"`
	SubgraphURL       string        `yaml:"subgraph_url"`
	BaseURL           string        `yaml:"base_url"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	WidgetIdleTTL     time.Duration `yaml:"widget_idle_ttl"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	SeedDemoPolls     bool          `yaml:"seed_demo_polls"`
	WidgetDefaults    poll.Config   `yaml:"widget_defaults"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Port:              8080,
		DBPath:            "polydemo.db",
		LogLevel:          "info",
		LogFormat:         "text",
		DataSource:        models.SourceAuto,
		SweepInterval:     15 * time.Second,
		WidgetIdleTTL:     30 * time.Minute,
		CountdownInterval: time.Second,
		SeedDemoPolls:     true,
		WidgetDefaults:    poll.DefaultConfig(),
	}
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("POLYDEMO_CONFIG"); path != "" {
		return path
	}
	return "./polydemo.yaml"
}

// LoadDotEnv loads environment variables from a .env file.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a YAML file on top of the defaults, then
// applies environment overrides. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := applyEnvironmentOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) error {
	if v := os.Getenv("POLYDEMO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POLYDEMO_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("POLYDEMO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("POLYDEMO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("POLYDEMO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("POLYDEMO_DATA_SOURCE"); v != "" {
		cfg.DataSource = v
	}
	if v := os.Getenv("POLYDEMO_SUBGRAPH_URL"); v != "" {
		cfg.SubgraphURL = v
	}
	if v := os.Getenv("POLYDEMO_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("POLYDEMO_WIDGET_IDLE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POLYDEMO_WIDGET_IDLE_TTL: %w", err)
		}
		cfg.WidgetIdleTTL = ttl
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q", cfg.LogFormat)
	}
	switch cfg.DataSource {
	case models.SourceAuto, models.SourceContract, models.SourceSubgraph:
	default:
		return fmt.Errorf("invalid data_source %q", cfg.DataSource)
	}
	if cfg.SweepInterval < time.Second {
		return fmt.Errorf("sweep_interval must be at least 1s, got %s", cfg.SweepInterval)
	}
	if cfg.WidgetIdleTTL < 0 {
		return fmt.Errorf("widget_idle_ttl must not be negative")
	}
	if cfg.CountdownInterval < 100*time.Millisecond {
		return fmt.Errorf("countdown_interval must be at least 100ms, got %s", cfg.CountdownInterval)
	}
	if err := cfg.WidgetDefaults.Validate(); err != nil {
		return fmt.Errorf("widget_defaults: %w", err)
	}
	return nil
}
