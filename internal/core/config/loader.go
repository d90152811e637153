package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateOracle(&cfg); err != nil {
		return nil, err
	}
	if err := validateGenerate(&cfg); err != nil {
		return nil, err
	}
	if err := validateVerify(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a config with every default applied, for runs without a
// config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = "data/cache"
	}

	if strings.TrimSpace(cfg.Oracle.Model) == "" {
		cfg.Oracle.Model = "default"
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 4096
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 120 * time.Second
	}
	if strings.TrimSpace(cfg.Oracle.APIKeyEnv) == "" {
		cfg.Oracle.APIKeyEnv = "BLUEPRINTS_API_KEY"
	}

	if strings.TrimSpace(cfg.Generate.Language) == "" {
		cfg.Generate.Language = "python"
	}
	if cfg.Generate.Retries == 0 {
		cfg.Generate.Retries = 2
	}

	if cfg.Verify.RuntimeTimeout == 0 {
		cfg.Verify.RuntimeTimeout = 10 * time.Second
	}

	if len(cfg.Discover.SkipFilenames) == 0 {
		cfg.Discover.SkipFilenames = []string{"README.md", "CLAUDE.md", "AGENTS.md", "CHANGELOG.md"}
	}

	if strings.TrimSpace(cfg.DB.HistoryPath) == "" {
		cfg.DB.HistoryPath = "data/state/history.db"
	}
	if strings.TrimSpace(cfg.DB.InsightPath) == "" {
		cfg.DB.InsightPath = "data/cache/insight.db"
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9215
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	return nil
}

func validateOracle(cfg *Config) error {
	if cfg.Oracle.MaxTokens < 0 {
		return fmt.Errorf("oracle.max_tokens must not be negative")
	}
	if cfg.Oracle.Temperature < 0 || cfg.Oracle.Temperature > 2 {
		return fmt.Errorf("oracle.temperature %v out of range [0, 2]", cfg.Oracle.Temperature)
	}
	if cfg.Oracle.RatePerSec < 0 {
		return fmt.Errorf("oracle.rate_per_sec must not be negative")
	}
	return nil
}

func validateGenerate(cfg *Config) error {
	if cfg.Generate.Retries < 0 {
		return fmt.Errorf("generate.retries must not be negative")
	}
	return nil
}

func validateVerify(cfg *Config) error {
	if cfg.Verify.RuntimeTimeout < 0 {
		return fmt.Errorf("verify.runtime_timeout must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.Port < 0 || cfg.Observability.Port > 65535 {
		return fmt.Errorf("observability.port %d out of range", cfg.Observability.Port)
	}
	return nil
}

// APIKey reads the oracle API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Oracle.APIKeyEnv)
}
