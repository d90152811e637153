package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Oracle        Oracle        `toml:"oracle"`
	Generate      Generate      `toml:"generate"`
	Verify        Verify        `toml:"verify"`
	Discover      Discover      `toml:"discover"`
	DB            Database      `toml:"db"`
	Observability Observability `toml:"observability"`
	Watch         Watch         `toml:"watch"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
	CacheDir    string `toml:"cache_dir"`
}

type Oracle struct {
	Endpoint    string        `toml:"endpoint"`
	Model       string        `toml:"model"`
	MaxTokens   int           `toml:"max_tokens"`
	Temperature float64       `toml:"temperature"`
	Timeout     time.Duration `toml:"timeout"`
	RatePerSec  float64       `toml:"rate_per_sec"`
	APIKeyEnv   string        `toml:"api_key_env"`
}

type Generate struct {
	Language       string `toml:"language"`
	Retries        int    `toml:"retries"`
	PackageMarkers bool   `toml:"package_markers"`
	Makefile       bool   `toml:"makefile"`
}

type Verify struct {
	RuntimeLoad        bool          `toml:"runtime_load"`
	RuntimeTimeout     time.Duration `toml:"runtime_timeout"`
	InterpreterPath    string        `toml:"interpreter_path"`
	DeclaredThirdParty []string      `toml:"declared_third_party"`
}

type Discover struct {
	ExcludeGlobs  []string `toml:"exclude_globs"`
	SkipFilenames []string `toml:"skip_filenames"`
}

type Database struct {
	Enabled     bool   `toml:"enabled"`
	HistoryPath string `toml:"history_path"`
	InsightPath string `toml:"insight_path"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}
