package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: BLUEPRINTS_[SECTION]_[KEY]
// (e.g., BLUEPRINTS_ORACLE_ENDPOINT).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "BLUEPRINTS_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "BLUEPRINTS_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.CacheDir, "BLUEPRINTS_PATHS_CACHE_DIR")

	// Oracle
	setEnvString(&cfg.Oracle.Endpoint, "BLUEPRINTS_ORACLE_ENDPOINT")
	setEnvString(&cfg.Oracle.Model, "BLUEPRINTS_ORACLE_MODEL")
	setEnvInt(&cfg.Oracle.MaxTokens, "BLUEPRINTS_ORACLE_MAX_TOKENS")
	setEnvFloat64(&cfg.Oracle.Temperature, "BLUEPRINTS_ORACLE_TEMPERATURE")
	setEnvDuration(&cfg.Oracle.Timeout, "BLUEPRINTS_ORACLE_TIMEOUT")
	setEnvFloat64(&cfg.Oracle.RatePerSec, "BLUEPRINTS_ORACLE_RATE_PER_SEC")

	// Generate
	setEnvString(&cfg.Generate.Language, "BLUEPRINTS_GENERATE_LANGUAGE")
	setEnvInt(&cfg.Generate.Retries, "BLUEPRINTS_GENERATE_RETRIES")
	setEnvBool(&cfg.Generate.PackageMarkers, "BLUEPRINTS_GENERATE_PACKAGE_MARKERS")
	setEnvBool(&cfg.Generate.Makefile, "BLUEPRINTS_GENERATE_MAKEFILE")

	// Verify
	setEnvBool(&cfg.Verify.RuntimeLoad, "BLUEPRINTS_VERIFY_RUNTIME_LOAD")
	setEnvDuration(&cfg.Verify.RuntimeTimeout, "BLUEPRINTS_VERIFY_RUNTIME_TIMEOUT")
	setEnvString(&cfg.Verify.InterpreterPath, "BLUEPRINTS_VERIFY_INTERPRETER_PATH")

	// Database
	setEnvBool(&cfg.DB.Enabled, "BLUEPRINTS_DB_ENABLED")
	setEnvString(&cfg.DB.HistoryPath, "BLUEPRINTS_DB_HISTORY_PATH")
	setEnvString(&cfg.DB.InsightPath, "BLUEPRINTS_DB_INSIGHT_PATH")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "BLUEPRINTS_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "BLUEPRINTS_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "BLUEPRINTS_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "BLUEPRINTS_OBSERVABILITY_ENABLE_TRACING")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "BLUEPRINTS_WATCH_DEBOUNCE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
