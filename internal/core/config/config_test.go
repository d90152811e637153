package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprints.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Generate.Language != "python" {
		t.Errorf("language = %q", cfg.Generate.Language)
	}
	if cfg.Generate.Retries != 2 {
		t.Errorf("retries = %d", cfg.Generate.Retries)
	}
	if cfg.Oracle.Timeout != 120*time.Second {
		t.Errorf("timeout = %v", cfg.Oracle.Timeout)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_SectionValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version = 1

[oracle]
endpoint = "http://localhost:8080/generate"
model = "codegen-large"
temperature = 0.2

[generate]
language = "go"
retries = 1

[discover]
exclude_globs = ["**/drafts/**"]
`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Oracle.Model != "codegen-large" {
		t.Errorf("model = %q", cfg.Oracle.Model)
	}
	if cfg.Generate.Language != "go" || cfg.Generate.Retries != 1 {
		t.Errorf("generate = %+v", cfg.Generate)
	}
	if len(cfg.Discover.ExcludeGlobs) != 1 {
		t.Errorf("exclude globs = %v", cfg.Discover.ExcludeGlobs)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"version":     "version = 9\n",
		"temperature": "version = 1\n[oracle]\ntemperature = 5.0\n",
		"retries":     "version = 1\n[generate]\nretries = -1\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BLUEPRINTS_ORACLE_ENDPOINT", "http://override:9000")
	t.Setenv("BLUEPRINTS_GENERATE_RETRIES", "4")
	t.Setenv("BLUEPRINTS_WATCH_DEBOUNCE", "2s")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Oracle.Endpoint != "http://override:9000" {
		t.Errorf("endpoint = %q", cfg.Oracle.Endpoint)
	}
	if cfg.Generate.Retries != 4 {
		t.Errorf("retries = %d", cfg.Generate.Retries)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}
