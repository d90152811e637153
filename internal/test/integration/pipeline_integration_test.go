package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueprints/internal/core/app"
	"blueprints/internal/core/config"
	"blueprints/internal/data/history"
	"blueprints/internal/engine/oracle"
)

var headerRe = regexp.MustCompile(`(?m)^# ([\w./-]+)`)

// First words of prompt section headings that must not be mistaken for
// module names when scanning the prompt for its `# <module>` header.
var sectionHeadings = map[string]bool{
	"Context":        true,
	"Module":         true,
	"Requirements":   true,
	"Implementation": true,
	"Previous":       true,
	"Verification":   true,
	"Required":       true,
}

// replies keyed by module name; fenced so code extraction is exercised.
var moduleReplies = map[string]string{
	"models.user": "```python\nclass User:\n    def __init__(self, name: str):\n        self.name = name\n```",
	"services.auth": "```python\nfrom models.user import User\n\n\ndef authenticate(name: str) -> User:\n    return User(name)\n```",
	"root": "```python\nfrom models.user import User\nfrom services.auth import authenticate\n\n\ndef main() -> None:\n    user = authenticate(\"demo\")\n    print(user.name)\n```",
}

func createBlueprints(t *testing.T, dir string) string {
	t.Helper()

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("models/user.md", `# models.user
User record with a display name.

User:
- __init__(name: str)
`)
	write("services/auth.md", `# services.auth
Authentication service producing user records.

deps: @.models.user [User]
`)
	write("root.md", `# root
Application entry point.

deps: @.services.auth [authenticate]; @.models.user [User]
notes: keep the entry point minimal
`)
	return filepath.Join(dir, "root.md")
}

func newOracleServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		module := ""
		for _, match := range headerRe.FindAllStringSubmatch(req.Prompt, -1) {
			if !sectionHeadings[match[1]] {
				module = match[1]
			}
		}
		reply, ok := moduleReplies[module]
		require.True(t, ok, "no scripted reply for module %q", module)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	}))
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	root := createBlueprints(t, tmpDir)

	server := newOracleServer(t)
	defer server.Close()

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.Generate.Retries = 1
	cfg.Generate.PackageMarkers = true
	cfg.DB.Enabled = true
	cfg.DB.HistoryPath = filepath.Join(tmpDir, "state", "history.db")
	cfg.DB.InsightPath = filepath.Join(tmpDir, "cache", "insight.db")

	client := oracle.NewHTTPClient(oracle.Options{
		Endpoint: server.URL,
		Model:    "test",
		Timeout:  10 * time.Second,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appInstance := app.New(cfg, client, false, logger)

	result, err := appInstance.GenerateProject(context.Background(), root)
	require.NoError(t, err)

	// Dependencies generate before their dependents, root last.
	require.Len(t, result.Order, 3)
	assert.Equal(t, "models.user", result.Order[0])
	assert.Equal(t, "root", result.Order[2])
	assert.Empty(t, result.Flagged())
	assert.Empty(t, result.Cycles)
	assert.Zero(t, result.Dropped)

	// Artifacts land beside their documents, with package markers.
	for _, rel := range []string{
		"models/user.py",
		"services/auth.py",
		"root.py",
		"models/__init__.py",
		"services/__init__.py",
	} {
		_, statErr := os.Stat(filepath.Join(tmpDir, rel))
		assert.NoError(t, statErr, "expected artifact %s", rel)
	}

	// Generated source carries the declared absolute imports.
	authSource, err := os.ReadFile(filepath.Join(tmpDir, "services", "auth.py"))
	require.NoError(t, err)
	assert.Contains(t, string(authSource), "from models.user import User")

	require.NoError(t, appInstance.Close())

	// The run is recorded in the history store.
	store, err := history.Open(cfg.DB.HistoryPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.LoadRuns("root", time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, 3, runs[0].ModuleCount)
	assert.Equal(t, 3, runs[0].GeneratedCount)
	assert.Equal(t, 0, runs[0].FlaggedCount)
}

func TestPipelineFlagsModuleAfterBudget(t *testing.T) {
	tmpDir := t.TempDir()
	root := createBlueprints(t, tmpDir)

	server := newOracleServer(t)
	defer server.Close()

	// Break one reply so the module never conforms.
	original := moduleReplies["services.auth"]
	moduleReplies["services.auth"] = "```python\ndef authenticate(name):\n    return name\n```"
	defer func() { moduleReplies["services.auth"] = original }()

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.Generate.Retries = 1
	cfg.DB.Enabled = false

	client := oracle.NewHTTPClient(oracle.Options{
		Endpoint: server.URL,
		Model:    "test",
		Timeout:  10 * time.Second,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appInstance := app.New(cfg, client, false, logger)
	defer appInstance.Close()

	result, err := appInstance.GenerateProject(context.Background(), root)
	require.NoError(t, err)

	// Generation continues past the flagged module.
	require.Len(t, result.Modules, 3)
	assert.Equal(t, []string{"services.auth"}, result.Flagged())

	for _, module := range result.Modules {
		if module.ModuleName == "services.auth" {
			// One initial attempt plus one retry.
			assert.Equal(t, 2, module.Attempts)
		}
	}
}
