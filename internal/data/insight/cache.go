package insight

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"blueprints/internal/engine/graph"
)

const driverName = "sqlite"

// Cache stores semantic dependency analysis results keyed by blueprint
// content hash. It is an optimization only: every method degrades to a
// miss on error and eviction never affects resolution correctness.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Cache, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("insight cache path must not be empty")
	}
	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create insight directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open insight cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS insights (
  content_hash TEXT PRIMARY KEY,
  module_name TEXT NOT NULL,
  edges_json TEXT NOT NULL,
  created_at_utc TEXT NOT NULL
);
`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize insight schema %q: %w", cleanPath, err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key hashes blueprint content for cache lookup.
func Key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached inferred edges for one blueprint content hash.
// Any error is a miss.
func (c *Cache) Get(hash string) ([]graph.InferredEdge, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var edgesJSON string
	err := c.db.QueryRow(`SELECT edges_json FROM insights WHERE content_hash = ?`, hash).Scan(&edgesJSON)
	if err != nil {
		return nil, false
	}

	var edges []graph.InferredEdge
	if err := json.Unmarshal([]byte(edgesJSON), &edges); err != nil {
		return nil, false
	}
	return edges, true
}

// Put stores inferred edges for one blueprint content hash. Errors are
// returned for logging but callers may ignore them.
func (c *Cache) Put(hash, moduleName string, edges []graph.InferredEdge) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("encode insight edges: %w", err)
	}
	_, err = c.db.Exec(`
INSERT INTO insights (content_hash, module_name, edges_json, created_at_utc)
VALUES (?, ?, ?, ?)
ON CONFLICT(content_hash) DO UPDATE SET
  module_name=excluded.module_name,
  edges_json=excluded.edges_json,
  created_at_utc=excluded.created_at_utc
`, hash, moduleName, string(edgesJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store insight: %w", err)
	}
	return nil
}

// Evict drops entries older than the retention window.
func (c *Cache) Evict(olderThan time.Duration) error {
	if c == nil || c.db == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	_, err := c.db.Exec(`DELETE FROM insights WHERE created_at_utc < ?`, cutoff)
	return err
}
