package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one recorded generation run for a project root.
type Run struct {
	RunID          string
	ProjectKey     string
	SchemaVersion  int
	Timestamp      time.Time
	RootModule     string
	Language       string
	ModuleCount    int
	GeneratedCount int
	FlaggedCount   int
	DroppedCount   int
	CycleCount     int
	AttemptsTotal  int
	Duration       time.Duration
}

// Store persists run snapshots in sqlite. A missing or broken store never
// fails a generation run; callers treat every method as best-effort.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.RunID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.ProjectKey == "" {
		run.ProjectKey = "default"
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}

	query := `
INSERT INTO runs (
  run_id, project_key, schema_version, ts_utc, root_module, language,
  module_count, generated_count, flagged_count, dropped_count, cycle_count,
  attempts_total, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  generated_count=excluded.generated_count,
  flagged_count=excluded.flagged_count,
  attempts_total=excluded.attempts_total,
  duration_ms=excluded.duration_ms
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			run.ProjectKey,
			run.SchemaVersion,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.RootModule,
			run.Language,
			run.ModuleCount,
			run.GeneratedCount,
			run.FlaggedCount,
			run.DroppedCount,
			run.CycleCount,
			run.AttemptsTotal,
			run.Duration.Milliseconds(),
		)
		return err
	})
}

func (s *Store) LoadRuns(projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if projectKey == "" {
		projectKey = "default"
	}

	query := `
SELECT
  run_id, project_key, schema_version, ts_utc, root_module, language,
  module_count, generated_count, flagged_count, dropped_count, cycle_count,
  attempts_total, duration_ms
FROM runs
WHERE project_key = ?
`
	args := []any{projectKey}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			tsRaw      string
			durationMS int64
			run        Run
		)
		if err := rows.Scan(
			&run.RunID,
			&run.ProjectKey,
			&run.SchemaVersion,
			&tsRaw,
			&run.RootModule,
			&run.Language,
			&run.ModuleCount,
			&run.GeneratedCount,
			&run.FlaggedCount,
			&run.DroppedCount,
			&run.CycleCount,
			&run.AttemptsTotal,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
