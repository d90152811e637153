package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveAndLoadRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	run := Run{
		RunID:          "run-1",
		ProjectKey:     "demo",
		RootModule:     "api.tasks",
		Language:       "python",
		ModuleCount:    3,
		GeneratedCount: 3,
		FlaggedCount:   1,
		AttemptsTotal:  5,
		Duration:       1500 * time.Millisecond,
	}
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := store.LoadRuns("demo", time.Time{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.RootModule != "api.tasks" || got.FlaggedCount != 1 || got.Duration != 1500*time.Millisecond {
		t.Errorf("run = %+v", got)
	}
}

func TestStore_UpsertByRunID(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	run := Run{RunID: "run-1", ProjectKey: "demo", RootModule: "api.tasks", ModuleCount: 2}
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	run.GeneratedCount = 2
	if err := store.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	runs, err := store.LoadRuns("demo", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].GeneratedCount != 2 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
