package ports

import (
	"context"
	"time"

	"blueprints/internal/data/history"
	"blueprints/internal/engine/verify"
)

// GenerationService abstracts the pipeline operations for driving
// adapters (CLI, TUI, watch mode).
type GenerationService interface {
	ValidateBlueprint(path string) (ValidateResult, error)
	GenerateModule(ctx context.Context, path string) (GenerateResult, error)
	GenerateProject(ctx context.Context, path string) (ProjectResult, error)
	DiscoverBlueprints(dir string) ([]DiscoveredBlueprint, error)
	InitBlueprint(name string) (string, error)
}

// HistoryStore abstracts run persistence for trend workflows.
type HistoryStore interface {
	SaveRun(run history.Run) error
	LoadRuns(projectKey string, since time.Time) ([]history.Run, error)
}

// ValidateResult summarizes one parsed blueprint document.
type ValidateResult struct {
	ModuleName  string
	Description string
	References  int
	Components  int
	Warnings    []string
}

// ModuleOutcome is the per-module result inside a project run.
type ModuleOutcome struct {
	ModuleName string
	Path       string
	Source     string
	Attempts   int
	Flagged    bool
	Results    []verify.Result
}

// GenerateResult is the outcome of generating a single module.
type GenerateResult struct {
	RunID   string
	Module  ModuleOutcome
	Dropped int
}

// ProjectResult is the outcome of generating a full project.
type ProjectResult struct {
	RunID    string
	Root     string
	Order    []string
	Modules  []ModuleOutcome
	Written  []string
	Dropped  int
	Cycles   [][]string
	Duration time.Duration
}

// Flagged lists the modules whose last attempt still failed verification.
func (r ProjectResult) Flagged() []string {
	var flagged []string
	for _, m := range r.Modules {
		if m.Flagged {
			flagged = append(flagged, m.ModuleName)
		}
	}
	return flagged
}

// AttemptsTotal sums generation attempts across all modules.
func (r ProjectResult) AttemptsTotal() int {
	total := 0
	for _, m := range r.Modules {
		total += m.Attempts
	}
	return total
}

// DiscoveredBlueprint is one blueprint found by directory discovery.
type DiscoveredBlueprint struct {
	Path       string
	ModuleName string
	References int
}
