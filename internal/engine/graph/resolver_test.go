package graph

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"blueprints/internal/engine/blueprint"
)

func testResolver() *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(blueprint.NewParser(), logger)
}

func writeBlueprint(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func orderNames(project *ResolvedProject) []string {
	names := make([]string, len(project.Order))
	for i, bp := range project.Order {
		names[i] = bp.ModuleName
	}
	return names
}

func indexOf(names []string, want string) int {
	for i, name := range names {
		if name == want {
			return i
		}
	}
	return -1
}

func TestResolve_NoReferences(t *testing.T) {
	dir := t.TempDir()
	root := writeBlueprint(t, dir, "solo.md", "# solo\nStandalone module.\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(project.Dependencies) != 0 {
		t.Errorf("dependencies = %v, want empty", project.Dependencies)
	}
	if got := orderNames(project); len(got) != 1 || got[0] != "solo" {
		t.Errorf("order = %v, want [solo]", got)
	}
	if project.ID == "" {
		t.Error("expected a run ID")
	}
}

func TestResolve_DiamondDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "d.md", "# d\nShared leaf.\n")
	writeBlueprint(t, dir, "b.md", "# b\nLeft branch.\n\ndeps: @.d\n")
	writeBlueprint(t, dir, "c.md", "# c\nRight branch.\n\ndeps: @.d\n")
	root := writeBlueprint(t, dir, "a.md", "# a\nDiamond root.\n\ndeps: @.b; @.c\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(project.Dependencies) != 3 {
		t.Fatalf("dependencies = %d, want 3", len(project.Dependencies))
	}

	names := orderNames(project)
	if len(names) != 4 {
		t.Fatalf("order = %v, want 4 entries", names)
	}
	if names[len(names)-1] != "a" {
		t.Errorf("root not last: %v", names)
	}
	dIdx := indexOf(names, "d")
	if dIdx < 0 || dIdx > indexOf(names, "b") || dIdx > indexOf(names, "c") {
		t.Errorf("d must precede b and c: %v", names)
	}

	seen := make(map[string]int)
	for _, name := range names {
		seen[name]++
	}
	if seen["d"] != 1 {
		t.Errorf("d appears %d times", seen["d"])
	}
}

func TestResolve_MissingReferenceDropped(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "real.md", "# real\nExists.\n")
	root := writeBlueprint(t, dir, "root.md", "# root\nPartial graph.\n\ndeps: @.real; @.ghost\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, ok := project.Dependencies["real"]; !ok {
		t.Error("real dependency missing")
	}
	if _, ok := project.Dependencies["ghost"]; ok {
		t.Error("ghost should not resolve")
	}
	if len(project.Dropped) != 1 || project.Dropped[0].Target != "@.ghost" {
		t.Errorf("dropped = %+v", project.Dropped)
	}
	if got := orderNames(project); len(got) != 2 || got[1] != "root" {
		t.Errorf("order = %v", got)
	}
}

func TestResolve_NestedModulePaths(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "models/user.md", "# models.user\nUser model.\n")
	root := writeBlueprint(t, dir, "api/tasks.md",
		"# api.tasks\nTask endpoints.\n\ndeps: @.models.user[User]\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, ok := project.Dependencies["models.user"]; !ok {
		t.Fatalf("models.user not resolved, dropped=%+v", project.Dropped)
	}
	if got := orderNames(project); len(got) != 2 ||
		got[0] != "models.user" || got[1] != "api.tasks" {
		t.Errorf("order = %v, want [models.user api.tasks]", got)
	}
}

func TestResolve_RelativeReferences(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "shared/util.md", "# shared.util\nHelpers.\n")
	root := writeBlueprint(t, dir, "svc/worker.md",
		"# svc.worker\nWorker.\n\ndeps: ../shared/util\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := project.Dependencies["shared.util"]; !ok {
		t.Errorf("relative reference not resolved, dropped=%+v", project.Dropped)
	}
}

func TestResolve_CycleReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "x.md", "# x\nCycle member.\n\ndeps: @.y\n")
	writeBlueprint(t, dir, "y.md", "# y\nCycle member.\n\ndeps: @.x\n")
	writeBlueprint(t, dir, "z.md", "# z\nAcyclic leaf.\n")
	root := writeBlueprint(t, dir, "root.md", "# root\nCyclic graph.\n\ndeps: @.x; @.z\n")

	project, err := testResolver().Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	names := orderNames(project)
	if len(names) != 4 {
		t.Fatalf("order = %v, want every module exactly once", names)
	}
	if names[0] != "z" {
		t.Errorf("acyclic leaf should lead the order: %v", names)
	}
	if names[len(names)-1] != "root" {
		t.Errorf("root not last: %v", names)
	}
	if len(project.Cycles) == 0 {
		t.Error("expected the x/y cycle to be reported")
	}
}

type stubAnalyzer struct {
	edges []InferredEdge
	err   error
}

func (s *stubAnalyzer) InferEdges(_ []*blueprint.Blueprint) ([]InferredEdge, error) {
	return s.edges, s.err
}

func TestResolve_SemanticEdgesReorder(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "b.md", "# b\nOne.\n")
	writeBlueprint(t, dir, "c.md", "# c\nTwo.\n")
	root := writeBlueprint(t, dir, "a.md", "# a\nRoot.\n\ndeps: @.b; @.c\n")

	r := testResolver()
	r.SetSemanticAnalyzer(&stubAnalyzer{edges: []InferredEdge{{From: "b", To: "c"}}})

	project, err := r.Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	names := orderNames(project)
	if indexOf(names, "c") > indexOf(names, "b") {
		t.Errorf("inferred edge b->c should place c first: %v", names)
	}
}

func TestResolve_SemanticAnalyzerFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	writeBlueprint(t, dir, "b.md", "# b\nOne.\n")
	root := writeBlueprint(t, dir, "a.md", "# a\nRoot.\n\ndeps: @.b\n")

	r := testResolver()
	r.SetSemanticAnalyzer(&stubAnalyzer{err: os.ErrDeadlineExceeded})

	project, err := r.Resolve(root, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := orderNames(project); len(got) != 2 || got[1] != "a" {
		t.Errorf("order = %v", got)
	}
}
