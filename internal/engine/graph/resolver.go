package graph

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/shared/observability"
)

// DroppedReference records a declared reference that could not be resolved
// to a parseable blueprint file. Dropping is soft: resolution continues.
type DroppedReference struct {
	From   string // module that declared the reference
	Target string // target path as written
	Reason string
}

// ResolvedProject is the output of one resolution run. Dependencies never
// contains the root; Order lists every dependency exactly once plus the
// root exactly once, dependencies before dependents and the root last.
type ResolvedProject struct {
	ID           string
	Root         *blueprint.Blueprint
	Dependencies map[string]*blueprint.Blueprint
	Adjacency    map[string][]string // module -> modules it depends on
	Order        []*blueprint.Blueprint
	Cycles       [][]string
	Dropped      []DroppedReference
}

// Resolver discovers the transitive closure of blueprint references and
// computes the generation order.
type Resolver struct {
	parser   *blueprint.Parser
	logger   *slog.Logger
	semantic SemanticAnalyzer
}

func NewResolver(parser *blueprint.Parser, logger *slog.Logger) *Resolver {
	return &Resolver{parser: parser, logger: logger}
}

// SetSemanticAnalyzer installs an optional analyzer that may add inferred
// edges before the ordering pass.
func (r *Resolver) SetSemanticAnalyzer(analyzer SemanticAnalyzer) {
	r.semantic = analyzer
}

// Resolve parses the root blueprint at rootPath and walks its declared
// references under baseDir. A reference that cannot be resolved or parsed
// is dropped and logged; only a broken root is fatal.
func (r *Resolver) Resolve(rootPath, baseDir string) (*ResolvedProject, error) {
	start := time.Now()

	root, err := r.parser.ParseFile(rootPath)
	if err != nil {
		return nil, err
	}

	project := &ResolvedProject{
		ID:           uuid.NewString(),
		Root:         root,
		Dependencies: make(map[string]*blueprint.Blueprint),
		Adjacency:    make(map[string][]string),
	}

	index := scanBlueprints(baseDir, r.logger)

	type pending struct {
		bp   *blueprint.Blueprint
		path string
	}
	visited := map[string]bool{root.ModuleName: true}
	visitedPaths := map[string]bool{mustAbs(rootPath): true}
	discovered := []*blueprint.Blueprint{}
	queue := []pending{{bp: root, path: rootPath}}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, ref := range curr.bp.References {
			path, ok := r.locate(ref.TargetPath, curr.path, baseDir, index)
			if !ok {
				r.drop(project, curr.bp.ModuleName, ref.TargetPath, "no blueprint file found")
				continue
			}

			abs := mustAbs(path)
			if visitedPaths[abs] {
				// Already parsed via another reference; just record the edge.
				if name, ok := moduleNameAt(project, root, abs); ok {
					addEdge(project, curr.bp.ModuleName, name)
				}
				continue
			}

			dep, err := r.parser.ParseFile(path)
			if err != nil {
				r.drop(project, curr.bp.ModuleName, ref.TargetPath, err.Error())
				continue
			}
			visitedPaths[abs] = true

			if visited[dep.ModuleName] {
				addEdge(project, curr.bp.ModuleName, dep.ModuleName)
				continue
			}
			visited[dep.ModuleName] = true
			project.Dependencies[dep.ModuleName] = dep
			discovered = append(discovered, dep)
			addEdge(project, curr.bp.ModuleName, dep.ModuleName)
			queue = append(queue, pending{bp: dep, path: path})
		}
	}

	if r.semantic != nil {
		r.applySemanticEdges(project)
	}

	project.Order, project.Cycles = topologicalOrder(project, discovered)

	observability.ResolveDuration.Observe(time.Since(start).Seconds())
	observability.GraphNodes.Set(float64(len(project.Dependencies) + 1))
	observability.GraphEdges.Set(float64(edgeCount(project.Adjacency)))

	r.logger.Debug("resolved project",
		"root", root.ModuleName,
		"dependencies", len(project.Dependencies),
		"dropped", len(project.Dropped),
		"cycles", len(project.Cycles))

	return project, nil
}

func (r *Resolver) drop(project *ResolvedProject, from, target, reason string) {
	project.Dropped = append(project.Dropped, DroppedReference{
		From:   from,
		Target: target,
		Reason: reason,
	})
	observability.DroppedReferencesTotal.Inc()
	r.logger.Warn("dropped unresolvable reference",
		"from", from, "target", target, "reason", reason)
}

// locate tries the path candidates, then falls back to the module-name
// index built by scanning the base directory.
func (r *Resolver) locate(target, fromPath, baseDir string, index map[string]string) (string, bool) {
	for _, candidate := range candidatePaths(target, filepath.Dir(fromPath), baseDir) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	if path, ok := index[normalizeModuleName(target)]; ok {
		return path, true
	}
	return "", false
}

func (r *Resolver) applySemanticEdges(project *ResolvedProject) {
	all := make([]*blueprint.Blueprint, 0, len(project.Dependencies)+1)
	all = append(all, project.Root)
	for _, dep := range project.Dependencies {
		all = append(all, dep)
	}
	edges, err := r.semantic.InferEdges(all)
	if err != nil {
		r.logger.Warn("semantic analysis unavailable, using explicit references only", "error", err)
		return
	}
	for _, e := range edges {
		if _, ok := project.Dependencies[e.To]; !ok && e.To != project.Root.ModuleName {
			continue
		}
		addEdge(project, e.From, e.To)
	}
}

func addEdge(project *ResolvedProject, from, to string) {
	if from == to {
		return
	}
	for _, existing := range project.Adjacency[from] {
		if existing == to {
			return
		}
	}
	project.Adjacency[from] = append(project.Adjacency[from], to)
}

func edgeCount(adjacency map[string][]string) int {
	total := 0
	for _, deps := range adjacency {
		total += len(deps)
	}
	return total
}

func moduleNameAt(project *ResolvedProject, root *blueprint.Blueprint, abs string) (string, bool) {
	if mustAbs(root.SourcePath) == abs {
		return root.ModuleName, true
	}
	for name, dep := range project.Dependencies {
		if mustAbs(dep.SourcePath) == abs {
			return name, true
		}
	}
	return "", false
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// skipFiles are documentation files that live beside blueprints but are
// never blueprints themselves.
var skipFiles = map[string]bool{
	"README.md":       true,
	"CLAUDE.md":       true,
	"AGENTS.md":       true,
	"SPEC.md":         true,
	"CHANGELOG.md":    true,
	"CONTRIBUTING.md": true,
}

// scanBlueprints builds a module-name index over *.md files under baseDir.
// Files whose first line is not a module header are skipped silently.
func scanBlueprints(baseDir string, logger *slog.Logger) map[string]string {
	index := make(map[string]string)
	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || skipFiles[d.Name()] {
			return nil
		}
		name, ok := headerModuleName(path)
		if !ok {
			return nil
		}
		if _, exists := index[name]; !exists {
			index[name] = path
		}
		return nil
	})
	if err != nil {
		logger.Debug("blueprint scan incomplete", "dir", baseDir, "error", err)
	}
	return index
}

func headerModuleName(path string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(content)), "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimLeft(line, "#"))
	if name == "" || strings.Contains(name, " ") {
		return "", false
	}
	return name, true
}

func normalizeModuleName(target string) string {
	name := strings.TrimPrefix(target, "@")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, ".")
	name = strings.ReplaceAll(name, "/", ".")
	return strings.Trim(name, ".")
}
