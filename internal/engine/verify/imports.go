package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// ImportLine is one import statement found in generated source.
type ImportLine struct {
	Module   string
	Items    []blueprint.ImportedItem
	Relative bool
	Line     int
	Raw      string
}

type importClass int

const (
	classStdlib importClass = iota
	classThirdParty
	classLocal
	classUnknown
)

var (
	pythonImportRe     = regexp.MustCompile(`^import\s+(.+)$`)
	pythonFromImportRe = regexp.MustCompile(`^from\s+(\S+)\s+import\s+(.+)$`)
	goImportSingleRe   = regexp.MustCompile(`^import\s+(?:\w+\s+)?"([^"]+)"`)
	goImportLineRe     = regexp.MustCompile(`^(?:\w+\s+)?"([^"]+)"`)
)

// checkImports classifies every imported root symbol and fails on unknown
// or undeclared third-party imports. Relative imports are left for the
// conformance stage.
func (v *Verifier) checkImports(_ context.Context, source string, bp *blueprint.Blueprint, project *graph.ResolvedProject) Result {
	imports, ok := ExtractImports(source, v.opts.Language)
	if !ok {
		return Result{
			Success:  true,
			Kind:     KindImportUnresolved,
			Warnings: []string{fmt.Sprintf("import classification not supported for %q", v.opts.Language)},
		}
	}

	declared := v.declaredThirdParty(bp, project)

	var offenders []string
	for _, imp := range imports {
		if imp.Relative {
			continue
		}
		switch v.classify(imp.Module, declared, project) {
		case classUnknown:
			offenders = append(offenders, fmt.Sprintf("%s (line %d): not stdlib, not declared, not a project module", imp.Module, imp.Line))
		}
	}

	if len(offenders) > 0 {
		return Result{
			Kind:    KindImportUnresolved,
			Message: "unresolvable imports: " + strings.Join(offenders, "; "),
			Line:    firstOffendingLine(imports),
		}
	}
	return Result{Success: true, Kind: KindImportUnresolved}
}

func firstOffendingLine(imports []ImportLine) int {
	if len(imports) > 0 {
		return imports[0].Line
	}
	return 0
}

// declaredThirdParty merges the configured dependency list with the
// external packages the blueprints themselves declare.
func (v *Verifier) declaredThirdParty(bp *blueprint.Blueprint, project *graph.ResolvedProject) map[string]bool {
	declared := make(map[string]bool)
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		declared[name] = true
		declared[strings.ReplaceAll(name, "-", "_")] = true
	}
	for _, dep := range v.opts.DeclaredThirdParty {
		add(dep)
	}
	for _, dep := range bp.ExternalDeps {
		add(dep)
	}
	if project != nil {
		for _, dep := range project.Root.ExternalDeps {
			add(dep)
		}
		for _, other := range project.Dependencies {
			for _, dep := range other.ExternalDeps {
				add(dep)
			}
		}
	}
	return declared
}

func (v *Verifier) classify(module string, declared map[string]bool, project *graph.ResolvedProject) importClass {
	if module == "" {
		return classLocal
	}
	root := strings.ToLower(strings.SplitN(module, ".", 2)[0])

	if v.opts.Language == "go" {
		if strings.Contains(strings.SplitN(module, "/", 2)[0], ".") {
			if declared[root] || declared[strings.ToLower(module)] {
				return classThirdParty
			}
			return classUnknown
		}
		if goStdlib[strings.SplitN(module, "/", 2)[0]] {
			return classStdlib
		}
		return classLocal
	}

	if pythonStdlib[root] {
		return classStdlib
	}
	if declared[root] {
		return classThirdParty
	}
	if v.isProjectModule(module, project) {
		return classLocal
	}
	return classUnknown
}

// isProjectModule reports whether the dotted module path resolves inside
// the project: a resolved blueprint with that name, or a source/blueprint
// file under the project root.
func (v *Verifier) isProjectModule(module string, project *graph.ResolvedProject) bool {
	if project != nil {
		if module == project.Root.ModuleName {
			return true
		}
		if _, ok := project.Dependencies[module]; ok {
			return true
		}
		for name := range project.Dependencies {
			if strings.HasPrefix(name, module+".") || strings.HasPrefix(module, name+".") {
				return true
			}
		}
	}
	if v.opts.ProjectRoot == "" {
		return false
	}
	slashed := filepath.Join(strings.Split(module, ".")...)
	ext := ".py"
	if v.lang != nil {
		ext = v.lang.Extension
	}
	for _, candidate := range []string{
		filepath.Join(v.opts.ProjectRoot, slashed+ext),
		filepath.Join(v.opts.ProjectRoot, slashed, "__init__.py"),
		filepath.Join(v.opts.ProjectRoot, slashed+".md"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// ExtractImports scans source text for import statements. The bool result
// is false when the language has no extractor.
func ExtractImports(source, language string) ([]ImportLine, bool) {
	switch language {
	case "python":
		return extractPythonImports(source), true
	case "go":
		return extractGoImports(source), true
	default:
		return nil, false
	}
}

func extractPythonImports(source string) []ImportLine {
	var imports []ImportLine
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)

		if match := pythonFromImportRe.FindStringSubmatch(line); match != nil {
			module := match[1]
			imp := ImportLine{
				Module:   strings.TrimLeft(module, "."),
				Relative: strings.HasPrefix(module, "."),
				Line:     i + 1,
				Raw:      line,
			}
			for _, item := range strings.Split(strings.Trim(match[2], "()"), ",") {
				item = strings.TrimSpace(item)
				if item == "" {
					continue
				}
				name, alias := splitPythonAlias(item)
				imp.Items = append(imp.Items, blueprint.ImportedItem{Name: name, Alias: alias})
			}
			imports = append(imports, imp)
			continue
		}

		if match := pythonImportRe.FindStringSubmatch(line); match != nil {
			for _, entry := range strings.Split(match[1], ",") {
				entry = strings.TrimSpace(entry)
				if entry == "" {
					continue
				}
				module, _ := splitPythonAlias(entry)
				imports = append(imports, ImportLine{
					Module: module,
					Line:   i + 1,
					Raw:    line,
				})
			}
		}
	}
	return imports
}

func splitPythonAlias(entry string) (string, string) {
	parts := strings.Fields(entry)
	if len(parts) == 3 && parts[1] == "as" {
		return parts[0], parts[2]
	}
	return entry, ""
}

func extractGoImports(source string) []ImportLine {
	var imports []ImportLine
	inBlock := false
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "import ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if match := goImportLineRe.FindStringSubmatch(line); match != nil {
				imports = append(imports, ImportLine{Module: match[1], Line: i + 1, Raw: line})
			}
		default:
			if match := goImportSingleRe.FindStringSubmatch(line); match != nil {
				imports = append(imports, ImportLine{Module: match[1], Line: i + 1, Raw: line})
			}
		}
	}
	return imports
}
