package verify

import (
	"context"
	"fmt"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// ExpectedImports derives the exact import statements the generated
// source must contain for the blueprint's declared references, in
// declaration order. References that did not resolve are skipped.
func ExpectedImports(bp *blueprint.Blueprint, project *graph.ResolvedProject, language string) []string {
	var expected []string
	for _, ref := range bp.References {
		dep, ok := project.ModuleForTarget(ref.TargetPath)
		if !ok {
			continue
		}
		expected = append(expected, expectedStatement(dep.ModuleName, ref.Items, language))
	}
	return expected
}

func expectedStatement(module string, items []blueprint.ImportedItem, language string) string {
	if language != "python" {
		return fmt.Sprintf("import %q", strings.ReplaceAll(module, ".", "/"))
	}
	if len(items) == 0 {
		return "import " + module
	}
	rendered := make([]string, len(items))
	for i, item := range items {
		if item.Alias != "" {
			rendered[i] = item.Name + " as " + item.Alias
		} else {
			rendered[i] = item.Name
		}
	}
	return fmt.Sprintf("from %s import %s", module, strings.Join(rendered, ", "))
}

// checkConformance verifies that every declared reference appears in the
// source as an absolute import of the resolved module path with the
// declared symbols and aliases. Any relative import fails the stage.
func (v *Verifier) checkConformance(_ context.Context, source string, bp *blueprint.Blueprint, project *graph.ResolvedProject) Result {
	imports, ok := ExtractImports(source, v.opts.Language)
	if !ok {
		return Result{
			Success:  true,
			Kind:     KindDependencyConformance,
			Warnings: []string{fmt.Sprintf("conformance check not supported for %q", v.opts.Language)},
		}
	}

	for _, imp := range imports {
		if imp.Relative {
			return Result{
				Kind:    KindDependencyConformance,
				Message: fmt.Sprintf("relative import %q: project imports must use absolute module paths", imp.Raw),
				Line:    imp.Line,
			}
		}
	}

	var problems []string
	for _, ref := range bp.References {
		dep, ok := project.ModuleForTarget(ref.TargetPath)
		if !ok {
			continue
		}
		if msg := v.findConformingImport(imports, dep.ModuleName, ref.Items); msg != "" {
			problems = append(problems, msg)
		}
	}

	if len(problems) > 0 {
		return Result{
			Kind:    KindDependencyConformance,
			Message: strings.Join(problems, "; "),
		}
	}
	return Result{Success: true, Kind: KindDependencyConformance}
}

// findConformingImport returns an empty string when the import list
// satisfies one declared reference, or a description of what is missing.
func (v *Verifier) findConformingImport(imports []ImportLine, module string, items []blueprint.ImportedItem) string {
	if v.opts.Language != "python" {
		path := strings.ReplaceAll(module, ".", "/")
		for _, imp := range imports {
			if imp.Module == path || strings.HasSuffix(imp.Module, "/"+path) {
				return ""
			}
		}
		return fmt.Sprintf("missing import of %q", path)
	}

	if len(items) == 0 {
		for _, imp := range imports {
			if imp.Module == module {
				return ""
			}
		}
		return fmt.Sprintf("missing import of module %s", module)
	}

	available := make(map[string]string) // item name -> alias
	found := false
	for _, imp := range imports {
		if imp.Module != module {
			continue
		}
		found = true
		for _, item := range imp.Items {
			available[item.Name] = item.Alias
		}
	}
	if !found {
		return fmt.Sprintf("missing import from module %s", module)
	}

	var missing []string
	for _, item := range items {
		alias, ok := available[item.Name]
		switch {
		case !ok:
			missing = append(missing, item.Name)
		case item.Alias != "" && alias != item.Alias:
			missing = append(missing, fmt.Sprintf("%s as %s", item.Name, item.Alias))
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("module %s is missing imported symbols: %s", module, strings.Join(missing, ", "))
	}
	return ""
}
