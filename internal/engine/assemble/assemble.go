package assemble

import (
	"fmt"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// Fragment is one unit of generation context handed to the oracle ahead
// of the module's own specification.
type Fragment struct {
	Module   string
	Kind     FragmentKind
	Text     string
	Language string // set for artifact fragments
}

type FragmentKind int

const (
	KindDirective FragmentKind = iota
	KindSpec
	KindArtifact
)

// Assembler builds ordered context for one module from its resolved
// dependencies and the artifacts generated so far.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble returns the context fragments for bp, in the order its
// references were declared. Each direct reference contributes the
// referenced blueprint's specification text and, when already generated,
// its artifact text. A blueprint with no references gets a single
// directive fragment.
func (a *Assembler) Assemble(bp *blueprint.Blueprint, project *graph.ResolvedProject, artifacts map[string]string) []Fragment {
	if len(bp.References) == 0 {
		return []Fragment{{
			Module: bp.ModuleName,
			Kind:   KindDirective,
			Text:   "Generate this module as a self-contained unit with no project-internal imports.",
		}}
	}

	var fragments []Fragment
	seen := make(map[string]bool)

	for _, ref := range bp.References {
		dep, ok := project.ModuleForTarget(ref.TargetPath)
		if !ok || seen[dep.ModuleName] {
			continue
		}
		seen[dep.ModuleName] = true

		fragments = append(fragments, Fragment{
			Module: dep.ModuleName,
			Kind:   KindSpec,
			Text:   dep.RawText,
		})
		if source, ok := artifacts[dep.ModuleName]; ok {
			fragments = append(fragments, Fragment{
				Module: dep.ModuleName,
				Kind:   KindArtifact,
				Text:   source,
			})
		}
	}

	if len(fragments) == 0 {
		// Every reference was dropped during resolution.
		fragments = append(fragments, Fragment{
			Module: bp.ModuleName,
			Kind:   KindDirective,
			Text:   "Generate this module as a self-contained unit with no project-internal imports.",
		})
	}
	return fragments
}

// Render flattens fragments into one prompt-ready block with per-fragment
// headers.
func Render(fragments []Fragment) string {
	var b strings.Builder
	for _, frag := range fragments {
		switch frag.Kind {
		case KindDirective:
			fmt.Fprintf(&b, "%s\n\n", frag.Text)
		case KindSpec:
			fmt.Fprintf(&b, "## Dependency specification: %s\n\n%s\n\n", frag.Module, frag.Text)
		case KindArtifact:
			fmt.Fprintf(&b, "## Generated source for %s\n\n```\n%s\n```\n\n", frag.Module, frag.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
