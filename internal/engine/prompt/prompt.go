package prompt

import (
	"fmt"
	"sort"
	"strings"

	"blueprints/internal/engine/assemble"
	"blueprints/internal/engine/blueprint"
)

// Builder renders oracle prompts from assembled context and blueprint
// records. Wording is deliberately plain; the contract is about what the
// prompt contains, not how it reads.
type Builder struct {
	Language string
}

func NewBuilder(language string) *Builder {
	return &Builder{Language: language}
}

// Generation renders the first-attempt prompt for one module.
func (b *Builder) Generation(bp *blueprint.Blueprint, fragments []assemble.Fragment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate a complete %s source file for the module specified below.\n", b.Language)
	sb.WriteString("Return only the source code in a single fenced code block.\n")
	sb.WriteString("Import project-internal modules with absolute module paths, never relative imports.\n\n")

	if context := assemble.Render(fragments); strings.TrimSpace(context) != "" {
		sb.WriteString("# Context\n\n")
		sb.WriteString(context)
		sb.WriteString("\n")
	}

	sb.WriteString("# Module specification\n\n")
	sb.WriteString(strings.TrimSpace(bp.RawText))
	sb.WriteString("\n")

	if len(bp.Requirements) > 0 {
		sb.WriteString("\n# Requirements\n\n")
		for _, req := range bp.Requirements {
			fmt.Fprintf(&sb, "- %s\n", req)
		}
	}
	for _, title := range sortedSectionTitles(bp) {
		fmt.Fprintf(&sb, "\n# %s\n\n", title)
		for _, line := range bp.Sections[title] {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}
	if len(bp.Notes) > 0 {
		sb.WriteString("\n# Implementation notes\n\n")
		for _, note := range bp.Notes {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
	}

	return sb.String()
}

func sortedSectionTitles(bp *blueprint.Blueprint) []string {
	titles := make([]string, 0, len(bp.Sections))
	for title := range bp.Sections {
		titles = append(titles, title)
	}
	// Keep the prompt stable across runs.
	sort.Strings(titles)
	return titles
}
