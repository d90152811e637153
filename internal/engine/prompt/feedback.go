package prompt

import (
	"fmt"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/verify"
)

// Feedback renders a regeneration prompt after a failed verification
// attempt. It embeds the previous source, the failures grouped by kind,
// and the exact import statements the module is expected to contain.
func (b *Builder) Feedback(bp *blueprint.Blueprint, previousSource string, results []verify.Result, expectedImports []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "The previously generated %s source for module %s failed verification.\n", b.Language, bp.ModuleName)
	sb.WriteString("Regenerate the complete file, fixing every problem listed below.\n")
	sb.WriteString("Return only the source code in a single fenced code block.\n\n")

	sb.WriteString("# Previous source\n\n```\n")
	sb.WriteString(strings.TrimRight(previousSource, "\n"))
	sb.WriteString("\n```\n\n")

	sb.WriteString("# Verification failures\n\n")
	kinds, grouped := groupByKind(results)
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "## %s\n", kind)
		for _, msg := range grouped[kind] {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
		sb.WriteString("\n")
	}

	if len(expectedImports) > 0 {
		sb.WriteString("# Required import statements\n\n")
		sb.WriteString("The file must contain exactly these project imports:\n\n```\n")
		for _, imp := range expectedImports {
			sb.WriteString(imp + "\n")
		}
		sb.WriteString("```\n\n")
	}

	sb.WriteString("# Module specification\n\n")
	sb.WriteString(strings.TrimSpace(bp.RawText))
	sb.WriteString("\n")

	return sb.String()
}

// groupByKind keeps kinds in first-failure order so the most fundamental
// problem leads the prompt.
func groupByKind(results []verify.Result) ([]verify.Kind, map[verify.Kind][]string) {
	var kinds []verify.Kind
	grouped := make(map[verify.Kind][]string)
	for _, res := range results {
		if res.Success {
			continue
		}
		msg := res.Message
		if res.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", res.Line, msg)
		}
		if _, ok := grouped[res.Kind]; !ok {
			kinds = append(kinds, res.Kind)
		}
		grouped[res.Kind] = append(grouped[res.Kind], msg)
	}
	return kinds, grouped
}
