package blueprint

import (
	"strings"
)

// parseNatural handles the prose shape: titled sections such as
// "Dependencies:" and "Requirements:", with bulleted or comma-separated
// entries underneath. Unknown section titles are kept verbatim so the
// prompt builder can still surface them.
func parseNatural(bp *Blueprint, lines []string, descIdx int) {
	section := ""
	header := ""

	for i := descIdx + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if sectionLine.MatchString(trimmed) {
			colon := strings.Index(trimmed, ":")
			header = strings.TrimSpace(trimmed[:colon])
			section = strings.ToLower(header)
			// Inline entries on the header line itself.
			if rest := strings.TrimSpace(trimmed[colon+1:]); rest != "" {
				addNaturalEntries(bp, section, header, rest)
			}
			continue
		}

		body := trimmed
		if strings.HasPrefix(body, "- ") || strings.HasPrefix(body, "* ") {
			body = strings.TrimSpace(body[2:])
		}
		if body == "" {
			continue
		}

		if section == "" {
			bp.Notes = append(bp.Notes, body)
			continue
		}
		addNaturalEntries(bp, section, header, body)
	}
}

// addNaturalEntries routes one line of section content. Dependency entries
// may be comma-separated; other sections keep the line whole.
func addNaturalEntries(bp *Blueprint, section, header, body string) {
	switch section {
	case "dependencies", "depends on", "imports":
		for _, entry := range splitOutsideBrackets(body) {
			classifyDependency(bp, entry)
		}
	case "requirements":
		bp.Requirements = append(bp.Requirements, body)
	case "notes":
		bp.Notes = append(bp.Notes, body)
	default:
		bp.Sections[header] = append(bp.Sections[header], body)
	}
}

// splitOutsideBrackets splits on commas that are not inside an item list,
// so "@.models.user[User, Role], fastapi" yields two entries.
func splitOutsideBrackets(body string) []string {
	var entries []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				entries = append(entries, body[start:i])
				start = i + 1
			}
		}
	}
	entries = append(entries, body[start:])
	return entries
}
