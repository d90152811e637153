package blueprint

import (
	"os"
	"regexp"
	"strings"

	"blueprints/internal/core/errors"
)

// Parser turns raw blueprint text into a normalized Blueprint. Documents come
// in two shapes: a structured one with deps:/notes:/signature lines, and a
// natural-language one with titled sections. Both normalize into the same
// record; nothing past this package sees the shape distinction.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

var (
	signatureLine = regexp.MustCompile(`^(async\s+)?\w+\(.*\)(\s*->\s*\S.*)?$`)
	constantLine  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*\s*(:\s*\S+)?\s*(=\s*\S.*)?$`)
	sectionLine   = regexp.MustCompile(`^[A-Z][A-Za-z\s]+:`)
)

// ParseFile reads and parses one blueprint document.
func (p *Parser) ParseFile(path string) (*Blueprint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "read blueprint")
	}
	bp, err := p.Parse(string(content))
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	bp.SourcePath = path
	return bp, nil
}

// Parse parses blueprint content, auto-detecting the document shape.
// The only fatal condition is a missing "# module.name" header; unparseable
// fragments inside the body are dropped with a warning instead.
func (p *Parser) Parse(content string) (*Blueprint, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "#") {
		return nil, errors.New(errors.CodeParseError, "blueprint must start with # module.name")
	}

	moduleName := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[0]), "#"))
	if moduleName == "" {
		return nil, errors.New(errors.CodeParseError, "blueprint header has no module name")
	}

	bp := &Blueprint{
		ModuleName: moduleName,
		Sections:   make(map[string][]string),
		RawText:    content,
	}

	// Description: first non-empty, non-header line after the module name.
	descIdx := len(lines)
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasPrefix(line, "#") {
			bp.Description = line
			descIdx = i
			break
		}
	}

	if isStructured(lines) {
		parseStructured(bp, lines, descIdx)
	} else {
		parseNatural(bp, lines, descIdx)
	}

	return bp, nil
}

// isStructured looks for structured-shape indicators in the leading lines.
func isStructured(lines []string) bool {
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "deps:"),
			strings.HasPrefix(trimmed, "notes:"):
			return true
		case strings.HasPrefix(trimmed, "- ") && strings.Contains(trimmed, "("):
			// Method signature bullet inside a class block.
			return true
		case signatureLine.MatchString(trimmed) && strings.Contains(trimmed, "("):
			return true
		}
	}
	return false
}

// classifyDependency appends one dependency entry to the blueprint, deciding
// whether it is a blueprint reference or an external package name.
func classifyDependency(bp *Blueprint, entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}
	if isReferencePath(entry) {
		target, items, warn := splitReferenceItems(entry)
		if warn != "" {
			bp.Warnings = append(bp.Warnings, warn)
		}
		bp.References = append(bp.References, Reference{TargetPath: target, Items: items})
		return
	}
	// External package; strip an item list if one was written anyway.
	if idx := strings.Index(entry, "["); idx >= 0 {
		entry = strings.TrimSpace(entry[:idx])
	}
	bp.ExternalDeps = append(bp.ExternalDeps, entry)
}

func isReferencePath(entry string) bool {
	return strings.HasPrefix(entry, "@") ||
		strings.HasPrefix(entry, "./") ||
		strings.HasPrefix(entry, "../")
}

// splitReferenceItems splits "path[Item, Other as Alias]" into target and
// imported items. A malformed bracket list degrades to a plain reference.
func splitReferenceItems(entry string) (string, []ImportedItem, string) {
	open := strings.Index(entry, "[")
	if open < 0 {
		return entry, nil, ""
	}
	closeIdx := strings.LastIndex(entry, "]")
	if closeIdx < open {
		return strings.TrimSpace(entry[:open]), nil,
			"unterminated item list in reference: " + entry
	}

	target := strings.TrimSpace(entry[:open])
	var items []ImportedItem
	for _, raw := range strings.Split(entry[open+1:closeIdx], ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if name, alias, ok := splitAlias(raw); ok {
			items = append(items, ImportedItem{Name: name, Alias: alias})
		} else {
			items = append(items, ImportedItem{Name: raw})
		}
	}
	return target, items, ""
}

func splitAlias(raw string) (string, string, bool) {
	parts := strings.Fields(raw)
	if len(parts) == 3 && parts[1] == "as" {
		return parts[0], parts[2], true
	}
	return raw, "", false
}
