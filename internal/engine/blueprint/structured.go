package blueprint

import (
	"strings"
)

// parseStructured handles the compact shape: a deps: line, notes: lines,
// class blocks with bullet method signatures, standalone function
// signatures, constants, and type aliases.
func parseStructured(bp *Blueprint, lines []string, descIdx int) {
	var currentClass *Component
	var pendingDecorators []string

	flushClass := func() {
		if currentClass != nil {
			bp.Components = append(bp.Components, *currentClass)
			currentClass = nil
		}
	}

	for i := descIdx + 1; i < len(lines); i++ {
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "deps:"):
			flushClass()
			for _, entry := range strings.Split(trimmed[len("deps:"):], ";") {
				classifyDependency(bp, entry)
			}

		case strings.HasPrefix(trimmed, "notes:"):
			flushClass()
			if note := strings.TrimSpace(trimmed[len("notes:"):]); note != "" {
				bp.Notes = append(bp.Notes, note)
			}

		case strings.HasPrefix(trimmed, "@"):
			// Decorator line preceding a signature.
			pendingDecorators = append(pendingDecorators, strings.TrimPrefix(trimmed, "@"))

		case strings.HasPrefix(trimmed, "- "):
			// Method signature inside the current class block.
			body := strings.TrimSpace(trimmed[2:])
			method, ok := parseMethodSignature(body, pendingDecorators)
			pendingDecorators = nil
			if !ok {
				bp.Warnings = append(bp.Warnings, "unparseable method signature: "+body)
				continue
			}
			if currentClass == nil {
				bp.Warnings = append(bp.Warnings, "method signature outside class block: "+body)
				continue
			}
			currentClass.Methods = append(currentClass.Methods, method)

		case strings.HasPrefix(trimmed, "type "):
			flushClass()
			if comp, ok := parseTypeAlias(trimmed); ok {
				bp.Components = append(bp.Components, comp)
			} else {
				bp.Warnings = append(bp.Warnings, "unparseable type alias: "+trimmed)
			}

		case isClassHeader(trimmed):
			flushClass()
			comp := parseClassHeader(trimmed)
			currentClass = &comp

		case strings.Contains(trimmed, "(") && signatureLine.MatchString(trimmed):
			flushClass()
			method, ok := parseMethodSignature(trimmed, pendingDecorators)
			pendingDecorators = nil
			if !ok {
				bp.Warnings = append(bp.Warnings, "unparseable function signature: "+trimmed)
				continue
			}
			bp.Components = append(bp.Components, Component{
				Kind:    KindFunction,
				Name:    method.Name,
				Methods: []Method{method},
			})

		case constantLine.MatchString(trimmed) && (strings.Contains(trimmed, ":") || strings.Contains(trimmed, "=")):
			flushClass()
			if comp, ok := parseConstant(trimmed); ok {
				bp.Components = append(bp.Components, comp)
			} else {
				bp.Warnings = append(bp.Warnings, "unparseable constant: "+trimmed)
			}

		default:
			// Free text between blocks: treat as a note so intent survives.
			if currentClass == nil {
				bp.Notes = append(bp.Notes, trimmed)
			}
		}
	}
	flushClass()
}

// isClassHeader matches "Name:" and "Name(Base):" block openers.
func isClassHeader(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	head := strings.TrimSuffix(line, ":")
	if idx := strings.Index(head, "("); idx >= 0 {
		if !strings.HasSuffix(head, ")") {
			return false
		}
		head = head[:idx]
	}
	if head == "" || !isUpper(head[0]) {
		return false
	}
	for i := 0; i < len(head); i++ {
		c := head[i]
		if !isAlnum(c) && c != '_' {
			return false
		}
	}
	// All-caps names are constants, not classes.
	return head != strings.ToUpper(head) || len(head) == 1
}

func parseClassHeader(line string) Component {
	head := strings.TrimSuffix(line, ":")
	comp := Component{Kind: KindClass}
	if idx := strings.Index(head, "("); idx >= 0 {
		comp.Name = strings.TrimSpace(head[:idx])
		comp.Base = strings.TrimSpace(strings.TrimSuffix(head[idx+1:], ")"))
	} else {
		comp.Name = strings.TrimSpace(head)
	}
	return comp
}

// parseMethodSignature parses "name(params) -> return" with an optional
// async prefix and trailing comment.
func parseMethodSignature(line string, decorators []string) (Method, bool) {
	method := Method{Decorators: decorators}

	if comment := strings.Index(line, "  #"); comment >= 0 {
		line = strings.TrimSpace(line[:comment])
	}
	if strings.HasPrefix(line, "async ") {
		method.Async = true
		line = strings.TrimSpace(line[len("async "):])
	}

	open := strings.Index(line, "(")
	if open <= 0 {
		return Method{}, false
	}
	closeIdx := strings.LastIndex(line, ")")
	if closeIdx < open {
		return Method{}, false
	}

	method.Name = strings.TrimSpace(line[:open])
	method.Params = strings.TrimSpace(line[open+1 : closeIdx])

	rest := strings.TrimSpace(line[closeIdx+1:])
	if strings.HasPrefix(rest, "->") {
		method.Return = strings.TrimSpace(strings.TrimPrefix(rest, "->"))
	}
	return method, true
}

// parseConstant parses "NAME: type = value" with type and value optional.
func parseConstant(line string) (Component, bool) {
	comp := Component{Kind: KindConstant}

	if eq := strings.Index(line, "="); eq >= 0 {
		comp.Value = strings.TrimSpace(line[eq+1:])
		line = strings.TrimSpace(line[:eq])
	}
	if colon := strings.Index(line, ":"); colon >= 0 {
		comp.Type = strings.TrimSpace(line[colon+1:])
		line = strings.TrimSpace(line[:colon])
	}
	if line == "" || line != strings.ToUpper(line) {
		return Component{}, false
	}
	comp.Name = line
	return comp, true
}

// parseTypeAlias parses "type Name = definition".
func parseTypeAlias(line string) (Component, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "type "))
	eq := strings.Index(body, "=")
	if eq <= 0 {
		return Component{}, false
	}
	name := strings.TrimSpace(body[:eq])
	value := strings.TrimSpace(body[eq+1:])
	if name == "" || value == "" {
		return Component{}, false
	}
	return Component{Kind: KindTypeAlias, Name: name, Value: value}, true
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
