package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blueprints/internal/core/errors"
	"blueprints/internal/engine/blueprint"
	"blueprints/internal/shared/util"
)

// WriteMakefile derives a build file from the root project descriptor:
// install from the declared external dependencies, run from the root
// artifact, plus test and clean targets. Never overwrites without force.
func (e *Emitter) WriteMakefile(root *blueprint.Blueprint, externalDeps []string, projectRoot string) (string, error) {
	path := filepath.Join(projectRoot, "Makefile")
	if !e.force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New(errors.CodeConflict,
				fmt.Sprintf("%s exists, use force to overwrite", path))
		}
	}

	rootArtifact, err := filepath.Rel(projectRoot, e.ArtifactPath(root))
	if err != nil {
		rootArtifact = filepath.Base(e.ArtifactPath(root))
	}

	var b strings.Builder
	b.WriteString(".PHONY: install run test clean\n\n")

	b.WriteString("install:\n")
	if len(externalDeps) > 0 && e.language == "python" {
		fmt.Fprintf(&b, "\tpip install %s\n", strings.Join(dedupe(externalDeps), " "))
	} else {
		b.WriteString("\t@echo nothing to install\n")
	}
	b.WriteString("\n")

	b.WriteString("run:\n")
	switch e.language {
	case "python":
		fmt.Fprintf(&b, "\tpython3 %s\n", rootArtifact)
	case "go":
		fmt.Fprintf(&b, "\tgo run %s\n", rootArtifact)
	default:
		fmt.Fprintf(&b, "\t@echo run %s manually\n", rootArtifact)
	}
	b.WriteString("\n")

	b.WriteString("test:\n")
	if e.language == "python" {
		b.WriteString("\tpython3 -m pytest\n")
	} else {
		b.WriteString("\t@echo no test runner configured\n")
	}
	b.WriteString("\n")

	b.WriteString("clean:\n")
	b.WriteString("\tfind . -name '__pycache__' -type d -exec rm -rf {} +\n")

	if err := util.WriteStringWithDirs(path, b.String(), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "write makefile")
	}
	return path, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
