package graph

import (
	"path/filepath"
	"strings"
)

// candidatePaths expands one written reference target into the file paths
// to try, in order. A leading "@" marks a blueprint reference and is
// stripped; "./" and "../" resolve against the referencing blueprint's own
// directory; dotted module paths are also tried in slash form under both
// the referencing directory and the project base directory.
func candidatePaths(target, fromDir, baseDir string) []string {
	target = strings.TrimSpace(strings.TrimPrefix(target, "@"))
	if target == "" {
		return nil
	}

	var candidates []string
	add := func(dir, rel string) {
		candidates = append(candidates, expandForms(filepath.Join(dir, rel))...)
	}

	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		add(fromDir, target)
		return candidates
	}

	// ".models.user" and "models.user" are the same module path.
	slashed := strings.ReplaceAll(strings.TrimPrefix(target, "."), ".", string(filepath.Separator))

	// A literal file named after the dotted form takes precedence.
	candidates = append(candidates, filepath.Join(fromDir, target+".md"))
	add(fromDir, slashed)
	if baseDir != fromDir {
		candidates = append(candidates, filepath.Join(baseDir, target+".md"))
		add(baseDir, slashed)
	}
	return candidates
}

// expandForms yields "<path>.md" then "<path>/<base>.md" for one slashed
// module path.
func expandForms(path string) []string {
	path = filepath.Clean(path)
	return []string{
		path + ".md",
		filepath.Join(path, filepath.Base(path)+".md"),
	}
}
