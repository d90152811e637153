package app

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"blueprints/internal/core/errors"
	"blueprints/internal/core/ports"
	"blueprints/internal/shared/util"
)

// DiscoverBlueprints lists the blueprint documents under dir with their
// module names and reference counts, honoring the configured exclude
// globs and skip filenames.
func (a *App) DiscoverBlueprints(dir string) ([]ports.DiscoveredBlueprint, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "discover directory")
	}
	if !info.IsDir() {
		return nil, errors.New(errors.CodeValidationError, "discover target is not a directory")
	}

	excludes := make([]glob.Glob, 0, len(a.cfg.Discover.ExcludeGlobs))
	for _, pattern := range a.cfg.Discover.ExcludeGlobs {
		g, err := glob.Compile(util.NormalizePatternPath(pattern), '/')
		if err != nil {
			a.logger.Warn("invalid exclude glob", "pattern", pattern, "error", err)
			continue
		}
		excludes = append(excludes, g)
	}

	skip := make(map[string]bool, len(a.cfg.Discover.SkipFilenames))
	for _, name := range a.cfg.Discover.SkipFilenames {
		skip[name] = true
	}

	var found []ports.DiscoveredBlueprint
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || skip[d.Name()] {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rel = util.NormalizePatternPath(rel)
		for _, g := range excludes {
			if g.Match(rel) {
				return nil
			}
		}

		bp, parseErr := a.parser.ParseFile(path)
		if parseErr != nil {
			// Plain markdown files live beside blueprints; skip quietly.
			a.logger.Debug("skipping non-blueprint markdown", "path", path)
			return nil
		}
		found = append(found, ports.DiscoveredBlueprint{
			Path:       path,
			ModuleName: bp.ModuleName,
			References: len(bp.References),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "walk discover directory")
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}
