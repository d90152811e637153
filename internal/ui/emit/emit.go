package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"blueprints/internal/core/errors"
	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/verify"
	"blueprints/internal/shared/util"
)

// Emitter writes generated artifacts beside their blueprint documents.
type Emitter struct {
	language string
	force    bool
	logger   *slog.Logger
}

func NewEmitter(language string, force bool, logger *slog.Logger) *Emitter {
	return &Emitter{language: language, force: force, logger: logger}
}

// ArtifactPath returns where the source file for a blueprint goes: next
// to the document, same base name, language extension.
func (e *Emitter) ArtifactPath(bp *blueprint.Blueprint) string {
	ext := ".py"
	if lang, ok := verify.LookupLanguage(e.language); ok {
		ext = lang.Extension
	}
	base := strings.TrimSuffix(bp.SourcePath, filepath.Ext(bp.SourcePath))
	return base + ext
}

// WriteArtifact writes one module's source file. An existing file is only
// replaced when force is set.
func (e *Emitter) WriteArtifact(bp *blueprint.Blueprint, source string) (string, error) {
	path := e.ArtifactPath(bp)

	if !e.force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New(errors.CodeConflict,
				fmt.Sprintf("artifact %s exists, use force to overwrite", path))
		}
	}

	if err := util.WriteStringWithDirs(path, source, 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "write artifact")
	}
	e.logger.Debug("wrote artifact", "module", bp.ModuleName, "path", path)
	return path, nil
}

// WritePackageMarkers creates __init__.py files in every directory that
// received a python artifact, so the generated tree imports as packages.
func (e *Emitter) WritePackageMarkers(artifactPaths []string, projectRoot string) ([]string, error) {
	if e.language != "python" {
		return nil, nil
	}

	rootAbs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resolve project root")
	}

	var written []string
	seen := make(map[string]bool)
	for _, artifact := range artifactPaths {
		dir, err := filepath.Abs(filepath.Dir(artifact))
		if err != nil {
			continue
		}
		// Mark every package directory up to the project root.
		for strings.HasPrefix(dir, rootAbs) && dir != rootAbs {
			if !seen[dir] {
				seen[dir] = true
				marker := filepath.Join(dir, "__init__.py")
				if _, err := os.Stat(marker); os.IsNotExist(err) {
					if err := util.WriteStringWithDirs(marker, "", 0o644); err != nil {
						return written, errors.Wrap(err, errors.CodeInternal, "write package marker")
					}
					written = append(written, marker)
				}
			}
			dir = filepath.Dir(dir)
		}
	}
	return written, nil
}
