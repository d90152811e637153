package app

import (
	"fmt"
	"os"
	"strings"

	"blueprints/internal/core/errors"
	"blueprints/internal/shared/util"
)

const starterTemplate = `# %s
Describe what this module does in one sentence.

deps:
notes: list implementation hints here
`

// InitBlueprint writes a starter blueprint document named after the
// module. Never overwrites an existing file.
func (a *App) InitBlueprint(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New(errors.CodeValidationError, "module name must not be empty")
	}

	path := strings.ReplaceAll(name, ".", string(os.PathSeparator)) + ".md"
	if _, err := os.Stat(path); err == nil {
		return "", errors.New(errors.CodeConflict, fmt.Sprintf("%s already exists", path))
	}

	if err := util.WriteStringWithDirs(path, fmt.Sprintf(starterTemplate, name), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "write starter blueprint")
	}
	a.logger.Info("created blueprint", "module", name, "path", path)
	return path, nil
}
