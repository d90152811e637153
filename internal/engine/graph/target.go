package graph

import (
	"strings"

	"blueprints/internal/engine/blueprint"
)

// ModuleForTarget maps a reference target path, as written in a blueprint,
// to the resolved blueprint it points at. Relative targets do not carry
// the module name, so they fall back to suffix matching on the
// slash-converted form.
func (p *ResolvedProject) ModuleForTarget(target string) (*blueprint.Blueprint, bool) {
	name := normalizeModuleName(target)
	if name == "" {
		return nil, false
	}
	if name == p.Root.ModuleName {
		return p.Root, true
	}
	if dep, ok := p.Dependencies[name]; ok {
		return dep, true
	}
	for moduleName, dep := range p.Dependencies {
		if strings.HasSuffix(moduleName, "."+name) || strings.HasSuffix(name, "."+moduleName) {
			return dep, true
		}
	}
	return nil, false
}
