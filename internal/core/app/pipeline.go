package app

import (
	"context"
	"time"

	"blueprints/internal/core/errors"
	"blueprints/internal/core/ports"
	"blueprints/internal/data/history"
	"blueprints/internal/engine/graph"
	"blueprints/internal/engine/verify"
	"blueprints/internal/shared/observability"
)

// ValidateBlueprint parses one document and reports what it declares.
func (a *App) ValidateBlueprint(path string) (ports.ValidateResult, error) {
	bp, err := a.parser.ParseFile(path)
	if err != nil {
		return ports.ValidateResult{}, err
	}
	return ports.ValidateResult{
		ModuleName:  bp.ModuleName,
		Description: bp.Description,
		References:  len(bp.References),
		Components:  len(bp.Components),
		Warnings:    bp.Warnings,
	}, nil
}

// GenerateModule generates only the root module, with its dependencies'
// specifications as context but without generating them.
func (a *App) GenerateModule(ctx context.Context, path string) (ports.GenerateResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "GenerateModule")
	defer span.End()

	project, err := a.resolver.Resolve(path, a.baseDir(path))
	if err != nil {
		return ports.GenerateResult{}, err
	}

	controller := a.controllerFor(a.baseDir(path))
	fragments := a.assembler.Assemble(project.Root, project, nil)

	outcome, err := controller.Generate(ctx, project.Root, project, fragments)
	if err != nil {
		return ports.GenerateResult{}, errors.AddContext(err, errors.CtxModule, project.Root.ModuleName)
	}

	module := ports.ModuleOutcome{
		ModuleName: project.Root.ModuleName,
		Path:       project.Root.SourcePath,
		Source:     outcome.Source,
		Attempts:   outcome.Attempts,
		Flagged:    verify.Failed(outcome.Results),
		Results:    outcome.Results,
	}

	if _, err := a.emitter().WriteArtifact(project.Root, outcome.Source); err != nil {
		return ports.GenerateResult{Module: module}, err
	}

	return ports.GenerateResult{
		RunID:   project.ID,
		Module:  module,
		Dropped: len(project.Dropped),
	}, nil
}

// GenerateProject runs the full pipeline: every module in generation
// order, artifacts fed forward as context. The run aborts only when a
// module yields no source at all; verification failures after budget
// exhaustion flag the module but generation continues.
func (a *App) GenerateProject(ctx context.Context, path string) (ports.ProjectResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "GenerateProject")
	defer span.End()

	start := time.Now()

	project, err := a.resolver.Resolve(path, a.baseDir(path))
	if err != nil {
		return ports.ProjectResult{}, err
	}
	if len(project.Cycles) > 0 {
		a.logger.Warn("reference cycles detected, order is best-effort",
			"root", project.Root.ModuleName, "cycles", project.Cycles)
	}

	projectRoot := a.baseDir(path)
	controller := a.controllerFor(projectRoot)
	emitter := a.emitter()

	result := ports.ProjectResult{
		RunID:   project.ID,
		Root:    project.Root.ModuleName,
		Dropped: len(project.Dropped),
		Cycles:  project.Cycles,
	}

	artifacts := make(map[string]string)
	var artifactPaths []string

	for i, bp := range project.Order {
		if ctx.Err() != nil {
			return result, errors.Wrap(ctx.Err(), errors.CodeInternal, "generation cancelled")
		}
		result.Order = append(result.Order, bp.ModuleName)
		a.notifyProgress(ProgressEvent{Module: bp.ModuleName, Index: i + 1, Total: len(project.Order)})

		fragments := a.assembler.Assemble(bp, project, artifacts)
		outcome, err := controller.Generate(ctx, bp, project, fragments)
		if err != nil {
			// No source at all: the module blocks its dependents.
			a.saveRun(project, result, start)
			return result, errors.AddContext(err, errors.CtxModule, bp.ModuleName)
		}

		module := ports.ModuleOutcome{
			ModuleName: bp.ModuleName,
			Path:       bp.SourcePath,
			Source:     outcome.Source,
			Attempts:   outcome.Attempts,
			Flagged:    verify.Failed(outcome.Results),
			Results:    outcome.Results,
		}
		result.Modules = append(result.Modules, module)
		artifacts[bp.ModuleName] = outcome.Source
		a.notifyProgress(ProgressEvent{
			Module:   bp.ModuleName,
			Index:    i + 1,
			Total:    len(project.Order),
			Done:     true,
			Flagged:  module.Flagged,
			Attempts: module.Attempts,
		})

		written, err := emitter.WriteArtifact(bp, outcome.Source)
		if err != nil {
			return result, err
		}
		result.Written = append(result.Written, written)
		artifactPaths = append(artifactPaths, written)
	}

	if a.cfg.Generate.PackageMarkers {
		markers, err := emitter.WritePackageMarkers(artifactPaths, projectRoot)
		if err != nil {
			a.logger.Warn("package markers incomplete", "error", err)
		}
		result.Written = append(result.Written, markers...)
	}
	if a.cfg.Generate.Makefile {
		makefile, err := emitter.WriteMakefile(project.Root, collectExternalDeps(project), projectRoot)
		if err != nil {
			a.logger.Warn("makefile not written", "error", err)
		} else {
			result.Written = append(result.Written, makefile)
		}
	}

	result.Duration = time.Since(start)
	a.saveRun(project, result, start)
	return result, nil
}

func collectExternalDeps(project *graph.ResolvedProject) []string {
	deps := append([]string{}, project.Root.ExternalDeps...)
	for _, bp := range project.Order {
		deps = append(deps, bp.ExternalDeps...)
	}
	return deps
}

func (a *App) saveRun(project *graph.ResolvedProject, result ports.ProjectResult, start time.Time) {
	if a.history == nil {
		return
	}
	run := history.Run{
		RunID:          project.ID,
		ProjectKey:     project.Root.ModuleName,
		RootModule:     project.Root.ModuleName,
		Language:       a.cfg.Generate.Language,
		ModuleCount:    len(project.Order),
		GeneratedCount: len(result.Modules),
		FlaggedCount:   len(result.Flagged()),
		DroppedCount:   result.Dropped,
		CycleCount:     len(project.Cycles),
		AttemptsTotal:  result.AttemptsTotal(),
		Duration:       time.Since(start),
	}
	if err := a.history.SaveRun(run); err != nil {
		a.logger.Warn("run not recorded", "error", err)
	}
}

// GenerateProjects generates several independent roots concurrently.
// Each root gets its own goroutine; nothing mutable is shared between
// them beyond the read-only filesystem.
func (a *App) GenerateProjects(ctx context.Context, paths []string) map[string]ProjectOutcome {
	type keyed struct {
		path    string
		outcome ProjectOutcome
	}

	ch := make(chan keyed, len(paths))
	for _, path := range paths {
		go func(p string) {
			result, err := a.GenerateProject(ctx, p)
			ch <- keyed{path: p, outcome: ProjectOutcome{Result: result, Err: err}}
		}(path)
	}

	outcomes := make(map[string]ProjectOutcome, len(paths))
	for range paths {
		k := <-ch
		outcomes[k.path] = k.outcome
	}
	return outcomes
}

// ProjectOutcome pairs a project result with its terminal error, for
// multi-root runs.
type ProjectOutcome struct {
	Result ports.ProjectResult
	Err    error
}
