package verify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
)

// checkRuntimeLoad loads the generated module in an isolated subprocess
// with a hard timeout. Generated code never runs inside this process.
// The stage is skipped with a warning when disabled or when no
// interpreter is available for the language.
func (v *Verifier) checkRuntimeLoad(ctx context.Context, source string, bp *blueprint.Blueprint, _ *graph.ResolvedProject) Result {
	if !v.opts.RuntimeLoad {
		return Result{
			Success:  true,
			Kind:     KindRuntimeLoad,
			Warnings: []string{"runtime load check disabled"},
		}
	}

	argv := v.interpreterArgv()
	if len(argv) == 0 {
		return Result{
			Success:  true,
			Kind:     KindRuntimeLoad,
			Warnings: []string{fmt.Sprintf("no interpreter for %q, runtime load check skipped", v.opts.Language)},
		}
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return Result{
			Success:  true,
			Kind:     KindRuntimeLoad,
			Warnings: []string{fmt.Sprintf("interpreter %q not found, runtime load check skipped", argv[0])},
		}
	}

	scratch, err := os.MkdirTemp("", "loadcheck-*")
	if err != nil {
		return Result{
			Success:  true,
			Kind:     KindRuntimeLoad,
			Warnings: []string{"scratch dir unavailable, runtime load check skipped: " + err.Error()},
		}
	}
	defer os.RemoveAll(scratch)

	ext := ".py"
	if v.lang != nil {
		ext = v.lang.Extension
	}
	file := filepath.Join(scratch, moduleFileName(bp.ModuleName)+ext)
	if err := os.WriteFile(file, []byte(source), 0o644); err != nil {
		return Result{
			Success:  true,
			Kind:     KindRuntimeLoad,
			Warnings: []string{"could not stage module for load check: " + err.Error()},
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, v.opts.RuntimeTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], append(argv[1:], file)...)
	cmd.Dir = scratch
	if v.opts.Language == "python" && v.opts.ProjectRoot != "" {
		// Let the module import already-emitted project artifacts.
		cmd.Env = append(os.Environ(), "PYTHONPATH="+v.opts.ProjectRoot)
	}

	output, err := cmd.CombinedOutput()
	if runCtx.Err() == context.DeadlineExceeded {
		return Result{
			Kind:    KindRuntimeLoad,
			Message: fmt.Sprintf("module did not load within %s", v.opts.RuntimeTimeout),
		}
	}
	if err != nil {
		return Result{
			Kind:    KindRuntimeLoad,
			Message: fmt.Sprintf("module failed to load: %s", firstLines(string(output), 5)),
		}
	}
	return Result{Success: true, Kind: KindRuntimeLoad}
}

func (v *Verifier) interpreterArgv() []string {
	if v.opts.InterpreterPath != "" {
		return strings.Fields(v.opts.InterpreterPath)
	}
	if v.lang != nil {
		return v.lang.Interpreter
	}
	return nil
}

func moduleFileName(moduleName string) string {
	parts := strings.Split(moduleName, ".")
	return parts[len(parts)-1]
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, " | ")
}
