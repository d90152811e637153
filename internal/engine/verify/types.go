package verify

import (
	"context"
	"log/slog"
	"time"

	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
	"blueprints/internal/shared/observability"
)

type Kind string

const (
	KindSyntax                Kind = "syntax"
	KindImportUnresolved      Kind = "import-unresolved"
	KindDependencyConformance Kind = "dependency-conformance"
	KindMissingThirdParty     Kind = "missing-third-party-import"
	KindAsyncMisuse           Kind = "async-misuse"
	KindType                  Kind = "type"
	KindRuntimeLoad           Kind = "runtime-load"
)

// Result is the outcome of one verification stage.
type Result struct {
	Success  bool
	Kind     Kind
	Message  string
	Line     int
	Warnings []string
}

// Options configures the verification pipeline for one project.
type Options struct {
	Language           string
	ProjectRoot        string
	DeclaredThirdParty []string
	RuntimeLoad        bool
	RuntimeTimeout     time.Duration
	InterpreterPath    string // overrides the registry interpreter
}

// Verifier runs the fixed stage pipeline against generated source.
// Stages run in order and the pipeline stops at the first failure,
// returning only the results produced so far.
type Verifier struct {
	opts   Options
	lang   *Language
	logger *slog.Logger
}

func NewVerifier(opts Options, logger *slog.Logger) *Verifier {
	if opts.RuntimeTimeout <= 0 {
		opts.RuntimeTimeout = 10 * time.Second
	}
	lang, _ := LookupLanguage(opts.Language)
	return &Verifier{opts: opts, lang: lang, logger: logger}
}

// Verify runs the pipeline for one module's generated source.
func (v *Verifier) Verify(ctx context.Context, source string, bp *blueprint.Blueprint, project *graph.ResolvedProject) []Result {
	stages := []func(context.Context, string, *blueprint.Blueprint, *graph.ResolvedProject) Result{
		v.checkSyntax,
		v.checkImports,
		v.checkConformance,
		v.checkKnownSymbols,
		v.checkAsyncUsage,
		v.checkTypes,
		v.checkRuntimeLoad,
	}

	var results []Result
	for _, stage := range stages {
		res := stage(ctx, source, bp, project)
		results = append(results, res)
		if !res.Success {
			observability.VerificationFailuresTotal.WithLabelValues(string(res.Kind)).Inc()
			v.logger.Debug("verification stage failed",
				"module", bp.ModuleName, "kind", res.Kind, "message", res.Message)
			return results
		}
	}
	return results
}

// Failed reports whether any result in the list is a failure.
func Failed(results []Result) bool {
	for _, res := range results {
		if !res.Success {
			return true
		}
	}
	return false
}
