package app

import (
	"log/slog"
	"path/filepath"

	"blueprints/internal/core/config"
	"blueprints/internal/data/history"
	"blueprints/internal/data/insight"
	"blueprints/internal/engine/assemble"
	"blueprints/internal/engine/blueprint"
	"blueprints/internal/engine/graph"
	"blueprints/internal/engine/oracle"
	"blueprints/internal/engine/prompt"
	"blueprints/internal/engine/retry"
	"blueprints/internal/engine/verify"
	"blueprints/internal/ui/emit"
)

// App wires the pipeline components behind the service operations the
// CLI and watch mode drive.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	parser    *blueprint.Parser
	resolver  *graph.Resolver
	assembler *assemble.Assembler
	oracle    oracle.Client
	builder   *prompt.Builder
	history   *history.Store
	insight   *insight.Cache
	force     bool
	progress  func(ProgressEvent)
}

// ProgressEvent reports per-module pipeline progress to interactive
// frontends. Sent once when a module starts and once when it finishes.
type ProgressEvent struct {
	Module   string
	Index    int
	Total    int
	Done     bool
	Flagged  bool
	Attempts int
}

// SetProgressHandler registers a callback for per-module progress.
// Must be set before generation starts.
func (a *App) SetProgressHandler(fn func(ProgressEvent)) {
	a.progress = fn
}

func (a *App) notifyProgress(ev ProgressEvent) {
	if a.progress != nil {
		a.progress(ev)
	}
}

// New builds the application. The history store and insight cache are
// optional: failure to open either is logged and the run continues
// without persistence.
func New(cfg *config.Config, client oracle.Client, force bool, logger *slog.Logger) *App {
	parser := blueprint.NewParser()
	a := &App{
		cfg:       cfg,
		logger:    logger,
		parser:    parser,
		resolver:  graph.NewResolver(parser, logger),
		assembler: assemble.NewAssembler(),
		oracle:    client,
		builder:   prompt.NewBuilder(cfg.Generate.Language),
		force:     force,
	}

	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.HistoryPath)
		if err != nil {
			logger.Warn("history store unavailable", "error", err)
		} else {
			a.history = store
		}
		cache, err := insight.Open(cfg.DB.InsightPath)
		if err != nil {
			logger.Warn("insight cache unavailable", "error", err)
		} else {
			a.insight = cache
			a.resolver.SetSemanticAnalyzer(newCachedAnalyzer(cache, logger))
		}
	}

	return a
}

// Close releases the optional data stores.
func (a *App) Close() error {
	if a.history != nil {
		_ = a.history.Close()
	}
	if a.insight != nil {
		_ = a.insight.Close()
	}
	return nil
}

func (a *App) verifierFor(projectRoot string) *verify.Verifier {
	return verify.NewVerifier(verify.Options{
		Language:           a.cfg.Generate.Language,
		ProjectRoot:        projectRoot,
		DeclaredThirdParty: a.cfg.Verify.DeclaredThirdParty,
		RuntimeLoad:        a.cfg.Verify.RuntimeLoad,
		RuntimeTimeout:     a.cfg.Verify.RuntimeTimeout,
		InterpreterPath:    a.cfg.Verify.InterpreterPath,
	}, a.logger)
}

func (a *App) controllerFor(projectRoot string) *retry.Controller {
	return retry.NewController(a.oracle, a.verifierFor(projectRoot), a.builder, a.cfg.Generate.Retries, a.logger)
}

func (a *App) emitter() *emit.Emitter {
	return emit.NewEmitter(a.cfg.Generate.Language, a.force, a.logger)
}

// baseDir is the directory blueprint references are discovered under:
// the configured project root when set, else the root document's own
// directory.
func (a *App) baseDir(rootPath string) string {
	if a.cfg.Paths.ProjectRoot != "" {
		return a.cfg.Paths.ProjectRoot
	}
	return filepath.Dir(rootPath)
}
