package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	coreapp "blueprints/internal/core/app"
	"blueprints/internal/core/config"
	"blueprints/internal/core/ports"
	"blueprints/internal/engine/oracle"
	"blueprints/internal/engine/verify"
	"blueprints/internal/shared/observability"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("blueprints v%s\n", versionString)
		return 0
	}
	if opts.command == "" {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)

	if opts.language != "" {
		cfg.Generate.Language = opts.language
	}
	if _, ok := verify.LookupLanguage(cfg.Generate.Language); !ok {
		fmt.Fprintf(os.Stderr, "unsupported language %q (supported: %v)\n",
			cfg.Generate.Language, verify.SupportedLanguages())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		server := observability.NewServer(fmt.Sprintf(":%d", cfg.Observability.Port), nil)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer server.Stop(context.Background())
	}
	if cfg.Observability.EnableTracing {
		shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, "blueprints")
		if err != nil {
			slog.Error("failed to set up tracing", "error", err)
			return 1
		}
		defer shutdown(context.Background())
	}

	client, err := buildOracle(opts, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	app := coreapp.New(cfg, client, opts.force, slog.Default())
	defer app.Close()

	return dispatch(ctx, app, opts)
}

func dispatch(ctx context.Context, app *coreapp.App, opts cliOptions) int {
	switch opts.command {
	case "validate":
		return runValidate(app, opts.args)
	case "generate":
		return runGenerate(ctx, app, opts.args)
	case "generate-project":
		return runGenerateProject(ctx, app, opts)
	case "discover":
		return runDiscover(app, opts.args)
	case "init":
		return runInit(app, opts.args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", opts.command, usageText)
		return 2
	}
}

func runValidate(app *coreapp.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: blueprints validate <file>")
		return 2
	}
	result, err := app.ValidateBlueprint(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	fmt.Printf("Module: %s\n", result.ModuleName)
	if result.Description != "" {
		fmt.Printf("Description: %s\n", result.Description)
	}
	fmt.Printf("References: %d, Components: %d\n", result.References, result.Components)
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return 0
}

func runGenerate(ctx context.Context, app *coreapp.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: blueprints generate <file>")
		return 2
	}
	result, err := app.GenerateModule(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	printModule(result.Module)
	if result.Dropped > 0 {
		fmt.Printf("Dropped references: %d\n", result.Dropped)
	}
	if result.Module.Flagged {
		return 1
	}
	return 0
}

func runGenerateProject(ctx context.Context, app *coreapp.App, opts cliOptions) int {
	if len(opts.args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: blueprints generate-project <file> [<file>...]")
		return 2
	}

	if len(opts.args) > 1 {
		return runMultiRoot(ctx, app, opts.args)
	}
	root := opts.args[0]

	var code int
	if opts.ui {
		result, err := runUI(ctx, app, root)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		code = printProject(result)
	} else {
		result, err := app.GenerateProject(ctx, root)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		code = printProject(result)
	}

	if opts.watch {
		if err := app.Watch(ctx, root); err != nil && ctx.Err() == nil {
			slog.Error("watch mode failed", "error", err)
			return 1
		}
		return 0
	}
	return code
}

func runMultiRoot(ctx context.Context, app *coreapp.App, paths []string) int {
	outcomes := app.GenerateProjects(ctx, paths)
	code := 0
	for _, path := range paths {
		outcome := outcomes[path]
		fmt.Printf("=== %s ===\n", path)
		if outcome.Err != nil {
			fmt.Fprintln(os.Stderr, outcome.Err.Error())
			code = 1
			continue
		}
		if printProject(outcome.Result) != 0 {
			code = 1
		}
	}
	return code
}

func runDiscover(app *coreapp.App, args []string) int {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	found, err := app.DiscoverBlueprints(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	fmt.Printf("Blueprints (%d):\n", len(found))
	for _, bp := range found {
		fmt.Printf("  %s  module=%s refs=%d\n", bp.Path, bp.ModuleName, bp.References)
	}
	return 0
}

func runInit(app *coreapp.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: blueprints init <name>")
		return 2
	}
	path, err := app.InitBlueprint(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	fmt.Printf("Created %s\n", path)
	return 0
}

func printModule(module ports.ModuleOutcome) {
	status := "ok"
	if module.Flagged {
		status = "flagged"
	}
	fmt.Printf("%-8s %s (attempts=%d)\n", status, module.ModuleName, module.Attempts)
	if module.Flagged {
		for _, failed := range verifyFailures(module) {
			fmt.Printf("         %s\n", failed)
		}
	}
}

func verifyFailures(module ports.ModuleOutcome) []string {
	var lines []string
	for _, res := range module.Results {
		if !res.Success {
			lines = append(lines, fmt.Sprintf("%s: %s", res.Kind, res.Message))
		}
	}
	return lines
}

func printProject(result ports.ProjectResult) int {
	for _, module := range result.Modules {
		printModule(module)
	}
	fmt.Printf("Generated %d modules in %s", len(result.Modules), result.Duration.Round(time.Millisecond))
	if result.Dropped > 0 {
		fmt.Printf(", %d references dropped", result.Dropped)
	}
	if len(result.Cycles) > 0 {
		fmt.Printf(", %d cycles", len(result.Cycles))
	}
	fmt.Println()

	if flagged := result.Flagged(); len(flagged) > 0 {
		fmt.Printf("Flagged modules: %v\n", flagged)
		return 1
	}
	return 0
}

func buildOracle(opts cliOptions, cfg *config.Config) (oracle.Client, error) {
	if opts.dryRun {
		return oracle.NewStubClient(), nil
	}
	if cfg.Oracle.Endpoint == "" {
		return nil, fmt.Errorf("oracle.endpoint is not configured; set it in %s or pass --dry-run", opts.configPath)
	}
	return oracle.NewHTTPClient(oracle.Options{
		Endpoint:    cfg.Oracle.Endpoint,
		Model:       cfg.Oracle.Model,
		MaxTokens:   cfg.Oracle.MaxTokens,
		Temperature: cfg.Oracle.Temperature,
		APIKey:      cfg.APIKey(),
		Timeout:     cfg.Oracle.Timeout,
		RatePerSec:  cfg.Oracle.RatePerSec,
	}), nil
}

func loadConfig(path, cwd string) (*config.Config, error) {
	if path != defaultConfigPath {
		return config.Load(path)
	}

	candidates := []string{
		filepath.Clean(filepath.Join(cwd, "blueprints.toml")),
		filepath.Clean(filepath.Join(cwd, "data/config/blueprints.toml")),
		filepath.Clean(filepath.Join(cwd, "blueprints.example.toml")),
	}
	for _, candidate := range candidates {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// No config file anywhere: run on defaults.
	return config.Default(), nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "blueprints", "blueprints.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "blueprints", "blueprints.log")
	}

	return "blueprints.log"
}
