package cli

import (
	"flag"
	"fmt"
)

const versionString = "0.1.0"
const defaultConfigPath = "./blueprints.toml"

type cliOptions struct {
	configPath string
	language   string
	verbose    bool
	ui         bool
	watch      bool
	force      bool
	dryRun     bool
	version    bool
	command    string
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("blueprints", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.language, "language", "", "Target language override (python, go, javascript, typescript, java, rust)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode for generate-project")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and regenerate when blueprints change")
	fs.BoolVar(&opts.force, "force", false, "Overwrite existing generated files")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Use the offline stub oracle instead of a live endpoint")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usageText) }

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.command = rest[0]
		opts.args = rest[1:]
	}
	return opts, nil
}

const usageText = `Usage: blueprints [flags] <command> [args]

Commands:
  validate <file>          Parse a blueprint document and report what it declares
  generate <file>          Generate source for one module with dependency context
  generate-project <file>  Generate the whole project in dependency order
  discover <dir>           List blueprint documents under a directory
  init <name>              Write a starter blueprint document

Flags:
  --config <path>    Path to config file (default ./blueprints.toml)
  --language <name>  Target language override
  --verbose          Enable verbose logging
  --ui               Terminal UI mode for generate-project
  --watch            Regenerate when blueprints change
  --force            Overwrite existing generated files
  --dry-run          Use the offline stub oracle
  --version          Print version and exit
`
