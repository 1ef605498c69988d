package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sammck/hubctl/internal/core/envmerge"
	"github.com/sammck/hubctl/internal/core/hub"
	"github.com/sammck/hubctl/internal/core/routing"
	"github.com/sammck/hubctl/internal/core/template"
	"github.com/sammck/hubctl/internal/shell/artifact"
	"github.com/sammck/hubctl/internal/shell/builder"
	"github.com/sammck/hubctl/internal/shell/configstore"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess       = 0
	ExitUsage         = 1
	ExitConfigError   = 2
	ExitTemplateError = 3
	ExitRouteError    = 4
	ExitEnvMergeError = 5
	ExitWriteError    = 6
)

// exitCodeFor maps a pipeline error to its exit code by error class.
func exitCodeFor(err error) int {
	var (
		validationErr *hub.ValidationError
		expansionErr  *template.ExpansionError
		collisionErr  *routing.CollisionError
		conflictErr   *envmerge.ConflictError
		writeErr      *artifact.WriteError
	)
	switch {
	case errors.As(err, &collisionErr):
		return ExitRouteError
	case errors.As(err, &conflictErr):
		return ExitEnvMergeError
	case errors.As(err, &expansionErr):
		return ExitTemplateError
	case errors.As(err, &writeErr):
		return ExitWriteError
	case errors.As(err, &validationErr):
		return ExitConfigError
	default:
		return ExitConfigError
	}
}

// =============================================================================
// Entry Point
// =============================================================================

const usageText = `Usage: hubctl [flags] <command>

Commands:
  build                 compile the project and write artifacts
  validate              dry-run compile; list recognized variables
  config get <key>      print the effective value of a hub config key
  config set <key> <v>  set a hub config key and persist the document
  config keys           list addressable hub config keys
  version               print version and exit

Flags:
  -config PATH          path to the hubctl tool config file
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hubctl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	configPath := fs.String("config", "", "Path to tool config file")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if *showVersion {
		fmt.Printf("hubctl %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	logger := SetupLogger(cfg)

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return ExitUsage
	}

	store := configstore.NewStore(cfg.Project.ConfigPath)

	switch rest[0] {
	case "build":
		return cmdBuild(builder.New(store, cfg.Project.Dir, cfg.Project.BuildDir, logger))
	case "validate":
		return cmdValidate(builder.New(store, cfg.Project.Dir, cfg.Project.BuildDir, logger))
	case "config":
		return cmdConfig(store, rest[1:])
	case "version":
		fmt.Printf("hubctl %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return ExitUsage
	}
}

// =============================================================================
// Commands
// =============================================================================

func cmdBuild(b *builder.Builder) int {
	result, err := b.Build(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		return exitCodeFor(err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Subdomain, w.Message)
	}
	if len(result.Changed) == 0 {
		fmt.Println("build complete; no artifacts changed")
		return ExitSuccess
	}
	fmt.Printf("build complete; %d artifact(s) updated:\n", len(result.Changed))
	for _, path := range result.Changed {
		fmt.Printf("  %s\n", path)
	}
	return ExitSuccess
}

func cmdValidate(b *builder.Builder) int {
	result, err := b.Validate(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return exitCodeFor(err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Subdomain, w.Message)
	}
	fmt.Println("project is valid; recognized variables:")
	for _, v := range result.Variables {
		switch {
		case v.Required:
			fmt.Printf("  %-32s (required, %s)\n", v.Name, v.Source)
		case v.Default != "":
			fmt.Printf("  %-32s (default %q, %s)\n", v.Name, v.Default, v.Source)
		default:
			fmt.Printf("  %-32s (%s)\n", v.Name, v.Source)
		}
	}
	return ExitSuccess
}

func cmdConfig(store *configstore.Store, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hubctl config <get|set|keys> ...")
		return ExitUsage
	}
	switch args[0] {
	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: hubctl config get <key>")
			return ExitUsage
		}
		value, err := store.Get(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "config get failed: %v\n", err)
			return exitCodeFor(err)
		}
		fmt.Println(value)
		return ExitSuccess
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: hubctl config set <key> <value>")
			return ExitUsage
		}
		if err := store.Set(args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "config set failed: %v\n", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "keys":
		for _, key := range configstore.Keys() {
			fmt.Println(key)
		}
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand %q\n", args[0])
		return ExitUsage
	}
}
