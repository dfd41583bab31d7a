package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/config"
	"github.com/ironsheep/product-compositor/internal/imaging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `compositor - place product images onto templates

Usage: compositor [-config file] <command> [options]

Commands:
  apply <template> <product>...   Composite products onto a template
  batch <template> <dir>          Composite every image in a folder
  convert <file|dir>...           Flatten PSDs to PNG with a transparent background
  menu                            Interactive menu
  serve                           HTTP upload server
  mcp                             MCP server on stdin/stdout
  version                         Print version information
  help                            Print this help message

Run 'compositor <command> -h' for command options.

Environment variables:
  COMPOSITOR_LOG_LEVEL=debug      Log level (debug, info, warn, error)
  COMPOSITOR_OUTPUT_DIR=dir       Output directory for composited images
  COMPOSITOR_ADDR=:5000           Listen address of the upload server
`

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	comp    *compose.Compositor
	workDir string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compositor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cmd, rest := "help", []string(nil)
	if fs.NArg() > 0 {
		cmd, rest = fs.Arg(0), fs.Args()[1:]
	}

	// Handle --version and --help before touching configuration
	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "compositor %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "compositor: %v\n", err)
		return 1
	}

	// Logging goes to stderr (stdout is for MCP protocol and reports)
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("compositor: starting", "version", Version, "build_time", BuildTime, "commit", GitCommit, "command", cmd)

	a := &app{
		cfg:     cfg,
		log:     logger,
		workDir: ".",
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	// Uploaded templates are unique per request, so only the long-lived
	// commands that reuse templates get a cache.
	var cache *imaging.ImageCache
	if cmd != "serve" {
		cache = imaging.NewImageCache()
	}
	opts, err := cfg.CompositorOptions(logger, cache)
	if err != nil {
		fmt.Fprintf(stderr, "compositor: %v\n", err)
		return 1
	}
	a.comp = compose.New(opts)

	switch cmd {
	case "apply":
		return a.apply(ctx, rest)
	case "batch":
		return a.batch(ctx, rest)
	case "convert":
		return a.convert(ctx, rest)
	case "menu":
		return a.menu(ctx)
	case "serve":
		return a.serve(ctx)
	case "mcp":
		return a.mcp(ctx)
	}

	fmt.Fprintf(stderr, "compositor: unknown command %q\n\n", cmd)
	fmt.Fprint(stderr, usage)
	return 2
}
