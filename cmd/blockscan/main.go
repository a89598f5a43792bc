package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/blockscan/internal/analysis"
	"github.com/standardbeagle/blockscan/internal/config"
	"github.com/standardbeagle/blockscan/internal/debug"
	"github.com/standardbeagle/blockscan/internal/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.RunContext(ctx, args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(stderr, msg)
			}
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "blockscan",
		Usage:                  "Static analysis of fenced code blocks in transcripts and markdown",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// Exit codes are mapped by run so the process never exits mid-command
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); defaults to .blockscan.kdl or .blockscan.toml in the working directory",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Blocks analyzed concurrently (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable block result caching",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
			&cli.StringFlag{
				Name:   "debug-log",
				Usage:  "Write debug logging to a file in the temp directory",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			if c.IsSet("debug-log") {
				debug.EnableDebug = "true"
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			scanCommand(),
			summarizeCommand(),
			mcpCommand(),
		},
	}
}

// loadConfig loads the configuration named by --config, or the one found
// in the working directory
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newEngine applies the global engine flags to cfg
func newEngine(c *cli.Context, cfg *config.Config) *analysis.Engine {
	var opts []analysis.Option
	if c.IsSet("workers") {
		opts = append(opts, analysis.WithWorkers(c.Int("workers")))
	}
	if c.Bool("no-cache") {
		opts = append(opts, analysis.WithoutCache())
	}
	return analysis.NewEngine(cfg, opts...)
}
