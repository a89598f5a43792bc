package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/blockscan/internal/analysis"
	"github.com/standardbeagle/blockscan/internal/display"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/security"
	"github.com/standardbeagle/blockscan/internal/types"
	"github.com/standardbeagle/blockscan/internal/watch"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Usage:   "Output format: json, text or compact (overrides config)",
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze the fenced code blocks of a file",
		ArgsUsage: "<input-file> [output-file]",
		Flags: []cli.Flag{
			formatFlag,
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-analyze whenever the input file changes",
			},
		},
		Action: analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: blockscan analyze <input-file> [output-file]", 1)
	}
	input, output := c.Args().Get(0), c.Args().Get(1)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	format, err := resolveFormat(c, cfg.Output.Format)
	if err != nil {
		return err
	}
	engine := newEngine(c, cfg)

	if err := analyzeFile(c.Context, engine, input, output, format, c.App.Writer); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(input, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Watching %s for changes (Ctrl+C to stop)\n", input)
	return w.Run(ctx, func(ctx context.Context) {
		if err := analyzeFile(ctx, engine, input, output, format, c.App.Writer); err != nil {
			fmt.Fprintln(c.App.ErrWriter, err)
		}
	})
}

// analyzeFile reads input, analyzes it and writes the rendered report
func analyzeFile(ctx context.Context, engine *analysis.Engine, input, output, format string, stdout io.Writer) error {
	text, err := security.ReadInput(input)
	if err != nil {
		return inputError(input, err)
	}

	report, err := engine.AnalyzeText(ctx, text)
	if err != nil {
		return err
	}
	return writeReport(report, format, output, stdout)
}

// inputError maps a failed read of the input file to exit code 1
func inputError(path string, err error) error {
	var fileErr *bserrors.FileError
	if errors.As(err, &fileErr) && fileErr.NotFound() {
		return cli.Exit(fmt.Sprintf("Error: File not found: %s", path), 1)
	}
	return cli.Exit(fmt.Sprintf("Error reading file: %v", err), 1)
}

// resolveFormat prefers the --format flag over the configured format
func resolveFormat(c *cli.Context, configured string) (string, error) {
	format := configured
	if c.IsSet("format") {
		format = c.String("format")
	}
	switch format {
	case "json", "text", "compact":
		return format, nil
	case "":
		return "json", nil
	default:
		return "", cli.Exit(fmt.Sprintf("Error: unknown format %q (want json, text or compact)", format), 1)
	}
}

// renderReport formats a report; every format ends with a newline
func renderReport(report *types.AnalysisResult, format string) ([]byte, error) {
	if format == "json" {
		return types.EncodeReport(report)
	}
	out := display.NewTreeFormatter(display.FormatterOptions{
		Format:       format,
		ShowSnippets: true,
	}).Format(report)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out += "\n"
	}
	return []byte(out), nil
}

// writeReport writes the rendered report to output, or to stdout when no
// output path is given
func writeReport(report *types.AnalysisResult, format, output string, stdout io.Writer) error {
	data, err := renderReport(report, format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return bserrors.NewFileError("write", output, err)
	}
	return nil
}
