package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/blockscan/internal/display"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
	"github.com/standardbeagle/blockscan/internal/mcp"
	"github.com/standardbeagle/blockscan/internal/scanner"
	"github.com/standardbeagle/blockscan/internal/types"
	"github.com/standardbeagle/blockscan/pkg/pathutil"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Analyze every matching file under a directory as one report",
		ArgsUsage: "<directory> [output-file]",
		Flags: []cli.Flag{
			formatFlag,
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (replaces config includes)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (added to config excludes)",
			},
			&cli.BoolFlag{
				Name:  "no-gitignore",
				Usage: "Do not apply the root .gitignore",
			},
		},
		Action: scanAction,
	}
}

func scanAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: blockscan scan <directory> [output-file]", 1)
	}
	root, output := c.Args().Get(0), c.Args().Get(1)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	format, err := resolveFormat(c, cfg.Output.Format)
	if err != nil {
		return err
	}

	scanCfg := cfg.Scan
	if include := c.StringSlice("include"); len(include) > 0 {
		scanCfg.Include = include
	}
	scanCfg.Exclude = append(scanCfg.Exclude, c.StringSlice("exclude")...)
	if c.Bool("no-gitignore") {
		scanCfg.RespectGitignore = false
	}

	s, err := scanner.New(root, scanCfg)
	if err != nil {
		return err
	}
	collection, err := s.Collect(c.Context)
	if err != nil {
		var fileErr *bserrors.FileError
		if errors.As(err, &fileErr) {
			switch {
			case fileErr.NotFound():
				return cli.Exit(fmt.Sprintf("Error: Directory not found: %s", root), 1)
			case fileErr.Operation == "scan":
				return cli.Exit(fmt.Sprintf("Error: Not a directory: %s", root), 1)
			}
		}
		return err
	}
	reportSkipped(c, root, collection.Skipped)

	report, err := newEngine(c, cfg).AnalyzeBlocks(c.Context, collection.Blocks)
	if err != nil {
		return err
	}
	return writeReport(report, format, output, c.App.Writer)
}

// reportSkipped names each unreadable file relative to the scan root
func reportSkipped(c *cli.Context, root string, skipped []error) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(c.App.ErrWriter, "Skipped %d unreadable files\n", len(skipped))
	for _, err := range skipped {
		var fileErr *bserrors.FileError
		if errors.As(err, &fileErr) {
			fmt.Fprintf(c.App.ErrWriter, "  %s: %v\n", pathutil.ToRelativeFrom(fileErr.Path, root), fileErr.Underlying)
			continue
		}
		fmt.Fprintf(c.App.ErrWriter, "  %v\n", err)
	}
}

func summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Render a saved JSON report",
		ArgsUsage: "<report.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, compact or json",
				Value:   "text",
			},
			&cli.IntFlag{
				Name:  "max-issues",
				Usage: "Issues listed per severity (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "snippets",
				Usage: "Show the first line of each issue's snippet",
			},
			&cli.BoolFlag{
				Name:  "agent",
				Usage: "Mark severities with colored markers",
			},
		},
		Action: summarizeAction,
	}
}

func summarizeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: blockscan summarize <report.json>", 1)
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return inputError(path, bserrors.NewFileError("read", path, err))
	}

	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:       c.String("format"),
		ShowSnippets: c.Bool("snippets"),
		AgentMode:    c.Bool("agent"),
		MaxIssues:    c.Int("max-issues"),
	})
	out := formatter.Format(types.DecodeReport(data))
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out += "\n"
	}
	_, err = fmt.Fprint(c.App.Writer, out)
	return err
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the analyzer as an MCP server over stdio",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcp.NewServer(newEngine(c, cfg)).Start(ctx)
		},
	}
}
