package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "specpress",
		Usage:   "Compress specification files into token-efficient digests",
		Version: Version,
		Commands: []*cli.Command{
			digestCmd(db, cfg),
			metricsCmd(cfg),
			historyCmd(db),
			previewCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// digestCmd creates the digest command.
func digestCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Generate a digest for a specification file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Compression level: low|medium|high"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Digest output path"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: yaml|json|markdown|compact"},
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing digest file"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Measure savings without writing the digest"},
			&cli.BoolFlag{Name: "show-metrics", Usage: "Include the per-section breakdown in the output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("digest requires exactly one file argument"))
			}

			out, err := ops.Digest(db, cfg, ops.DigestInput{
				Path:   c.Args().First(),
				Level:  c.String("level"),
				Output: c.String("output"),
				Format: c.String("format"),
				Force:  c.Bool("force"),
				DryRun: c.Bool("dry-run"),
			})
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(digestReport(out, c.Bool("show-metrics"))); err != nil {
				return err
			}

			if !out.MeetsMinimum {
				return cli.Exit(fmt.Sprintf(
					"digest saved only %.0f%% of tokens, below the %.0f%% minimum; the file may already be optimized",
					out.PercentSaved*100, digest.MinimumReduction*100), errors.ExitBelowTarget)
			}
			return nil
		},
	}
}

// metricsCmd creates the metrics command.
func metricsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Usage:     "Report the savings a digest would achieve without writing anything",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Compression level: low|medium|high"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("metrics requires exactly one file argument"))
			}

			m, err := ops.Metrics(cfg, c.Args().First(), c.String("level"))
			if err != nil {
				return outputError(err)
			}

			report, err := m.ToJSON()
			if err != nil {
				return outputError(err)
			}
			fmt.Println(report)
			return nil
		},
	}
}

// historyCmd creates the history command.
func historyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded digest runs, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Only show runs for this specification file"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum number of runs"},
		},
		Action: func(c *cli.Context) error {
			runs, err := ops.History(db, c.String("source"), c.Int("limit"))
			if err != nil {
				return outputError(err)
			}

			items := make([]map[string]any, len(runs))
			for i, r := range runs {
				items[i] = map[string]any{
					"run_id":            r.ID,
					"source_file":       r.SourceFile,
					"digest_file":       r.DigestFile,
					"profile":           r.Profile,
					"original_tokens":   r.OriginalTokens,
					"digest_tokens":     r.DigestTokens,
					"compression_ratio": r.CompressionRatio,
					"duration_ms":       r.Duration.Milliseconds(),
					"created_at":        r.CreatedAt.UTC().Format(time.RFC3339),
				}
			}
			return outputJSON(map[string]any{"runs": items, "count": len(items)})
		},
	}
}

// previewCmd creates the preview command.
func previewCmd() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Render a digest file as an HTML page",
		ArgsUsage: "<digest-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "HTML output path (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("preview requires exactly one digest file argument"))
			}

			html, err := ops.Preview(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			if out := c.String("output"); out != "" {
				if err := os.WriteFile(out, []byte(html), 0644); err != nil {
					return outputError(errors.NewIO(fmt.Sprintf("failed to write preview to %s", out), err))
				}
				return nil
			}
			fmt.Println(html)
			return nil
		},
	}
}

// digestReport shapes a digest run for JSON output.
func digestReport(out *ops.DigestOutput, showMetrics bool) map[string]any {
	report := map[string]any{
		"run_id":             out.RunID,
		"source_file":        out.SourceFile,
		"digest_file":        out.DigestFile,
		"profile":            out.Profile,
		"original_tokens":    out.OriginalTokens,
		"digest_tokens":      out.DigestTokens,
		"tokens_saved":       out.OriginalTokens - out.DigestTokens,
		"percent_saved":      out.PercentSaved,
		"processing_time_ms": out.ProcessingTimeMS,
		"meets_minimum":      out.MeetsMinimum,
	}
	if showMetrics {
		sections := make([]map[string]any, len(out.Sections))
		for i, s := range out.Sections {
			sections[i] = map[string]any{
				"section":           s.Name,
				"original_tokens":   s.OriginalTokens,
				"digest_tokens":     s.DigestTokens,
				"reduction_percent": s.ReductionPercent,
				"action":            string(s.Action),
			}
		}
		report["section_breakdown"] = sections
	}
	return report
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats an error for the CLI and maps it to its exit code.
func outputError(err error) error {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), appErr.ExitCode)
	}
	return cli.Exit(err.Error(), errors.ExitGeneral)
}

// exitCode extracts the process exit code from a CLI error.
func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return errors.ExitGeneral
}
