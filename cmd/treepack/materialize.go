package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/quantmind-br/treepack/internal/app"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/manifest"
	"github.com/spf13/cobra"
)

func newMaterializeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materialize <manifest>",
		Short: "Write every manifest entry to disk, then clean up",
		Long: `Materialize decodes each manifest entry and writes it under the base root
(default: the manifest's directory). When every entry succeeds, the manifest
and matching generator artifacts are removed.

The manifest may be a file in any supported format, optionally gzip or zstd
compressed, or a directory of _data_*.txt companion files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMaterialize(cmd, args[0])
		},
	}

	cmd.Flags().String("root", "", "Base root for written files (default: manifest directory)")
	cmd.Flags().String("format", "auto", "Manifest format: auto, json, yaml, toml, list, delimited, caret, companion")
	cmd.Flags().Bool("no-cleanup", false, "Keep the manifest and artifacts; run finalize later")
	cmd.Flags().StringSlice("artifact", nil, "Additional file to remove on success (repeatable)")
	cmd.Flags().Bool("dry-run", false, "Report what would be written without touching disk")
	cmd.Flags().String("report", "", "Write a JSON run report to this file")
	cmd.Flags().String("line-ending", "lf", "Line ending for written files: lf or crlf")

	_ = c.v.BindPFlag("output.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = c.v.BindPFlag("output.line_ending", cmd.Flags().Lookup("line-ending"))

	return cmd
}

func (c *cli) runMaterialize(cmd *cobra.Command, location string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := manifest.ParseFormat(formatName)
	if err != nil {
		return &exitError{code: app.ExitParseError, err: err}
	}

	root, _ := cmd.Flags().GetString("root")
	noCleanup, _ := cmd.Flags().GetBool("no-cleanup")
	artifacts, _ := cmd.Flags().GetStringSlice("artifact")
	reportPath, _ := cmd.Flags().GetString("report")

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		CommonOptions: domain.CommonOptions{
			Verbose: c.verbose,
		},
		Config: cfg,
		Logger: c.newLogger(cfg, cmd.ErrOrStderr()),
	})
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("failed to create orchestrator: %w", err)}
	}

	report, err := orchestrator.Run(app.RunOptions{
		Manifest:  location,
		Root:      root,
		Format:    format,
		Artifacts: artifacts,
		Report:    reportPath,
		DryRun:    cfg.Output.DryRun,
		NoCleanup: noCleanup,
	})
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	printRunReport(cmd.OutOrStdout(), report)

	if code := report.ExitCode(); code != app.ExitSuccess {
		return &exitError{code: code, err: report.Err}
	}
	return nil
}

// printRunReport renders the summary table followed by failures and
// cleanup warnings
func printRunReport(w io.Writer, report *app.RunReport) {
	rows := [][]string{
		{"Manifest", report.Manifest},
		{"Base root", report.Root},
		{"Phase", string(report.Phase)},
	}
	if report.Parsed != nil {
		rows = append(rows,
			[]string{"Format", string(report.Parsed.Format)},
			[]string{"Entries", strconv.Itoa(report.Parsed.Len())},
		)
	}
	if report.Result != nil {
		written, unchanged := 0, 0
		for _, o := range report.Result.Outcomes {
			switch {
			case !o.OK():
			case o.Unchanged:
				unchanged++
			default:
				written++
			}
		}
		rows = append(rows,
			[]string{"Written", strconv.Itoa(written)},
			[]string{"Unchanged", strconv.Itoa(unchanged)},
			[]string{"Failed", strconv.Itoa(len(report.Result.Failures()))},
			[]string{"Status", string(report.Result.Status())},
		)
	}
	if report.Cleanup != nil {
		rows = append(rows,
			[]string{"Removed", strconv.Itoa(len(report.Cleanup.Removed))},
			[]string{"Already gone", strconv.Itoa(len(report.Cleanup.Missing))},
			[]string{"Cleanup warnings", strconv.Itoa(len(report.Cleanup.Warnings))},
		)
	}
	if report.DryRun {
		rows = append(rows, []string{"Dry run", "yes"})
	}
	rows = append(rows,
		[]string{"Exit code", strconv.Itoa(report.ExitCode())},
		[]string{"Duration", report.Duration.Round(time.Millisecond).String()},
	)
	fmt.Fprintln(w, renderTable([]string{"Run", report.RunID}, rows, nil))

	if report.Err != nil {
		fmt.Fprintf(w, "%s: %v\n", domain.KindOf(report.Err), report.Err)
	}

	if report.Result != nil {
		if failures := report.Result.Failures(); len(failures) > 0 {
			frows := make([][]string, 0, len(failures))
			for _, f := range failures {
				frows = append(frows, []string{f.Path, string(f.Kind), f.Message})
			}
			fmt.Fprintln(w, renderTable([]string{"Path", "Kind", "Error"}, frows, nil))
		}
	}

	printCleanupWarnings(w, report.Cleanup)
}

func printCleanupWarnings(w io.Writer, report *domain.CleanupReport) {
	if !report.HasWarnings() {
		return
	}
	rows := make([][]string, 0, len(report.Warnings))
	for _, warn := range report.Warnings {
		rows = append(rows, []string{warn.Path, warn.Message})
	}
	fmt.Fprintln(w, renderTable([]string{"Not removed", "Reason"}, rows, nil))
}
