package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/quantmind-br/treepack/internal/app"
	"github.com/quantmind-br/treepack/internal/cleanup"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/spf13/cobra"
)

func newFinalizeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <manifest>",
		Short: "Retry cleanup for a previously materialized manifest",
		Long: `Finalize removes the manifest and generator artifacts recorded by an earlier
successful materialize run. It is safe to run repeatedly; files already gone
are reported, not treated as errors. Runs that did not fully succeed are
never finalized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
				CommonOptions: domain.CommonOptions{Verbose: c.verbose},
				Config:        cfg,
				Logger:        c.newLogger(cfg, cmd.ErrOrStderr()),
			})
			if err != nil {
				return &exitError{code: 1, err: err}
			}

			report, err := orchestrator.Finalize(args[0])
			if err != nil {
				if errors.Is(err, cleanup.ErrNotFinalizable) {
					return &exitError{code: app.ExitPartialFailure, err: err}
				}
				return &exitError{code: 1, err: err}
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Manifest", report.Manifest},
				{"Base root", report.Root},
				{"Removed", strconv.Itoa(len(report.Cleanup.Removed))},
				{"Already gone", strconv.Itoa(len(report.Cleanup.Missing))},
				{"Kept (written by run)", strconv.Itoa(len(report.Cleanup.Skipped))},
				{"Cleanup warnings", strconv.Itoa(len(report.Cleanup.Warnings))},
			}
			fmt.Fprintln(out, renderTable([]string{"Finalize", report.RunID}, rows, nil))
			printCleanupWarnings(out, report.Cleanup)

			if code := report.ExitCode(); code != app.ExitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
}
