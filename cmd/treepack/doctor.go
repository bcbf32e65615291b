package main

import (
	"fmt"

	"github.com/quantmind-br/treepack/internal/manifest"
	"github.com/quantmind-br/treepack/internal/utils"
	"github.com/quantmind-br/treepack/pkg/version"
	"github.com/spf13/cobra"
)

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and the ledger directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var rows [][]string
			failed := false

			check := func(name string, err error, detail string) {
				status := "OK"
				if err != nil {
					status = "FAIL"
					detail = err.Error()
					failed = true
				}
				rows = append(rows, []string{name, status, detail})
			}

			cfg, err := c.loadConfig()
			if err != nil {
				check("Config", err, "")
				fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
				return &exitError{code: 1}
			}
			configDetail := "defaults"
			if used := c.v.ConfigFileUsed(); used != "" {
				configDetail = used
			}
			check("Config", nil, configDetail)

			stateDir := utils.ExpandPath(cfg.State.Directory)
			lockDir := utils.ExpandPath(cfg.State.LockDir)
			if cfg.State.Enabled {
				check("State directory", utils.CheckWritableDir(stateDir), stateDir)
			} else {
				rows = append(rows, []string{"State directory", "SKIP", "state disabled"})
			}
			check("Lock directory", utils.CheckWritableDir(lockDir), lockDir)

			terminal := "no (plain output)"
			if utils.IsTerminal(out) {
				terminal = "yes"
			}
			rows = append(rows, []string{"Terminal", "OK", terminal})
			rows = append(rows, []string{"Formats", "OK", fmt.Sprint(manifest.Formats())})
			rows = append(rows, []string{"Version", "OK", version.Short()})

			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
