package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/quantmind-br/treepack/internal/app"
	"github.com/quantmind-br/treepack/internal/codec"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/manifest"
	"github.com/quantmind-br/treepack/internal/output"
	"github.com/quantmind-br/treepack/internal/resolver"
	"github.com/spf13/cobra"
)

func newInspectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Parse a manifest and list its entries without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			format, err := manifest.ParseFormat(formatName)
			if err != nil {
				return &exitError{code: app.ExitParseError, err: err}
			}

			m, err := manifest.NewLoader(manifest.LoaderOptions{Format: format}).Load(args[0])
			if err != nil {
				return &exitError{code: app.ExitParseError, err: fmt.Errorf("%s: %w", domain.KindOf(err), err)}
			}

			dec := codec.New()
			rows := make([][]string, 0, m.Len())
			invalid := 0
			for i, e := range m.Entries {
				status := "ok"
				decoded := "-"
				if _, err := resolver.Clean(e.Path); err != nil {
					status = string(domain.KindOf(err))
				} else if content, err := dec.Decode(e.Payload); err != nil {
					status = string(domain.KindOf(err))
				} else {
					decoded = strconv.Itoa(len(content))
				}
				if status != "ok" {
					invalid++
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					e.Path,
					strconv.Itoa(len(e.Payload)),
					decoded,
					status,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Path", "Payload", "Bytes", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%s: %d entries (%s), %d would fail\n", m.Source, m.Len(), m.Format, invalid)

			root, _ := cmd.Flags().GetString("root")
			if root == "" {
				return nil
			}
			return printRootStats(cmd, root)
		},
	}

	cmd.Flags().String("format", "auto", "Manifest format (see materialize --help)")
	cmd.Flags().String("root", "", "Also summarize files already present under this base root")
	return cmd
}

// printRootStats reports what already exists under root, including staging
// files left behind by an interrupted run
func printRootStats(cmd *cobra.Command, root string) error {
	w := output.NewWriter(output.WriterOptions{BaseDir: root})
	out := cmd.OutOrStdout()

	count, size, err := w.Stats()
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "%s: does not exist yet\n", root)
		return nil
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	fmt.Fprintf(out, "%s: %d files, %d bytes\n", root, count, size)

	staged, err := w.Staged()
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	for _, path := range staged {
		fmt.Fprintf(out, "  leftover staging file: %s\n", path)
	}
	return nil
}
