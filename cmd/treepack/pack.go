package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quantmind-br/treepack/internal/codec"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/manifest"
	"github.com/quantmind-br/treepack/internal/output"
	"github.com/quantmind-br/treepack/internal/resolver"
	"github.com/quantmind-br/treepack/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newPackCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [files or directories...]",
		Short: "Encode files into a manifest",
		Long: `Pack is the producer side of materialize. Files are stored under their path
relative to --base; directories are walked recursively. With --stdin, files
are read from ===FILE: <path> ... ===END blocks instead.

An output name ending in .gz or .zst is compressed. The companion format
writes one _data_NNNN.txt file per entry into the --output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd, args)
		},
	}

	cmd.Flags().String("base", ".", "Directory entry paths are relative to")
	cmd.Flags().Bool("stdin", false, "Read ===FILE: blocks from stdin")
	cmd.Flags().String("format", "json", "Manifest format: json, yaml, toml, list, delimited, caret, companion")
	cmd.Flags().StringP("output", "o", "", "Output file or companion directory (default: stdout)")

	return cmd
}

func (c *cli) runPack(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("base")
	useStdin, _ := cmd.Flags().GetBool("stdin")
	formatName, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	format, err := manifest.ParseFormat(formatName)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	var files []manifest.SourceFile
	switch {
	case useStdin && len(args) > 0:
		return &exitError{code: 1, err: fmt.Errorf("--stdin and file arguments are mutually exclusive")}
	case useStdin:
		files, err = manifest.ParseSourceBlocks(cmd.InOrStdin())
	case len(args) == 0:
		return &exitError{code: 1, err: fmt.Errorf("no input files (pass paths or --stdin)")}
	default:
		files, err = collectFiles(base, args, utils.IsTerminal(cmd.ErrOrStderr()) && !c.verbose)
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	encoder := manifest.NewEncoder(codec.New())
	entries, err := encoder.Entries(files)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	if format == domain.FormatCompanion {
		if outPath == "" {
			return &exitError{code: 1, err: fmt.Errorf("companion format needs --output DIR")}
		}
		written, err := encoder.WriteCompanion(outPath, entries)
		if err != nil {
			return &exitError{code: 1, err: err}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Packed %d entries into %d companion files in %s\n", len(entries), len(written), outPath)
		return nil
	}

	if outPath == "" {
		if err := encoder.Write(cmd.OutOrStdout(), format, entries); err != nil {
			return &exitError{code: 1, err: err}
		}
		return nil
	}

	if err := writeManifestFile(outPath, encoder, format, entries); err != nil {
		return &exitError{code: 1, err: err}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Packed %d entries into %s\n", len(entries), outPath)
	return nil
}

// writeManifestFile encodes (and maybe compresses) entries into path
// atomically
func writeManifestFile(path string, encoder *manifest.Encoder, format domain.Format, entries []domain.Entry) error {
	var buf bytes.Buffer
	w, err := manifest.NewCompressWriter(path, &buf)
	if err != nil {
		return err
	}
	if err := encoder.Write(w, format, entries); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if err := utils.EnsureDir(path); err != nil {
		return err
	}
	return output.WriteFileAtomic(path, buf.Bytes(), output.DefaultFileMode)
}

// collectFiles reads each path (walking directories) relative to base, in
// argument order and lexical order within directories
func collectFiles(base string, paths []string, showProgress bool) ([]manifest.SourceFile, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	var files []manifest.SourceFile
	seen := make(map[string]bool)

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = utils.NewProgressBar(-1, utils.DescPacking)
		defer func() { _ = bar.Finish() }()
	}

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			return err
		}
		clean, err := resolver.Clean(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("%s is not inside --base %s: %w", path, base, err)
		}
		if seen[clean] {
			return nil
		}
		seen[clean] = true

		content, err := os.ReadFile(abs)
		if err != nil {
			return err
		}
		files = append(files, manifest.SourceFile{Path: clean, Content: content})
		if bar != nil {
			_ = bar.Add(1)
		}
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
