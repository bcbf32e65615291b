package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/utils"
)

// DefaultFileMode is the permission of written files
const DefaultFileMode os.FileMode = 0o644

// Ensure Writer implements domain.FileWriter
var _ domain.FileWriter = (*Writer)(nil)

// Writer commits decoded content to disk
type Writer struct {
	baseDir    string
	lineEnding LineEnding
	fileMode   os.FileMode
	dryRun     bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir    string
	LineEnding LineEnding
	FileMode   os.FileMode
	DryRun     bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.LineEnding == "" {
		opts.LineEnding = LF
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}

	return &Writer{
		baseDir:    opts.BaseDir,
		lineEnding: opts.LineEnding,
		fileMode:   opts.FileMode,
		dryRun:     opts.DryRun,
	}
}

// Write normalizes line endings and commits content to target.
//
// A target already holding identical bytes is left alone and reported as
// unchanged. Otherwise the content is staged in a sibling temp file and
// renamed over the target. Errors wrap domain.ErrFilesystem.
func (w *Writer) Write(target string, content []byte) (domain.WriteStat, error) {
	normalized, err := Normalize(content, w.lineEnding)
	if err != nil {
		return domain.WriteStat{}, fmt.Errorf("%w: %v", domain.ErrFilesystem, err)
	}
	stat := domain.WriteStat{Bytes: len(normalized)}

	info, err := os.Lstat(target)
	switch {
	case err == nil && info.IsDir():
		return stat, fmt.Errorf("%w: %s is a directory", domain.ErrFilesystem, target)
	case err == nil && info.Mode().IsRegular() && info.Size() == int64(len(normalized)):
		if same, herr := sameContent(target, normalized); herr == nil && same {
			stat.Unchanged = true
			return stat, nil
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return stat, fmt.Errorf("%w: %v", domain.ErrFilesystem, err)
	}

	if w.dryRun {
		return stat, nil
	}

	if err := WriteFileAtomic(target, normalized, w.fileMode); err != nil {
		return stat, fmt.Errorf("%w: writing %s: %v", domain.ErrFilesystem, target, err)
	}
	return stat, nil
}

// sameContent compares the file at path with data by BLAKE3 digest
func sameContent(path string, data []byte) (bool, error) {
	digest, err := utils.HashFile(path)
	if err != nil {
		return false, err
	}
	return digest == utils.HashBytes(data), nil
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (w *Writer) EnsureBaseDir() error {
	if w.dryRun {
		return nil
	}
	return os.MkdirAll(w.baseDir, 0755)
}

// Stats counts regular files and their total size under the base directory,
// ignoring leftover staging files
func (w *Writer) Stats() (int, int64, error) {
	var count int
	var size int64

	err := filepath.WalkDir(w.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || isStagingFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	})

	return count, size, err
}

// Staged lists leftover staging files under the base directory
func (w *Writer) Staged() ([]string, error) {
	var staged []string
	err := filepath.WalkDir(w.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && isStagingFile(d.Name()) {
			staged = append(staged, path)
		}
		return nil
	})
	return staged, err
}
