package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const stagingSuffix = ".tmp"

// stagingPattern names the sibling temp file for target
func stagingPattern(target string) string {
	return "." + filepath.Base(target) + ".treepack-*" + stagingSuffix
}

// isStagingFile reports whether name looks like a staging file
func isStagingFile(name string) bool {
	return strings.HasPrefix(name, ".") &&
		strings.Contains(name, ".treepack-") &&
		strings.HasSuffix(name, stagingSuffix)
}

// WriteFileAtomic stages data in a temp file beside path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), stagingPattern(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
