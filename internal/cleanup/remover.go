package cleanup

import (
	"fmt"
	"os"

	"github.com/quantmind-br/treepack/internal/domain"
)

// Ensure FileRemover implements domain.Remover
var _ domain.Remover = FileRemover{}

// FileRemover deletes single files and refuses directories
type FileRemover struct{}

// Remove deletes the file at path
func (FileRemover) Remove(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	return os.Remove(path)
}
