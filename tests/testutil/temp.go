package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "treepack-test-*")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	return tmpDir
}

// WriteFile creates dir/name (and its parents) with content
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

// Workspace creates a manifest directory and a separate base root
func Workspace(t *testing.T) (manifestDir, root string) {
	t.Helper()

	base := TempDir(t)
	manifestDir = filepath.Join(base, "work")
	root = filepath.Join(base, "out")
	require.NoError(t, os.MkdirAll(manifestDir, 0755))

	return manifestDir, root
}
