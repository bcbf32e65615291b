package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertTree asserts root holds exactly the given files (slash paths) with
// exactly the given content, and nothing else
func AssertTree(t *testing.T, root string, want map[string]string) {
	t.Helper()

	got := ReadTree(t, root)
	assert.Equal(t, want, got)
}

// ReadTree returns every regular file under root keyed by slash path
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	got := make(map[string]string)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return got
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return got
}

// AssertExists asserts path exists
func AssertExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.NoError(t, err, "%s should exist", path)
}

// AssertNotExists asserts path does not exist
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}
