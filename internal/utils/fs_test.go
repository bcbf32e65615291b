package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates directory", func(t *testing.T) {
		tempDir := t.TempDir()
		testPath := filepath.Join(tempDir, "subdir", "file.txt")

		err := EnsureDir(testPath)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Dir(testPath))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing directory", func(t *testing.T) {
		tempDir := t.TempDir()
		testPath := filepath.Join(tempDir, "file.txt")

		require.NoError(t, EnsureDir(testPath))
		require.NoError(t, EnsureDir(testPath))
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "home directory with slash", input: "~/state", expected: filepath.Join(home, "state")},
		{name: "home directory only", input: "~", expected: home},
		{name: "regular path", input: "/tmp/test", expected: "/tmp/test"},
		{name: "relative path", input: "./test", expected: "./test"},
		{name: "tilde inside path", input: "a/~/b", expected: "a/~/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestCheckWritableDir(t *testing.T) {
	t.Run("creates and probes", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		require.NoError(t, CheckWritableDir(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("file in the way", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		assert.Error(t, CheckWritableDir(file))
	})

	t.Run("read only directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0o555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
		assert.Error(t, CheckWritableDir(dir))
	})
}
