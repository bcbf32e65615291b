package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("export const x = 1;\n"))
	b := HashBytes([]byte("export const x = 1;\n"))
	c := HashBytes([]byte("export const x = 2;\n"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, HashBytes([]byte("root")), HashString("root"))
}

func TestHashFile(t *testing.T) {
	content := []byte("line one\nline two\n")
	p := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(p, content, 0o644))

	got, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, HashBytes(content), got)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}
