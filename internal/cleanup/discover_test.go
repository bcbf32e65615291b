package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_DefaultPatterns(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"_writer.py", "_writeall.py", "_gen.py", "_gen_all.py", "_mkfiles.py", "_mkall.py",
		"_bootstrap.py", "_encode_helper.py", "_compute_b64.py", "_precompute.py", "_e.py",
		"_b64helper.py", "_b64encode.js", "_create_files.py", "_tmp_content.txt",
		"index.ts", "_b64.txt", "writer.py", "_test.js", "_e.pyc",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "_gen_dir.py"), 0o755))

	found, err := Discover(dir, DefaultPatterns, nil)
	require.NoError(t, err)

	var got []string
	for _, p := range found {
		assert.Equal(t, dir, filepath.Dir(p))
		got = append(got, filepath.Base(p))
	}
	assert.Equal(t, []string{
		"_b64encode.js", "_b64helper.py", "_bootstrap.py", "_compute_b64.py", "_create_files.py",
		"_e.py", "_encode_helper.py", "_gen.py", "_gen_all.py", "_mkall.py", "_mkfiles.py",
		"_precompute.py", "_tmp_content.txt", "_writeall.py", "_writer.py",
	}, got)
}

func TestDiscover_Exclude(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"_gen.py", "_gen_keep.py", "_writer.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}

	found, err := Discover(dir, DefaultPatterns, []string{"_gen_keep*"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "_gen.py"), filepath.Join(dir, "_writer.py")}, found)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), DefaultPatterns, nil)
	assert.Error(t, err)
}

func TestDiscover_NoPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_writer.py"), []byte("x"), 0o644))

	found, err := Discover(dir, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
