package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quantmind-br/treepack/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "treepack")
}

func TestMaterialize_Success(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteJSONManifest(t, work, "_b64.json", []testutil.File{
		{Path: "src/main.go", Content: "package main\n"},
		{Path: "README.md", Content: "# hi\n"},
	})
	script := testutil.WriteFile(t, work, "_writer.py", "print('x')\n")

	code, out, stderr := run(t, "materialize", location, "--root", root)
	require.Equal(t, 0, code, stderr)

	testutil.AssertTree(t, root, map[string]string{
		"src/main.go": "package main\n",
		"README.md":   "# hi\n",
	})
	testutil.AssertNotExists(t, location)
	testutil.AssertNotExists(t, script)
	assert.Contains(t, out, "success")
}

func TestMaterialize_PartialFailure(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteFile(t, work, "_b64.json",
		`{"good.txt": "`+testutil.Encode("ok\n")+`", "bad.txt": "!!not base64!!"}`)

	code, out, _ := run(t, "materialize", location, "--root", root)
	assert.Equal(t, 2, code)

	testutil.AssertTree(t, root, map[string]string{"good.txt": "ok\n"})
	testutil.AssertExists(t, location)
	assert.Contains(t, out, "bad.txt")
}

func TestMaterialize_MalformedManifest(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteFile(t, work, "_b64.json", `{"a.txt": `)

	code, _, stderr := run(t, "materialize", location, "--root", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")

	testutil.AssertNotExists(t, root)
	testutil.AssertExists(t, location)
}

func TestMaterialize_UnknownFormat(t *testing.T) {
	isolateHome(t)
	work, _ := testutil.Workspace(t)
	location := testutil.WriteJSONManifest(t, work, "_b64.json", []testutil.File{{Path: "a", Content: "a"}})

	code, _, stderr := run(t, "materialize", location, "--format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "xml")
}

func TestMaterialize_NoCleanupThenFinalize(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteJSONManifest(t, work, "_b64.json", []testutil.File{
		{Path: "a.txt", Content: "a\n"},
	})

	code, _, stderr := run(t, "materialize", location, "--root", root, "--no-cleanup")
	require.Equal(t, 0, code, stderr)
	testutil.AssertExists(t, location)

	code, out, stderr := run(t, "finalize", location)
	require.Equal(t, 0, code, stderr)
	testutil.AssertNotExists(t, location)
	testutil.AssertTree(t, root, map[string]string{"a.txt": "a\n"})
	assert.Contains(t, out, "Removed")
}

func TestFinalize_RefusesPartialRun(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteFile(t, work, "_b64.json", `{"bad.txt": "%%%"}`)

	code, _, _ := run(t, "materialize", location, "--root", root)
	require.Equal(t, 2, code)

	code, _, stderr := run(t, "finalize", location)
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, stderr)
	testutil.AssertExists(t, location)
}

func TestMaterialize_DryRunAndReport(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteJSONManifest(t, work, "_b64.json", []testutil.File{
		{Path: "a.txt", Content: "a\n"},
	})
	reportPath := filepath.Join(t.TempDir(), "report.json")

	code, _, stderr := run(t, "materialize", location, "--root", root, "--dry-run", "--report", reportPath)
	require.Equal(t, 0, code, stderr)

	testutil.AssertNotExists(t, root)
	testutil.AssertExists(t, location)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.EqualValues(t, 1, report["total_entries"])
	assert.EqualValues(t, 0, report["exit_code"])
}

func TestInspect(t *testing.T) {
	isolateHome(t)
	work, _ := testutil.Workspace(t)
	location := testutil.WriteFile(t, work, "_b64.json",
		`{"ok.txt": "`+testutil.Encode("ok")+`", "../escape.txt": "`+testutil.Encode("x")+`"}`)

	code, out, stderr := run(t, "inspect", location)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "ok.txt")
	assert.Contains(t, out, "2 entries")
	assert.Contains(t, out, "1 would fail")

	// inspect never writes or removes
	testutil.AssertExists(t, location)
}

func TestInspect_RootStats(t *testing.T) {
	isolateHome(t)
	work, root := testutil.Workspace(t)
	location := testutil.WriteJSONManifest(t, work, "_b64.json", []testutil.File{{Path: "a.txt", Content: "a"}})
	testutil.WriteFile(t, root, "existing.txt", "12345")

	code, out, stderr := run(t, "inspect", location, "--root", root)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "1 files, 5 bytes")
}

func TestPack_RoundTrip(t *testing.T) {
	isolateHome(t)
	src := t.TempDir()
	testutil.WriteFile(t, src, "cmd/app/main.go", "package main\n")
	testutil.WriteFile(t, src, "go.mod", "module example.com/app\n")

	work, root := testutil.Workspace(t)
	for _, name := range []string{"_b64.json", "_b64.yaml.gz", "_b64.toml.zst", "_b64.txt"} {
		t.Run(name, func(t *testing.T) {
			format := "json"
			switch {
			case strings.HasPrefix(name, "_b64.yaml"):
				format = "yaml"
			case strings.HasPrefix(name, "_b64.toml"):
				format = "toml"
			case name == "_b64.txt":
				format = "delimited"
			}
			location := filepath.Join(work, name)
			target := filepath.Join(root, strings.ReplaceAll(name, ".", "_"))

			code, _, stderr := run(t, "pack", "--base", src, "--format", format, "-o", location, src)
			require.Equal(t, 0, code, stderr)

			code, _, stderr = run(t, "materialize", location, "--root", target, "--format", format)
			require.Equal(t, 0, code, stderr)

			testutil.AssertTree(t, target, map[string]string{
				"cmd/app/main.go": "package main\n",
				"go.mod":          "module example.com/app\n",
			})
			testutil.AssertNotExists(t, location)
		})
	}
}

func TestPack_Stdin(t *testing.T) {
	isolateHome(t)
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"pack", "--stdin"})
	root.SetIn(strings.NewReader("===FILE: a/b.txt\nhello\n===END\n"))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	require.NoError(t, root.Execute())

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, testutil.Encode("hello"), decoded["a/b.txt"])
}

func TestPack_RejectsFilesOutsideBase(t *testing.T) {
	isolateHome(t)
	base := t.TempDir()
	outside := testutil.WriteFile(t, t.TempDir(), "x.txt", "x")

	code, _, stderr := run(t, "pack", "--base", base, outside)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not inside")
}

func TestPack_Companion(t *testing.T) {
	isolateHome(t)
	src := t.TempDir()
	testutil.WriteFile(t, src, "a.txt", "alpha\n")
	testutil.WriteFile(t, src, "b/c.txt", "gamma\n")

	dir := filepath.Join(t.TempDir(), "payload")
	code, _, stderr := run(t, "pack", "--base", src, "--format", "companion", "-o", dir, src)
	require.Equal(t, 0, code, stderr)

	root := t.TempDir()
	code, _, stderr = run(t, "materialize", dir, "--root", root, "--no-cleanup")
	require.Equal(t, 0, code, stderr)
	testutil.AssertTree(t, root, map[string]string{
		"a.txt":   "alpha\n",
		"b/c.txt": "gamma\n",
	})
}

func TestPack_CompanionNeedsOutput(t *testing.T) {
	isolateHome(t)
	src := t.TempDir()
	testutil.WriteFile(t, src, "a.txt", "a")

	code, _, _ := run(t, "pack", "--base", src, "--format", "companion", src)
	assert.Equal(t, 1, code)
}

func TestDoctor(t *testing.T) {
	isolateHome(t)
	code, out, stderr := run(t, "doctor")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, strings.ToLower(out), "lock directory")
}
