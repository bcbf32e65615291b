package state_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/state"
	"github.com/quantmind-br/treepack/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *state.Manager {
	t.Helper()
	return state.NewManager(state.ManagerOptions{
		Dir:    t.TempDir(),
		Logger: utils.NewLogger(utils.LoggerOptions{Level: "error"}),
	})
}

func TestNewManager_Defaults(t *testing.T) {
	manager := state.NewManager(state.ManagerOptions{})

	assert.NotNil(t, manager)
	assert.False(t, manager.IsDisabled())
	assert.Contains(t, manager.Dir(), ".treepack")
}

func TestKey_StableAndDistinct(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "_b64.txt")

	assert.Equal(t, state.Key(a), state.Key(filepath.Join(dir, ".", "_b64.txt")))
	assert.NotEqual(t, state.Key(a), state.Key(filepath.Join(dir, "_data.txt")))
	assert.Len(t, state.Key(a), 64)
}

func TestManager_Load_NotFound(t *testing.T) {
	manager := newManager(t)

	rec, err := manager.Load("/nowhere/_b64.txt")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
	assert.Nil(t, rec)
}

func TestManager_SaveLoad(t *testing.T) {
	manager := newManager(t)

	rec := state.NewRunRecord("/work/_b64.txt", "/work")
	rec.Format = domain.FormatJSON
	rec.Artifacts = []string{"/work/_b64.txt", "/work/_writer.py"}
	rec.Apply(&domain.Result{Outcomes: []domain.Outcome{
		domain.Written("a.ts", "/work/a.ts", 3, false),
		domain.Written("b.ts", "/work/b.ts", 4, true),
	}})

	require.NoError(t, manager.Save(rec))

	_, err := os.Stat(manager.Path("/work/_b64.txt"))
	require.NoError(t, err)

	loaded, err := manager.Load("/work/_b64.txt")
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, loaded.RunID)
	assert.Equal(t, domain.StatusSuccess, loaded.Status)
	assert.Equal(t, []string{"/work/a.ts", "/work/b.ts"}, loaded.Written)
	assert.Equal(t, rec.Artifacts, loaded.Artifacts)
	assert.Equal(t, domain.FormatJSON, loaded.Format)
	assert.True(t, loaded.Finalizable())
	assert.False(t, loaded.Finalized())

	entries, err := os.ReadDir(manager.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging files left behind")
}

func TestManager_Save_Overwrites(t *testing.T) {
	manager := newManager(t)

	rec := state.NewRunRecord("/work/_b64.txt", "/work")
	rec.Apply(&domain.Result{Outcomes: []domain.Outcome{
		domain.Failed("b.ts", domain.ErrPayloadDecode),
	}})
	require.NoError(t, manager.Save(rec))

	retry := state.NewRunRecord("/work/_b64.txt", "/work")
	retry.Apply(&domain.Result{})
	require.NoError(t, manager.Save(retry))

	loaded, err := manager.Load("/work/_b64.txt")
	require.NoError(t, err)
	assert.Equal(t, retry.RunID, loaded.RunID)
	assert.Empty(t, loaded.Failures)
}

func TestManager_Save_RequiresManifest(t *testing.T) {
	manager := newManager(t)
	assert.Error(t, manager.Save(&state.RunRecord{}))
	assert.Error(t, manager.Save(nil))
}

func TestManager_Load_Corrupted(t *testing.T) {
	manager := newManager(t)

	path := manager.Path("/work/_b64.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("invalid json{"), 0o644))

	_, err := manager.Load("/work/_b64.txt")
	assert.ErrorIs(t, err, state.ErrStateCorrupted)
}

func TestManager_Load_VersionMismatch(t *testing.T) {
	manager := newManager(t)

	data, err := json.Marshal(map[string]any{
		"version":  999,
		"manifest": "/work/_b64.txt",
	})
	require.NoError(t, err)

	path := manager.Path("/work/_b64.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = manager.Load("/work/_b64.txt")
	assert.ErrorIs(t, err, state.ErrVersionMismatch)
}

func TestManager_Disabled(t *testing.T) {
	dir := t.TempDir()
	manager := state.NewManager(state.ManagerOptions{Dir: dir, Disabled: true})

	rec := state.NewRunRecord("/work/_b64.txt", "/work")
	require.NoError(t, manager.Save(rec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = manager.Load("/work/_b64.txt")
	assert.ErrorIs(t, err, state.ErrStateNotFound)
	assert.NoError(t, manager.Delete("/work/_b64.txt"))
}

func TestManager_Delete(t *testing.T) {
	manager := newManager(t)

	require.NoError(t, manager.Save(state.NewRunRecord("/work/_b64.txt", "/work")))
	require.NoError(t, manager.Delete("/work/_b64.txt"))

	_, err := manager.Load("/work/_b64.txt")
	assert.ErrorIs(t, err, state.ErrStateNotFound)

	assert.NoError(t, manager.Delete("/work/_b64.txt"))
}

func TestRunRecord_Result(t *testing.T) {
	rec := state.NewRunRecord("/work/_b64.txt", "/work")
	rec.Apply(&domain.Result{Outcomes: []domain.Outcome{
		domain.Written("a.ts", "/work/a.ts", 1, false),
		domain.Failed("../x", errors.New("boom")),
	}})

	assert.Equal(t, domain.StatusPartialFailure, rec.Status)
	require.Len(t, rec.Failures, 1)
	assert.Equal(t, domain.KindFilesystem, rec.Failures[0].Kind)
	assert.False(t, rec.Finalizable())

	result := rec.Result()
	assert.False(t, result.Succeeded())
	assert.Equal(t, []string{"/work/a.ts"}, result.Targets())
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, "../x", result.Failures()[0].Path)
}

func TestRunRecord_SetCleanup(t *testing.T) {
	rec := state.NewRunRecord("/work/_b64.txt", "/work")
	rec.Apply(&domain.Result{})

	report := &domain.CleanupReport{}
	report.Warn("/work/_b64.txt", errors.New("busy"))
	rec.SetCleanup(report)
	assert.False(t, rec.Finalized())

	rec.SetCleanup(&domain.CleanupReport{Removed: []string{"/work/_b64.txt"}})
	assert.True(t, rec.Finalized())
}

func TestNewRunRecord_UniqueIDs(t *testing.T) {
	a := state.NewRunRecord("/m", "/r")
	b := state.NewRunRecord("/m", "/r")
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, state.StateVersion, a.Version)
}
