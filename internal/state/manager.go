// Package state persists run records outside the base root so that
// finalization can be retried independently of materialization, and guards
// each base root with a file lock.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/treepack/internal/output"
	"github.com/quantmind-br/treepack/internal/utils"
)

// DefaultDir is the default ledger directory
const DefaultDir = "~/.treepack/state"

// Manager stores one RunRecord per manifest location
type Manager struct {
	dir      string
	logger   *utils.Logger
	disabled bool
}

// ManagerOptions contains options for creating a Manager
type ManagerOptions struct {
	Dir      string
	Logger   *utils.Logger
	Disabled bool
}

// NewManager creates a ledger manager
func NewManager(opts ManagerOptions) *Manager {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	return &Manager{
		dir:      utils.ExpandPath(opts.Dir),
		logger:   opts.Logger.WithComponent("state"),
		disabled: opts.Disabled,
	}
}

// Dir returns the ledger directory
func (m *Manager) Dir() string {
	return m.dir
}

// IsDisabled reports whether records are persisted
func (m *Manager) IsDisabled() bool {
	return m.disabled
}

// Key returns the ledger key of a manifest location
func Key(location string) string {
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return utils.HashString(filepath.Clean(location))
}

// Path returns the record file for a manifest location
func (m *Manager) Path(location string) string {
	return filepath.Join(m.dir, Key(location)+".json")
}

// Load reads the record for a manifest location
func (m *Manager) Load(location string) (*RunRecord, error) {
	if m.disabled {
		return nil, ErrStateNotFound
	}

	path := m.Path(location)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupted, path, err)
	}

	if rec.Version != StateVersion {
		m.logger.Warn().
			Int("file_version", rec.Version).
			Int("expected_version", StateVersion).
			Str("path", path).
			Msg("Run record version mismatch")
		return nil, ErrVersionMismatch
	}

	return &rec, nil
}

// Save writes rec atomically under the key of its manifest
func (m *Manager) Save(rec *RunRecord) error {
	if m.disabled {
		return nil
	}
	if rec == nil || rec.Manifest == "" {
		return errors.New("run record has no manifest location")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	path := m.Path(rec.Manifest)
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	if err := output.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return err
	}

	m.logger.Debug().
		Str("run_id", rec.RunID).
		Str("status", string(rec.Status)).
		Str("path", path).
		Msg("Run record saved")
	return nil
}

// Delete removes the record for a manifest location. A missing record is
// not an error.
func (m *Manager) Delete(location string) error {
	if m.disabled {
		return nil
	}
	err := os.Remove(m.Path(location))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
