// Package cleanup removes the consumed manifest and generator artifacts once
// a materialization pass has fully succeeded.
package cleanup

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/utils"
)

// Manager finalizes successful runs
type Manager struct {
	remover domain.Remover
	retrier *Retrier
	logger  *utils.Logger
}

// ManagerOptions contains options for creating a Manager
type ManagerOptions struct {
	Remover domain.Remover
	Retry   RetrierOptions
	Logger  *utils.Logger
}

// NewManager creates a cleanup manager
func NewManager(opts ManagerOptions) *Manager {
	if opts.Remover == nil {
		opts.Remover = FileRemover{}
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &Manager{
		remover: opts.Remover,
		retrier: NewRetrier(opts.Retry),
		logger:  opts.Logger.WithComponent("cleanup"),
	}
}

// Finalize deletes each artifact independently and reports what happened.
//
// It returns ErrNotFinalizable, touching nothing, unless result is a full
// success. Files written by the run are skipped even when listed. A missing
// artifact is recorded as missing; any other failure is retried and then
// recorded as a warning. Finalize never stops early.
func (m *Manager) Finalize(result *domain.Result, artifacts []string) (*domain.CleanupReport, error) {
	if !result.Succeeded() {
		return nil, ErrNotFinalizable
	}

	written := make(map[string]bool)
	for _, t := range result.Targets() {
		written[normalize(t)] = true
	}

	report := &domain.CleanupReport{}
	seen := make(map[string]bool, len(artifacts))

	for _, artifact := range artifacts {
		p := normalize(artifact)
		if seen[p] {
			continue
		}
		seen[p] = true

		if written[p] {
			m.logger.Debug().Str("path", p).Msg("Artifact was produced by this run, keeping it")
			report.Skipped = append(report.Skipped, p)
			continue
		}

		err := m.retrier.Retry(func() error {
			return m.remover.Remove(p)
		})

		switch {
		case err == nil:
			m.logger.Debug().Str("path", p).Msg("Removed artifact")
			report.Removed = append(report.Removed, p)
		case errors.Is(err, fs.ErrNotExist):
			m.logger.Debug().Str("path", p).Msg("Artifact already gone")
			report.Missing = append(report.Missing, p)
		default:
			m.logger.Warn().Err(err).Str("path", p).Msg("Could not remove artifact")
			report.Warn(p, err)
		}
	}

	return report, nil
}

func normalize(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
