package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/quantmind-br/treepack/internal/domain"
)

// StateVersion is the schema version for run record migration
const StateVersion = 1

// RunRecord is the persisted outcome of one materialization run. It is
// everything finalize needs to run phase 2 again without the manifest.
type RunRecord struct {
	Version     int                   `json:"version"`
	RunID       string                `json:"run_id"`
	Manifest    string                `json:"manifest"`
	Format      domain.Format         `json:"format,omitempty"`
	BaseRoot    string                `json:"base_root"`
	Status      domain.Status         `json:"status"`
	Written     []string              `json:"written,omitempty"`
	Failures    []FailureRecord       `json:"failures,omitempty"`
	Artifacts   []string              `json:"artifacts,omitempty"`
	Cleanup     *domain.CleanupReport `json:"cleanup,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at,omitempty"`
	FinalizedAt time.Time             `json:"finalized_at,omitempty"`
}

// FailureRecord is a failed entry as stored in the ledger
type FailureRecord struct {
	Path    string           `json:"path"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message,omitempty"`
}

// NewRunRecord creates a record for a run that is about to start
func NewRunRecord(manifest, baseRoot string) *RunRecord {
	return &RunRecord{
		Version:   StateVersion,
		RunID:     uuid.NewString(),
		Manifest:  manifest,
		BaseRoot:  baseRoot,
		StartedAt: time.Now(),
	}
}

// Apply stores the outcome of a materialization pass
func (r *RunRecord) Apply(result *domain.Result) {
	r.Status = result.Status()
	r.Written = result.Targets()
	r.Failures = nil
	for _, f := range result.Failures() {
		r.Failures = append(r.Failures, FailureRecord{
			Path:    f.Path,
			Kind:    f.Kind,
			Message: f.Message,
		})
	}
	r.FinishedAt = time.Now()
}

// Result rebuilds the pass result from the record. Failed entries carry
// their kind and message but no error value.
func (r *RunRecord) Result() *domain.Result {
	result := &domain.Result{
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, target := range r.Written {
		result.Outcomes = append(result.Outcomes, domain.Written(target, target, 0, false))
	}
	for _, f := range r.Failures {
		kind := f.Kind
		if kind == domain.KindNone {
			kind = domain.KindFilesystem
		}
		result.Outcomes = append(result.Outcomes, domain.Outcome{
			Path:    f.Path,
			Kind:    kind,
			Message: f.Message,
		})
	}
	return result
}

// Finalizable reports whether the recorded run may be finalized
func (r *RunRecord) Finalizable() bool {
	return r != nil && r.Status == domain.StatusSuccess && len(r.Failures) == 0
}

// Finalized reports whether phase 2 has completed without warnings
func (r *RunRecord) Finalized() bool {
	return r != nil && !r.FinalizedAt.IsZero() && !r.Cleanup.HasWarnings()
}

// SetCleanup stores a finalization report
func (r *RunRecord) SetCleanup(report *domain.CleanupReport) {
	r.Cleanup = report
	r.FinalizedAt = time.Now()
}
