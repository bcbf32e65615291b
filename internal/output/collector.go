package output

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/utils"
)

// ReportIndex is the JSON run report
type ReportIndex struct {
	GeneratedAt time.Time             `json:"generated_at"`
	RunID       string                `json:"run_id,omitempty"`
	Manifest    string                `json:"manifest"`
	BaseRoot    string                `json:"base_root"`
	Phase       string                `json:"phase"`
	Status      domain.Status         `json:"status,omitempty"`
	ExitCode    int                   `json:"exit_code"`
	Error       string                `json:"error,omitempty"`
	Total       int                   `json:"total_entries"`
	Written     int                   `json:"written"`
	Unchanged   int                   `json:"unchanged"`
	Failed      int                   `json:"failed"`
	Outcomes    []domain.Outcome      `json:"outcomes"`
	Cleanup     *domain.CleanupReport `json:"cleanup,omitempty"`
}

// ReportCollector accumulates per-entry outcomes and flushes them as JSON
type ReportCollector struct {
	mu       sync.RWMutex
	outcomes []domain.Outcome
	runID    string
	manifest string
	baseRoot string
	phase    string
	exitCode int
	errMsg   string
	cleanup  *domain.CleanupReport
	path     string
	enabled  bool
}

// CollectorOptions configures a ReportCollector
type CollectorOptions struct {
	Path     string
	Manifest string
	BaseRoot string
}

// NewReportCollector creates a collector. It is disabled when Path is empty.
func NewReportCollector(opts CollectorOptions) *ReportCollector {
	return &ReportCollector{
		outcomes: make([]domain.Outcome, 0),
		manifest: opts.Manifest,
		baseRoot: opts.BaseRoot,
		path:     opts.Path,
		enabled:  opts.Path != "",
	}
}

// Add records one outcome
func (c *ReportCollector) Add(o domain.Outcome) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

// AddResult records every outcome of a pass
func (c *ReportCollector) AddResult(r *domain.Result) {
	if r == nil {
		return
	}
	for _, o := range r.Outcomes {
		c.Add(o)
	}
}

// SetRun records the run id
func (c *ReportCollector) SetRun(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID = id
}

// SetPhase records the last phase reached and the exit code
func (c *ReportCollector) SetPhase(phase string, exitCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phase
	c.exitCode = exitCode
}

// SetError records a run-level error such as a parse failure
func (c *ReportCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = err.Error()
}

// SetCleanup records the cleanup report
func (c *ReportCollector) SetCleanup(report *domain.CleanupReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup = report
}

// Flush writes the report atomically. A report is written even for an empty
// manifest or a parse failure.
func (c *ReportCollector) Flush() error {
	if !c.enabled {
		return nil
	}

	data, err := json.MarshalIndent(c.Index(), "", "  ")
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(c.path); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return WriteFileAtomic(c.path, append(data, '\n'), DefaultFileMode)
}

// Index builds the report from the collected state
func (c *ReportCollector) Index() *ReportIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := &ReportIndex{
		GeneratedAt: time.Now(),
		RunID:       c.runID,
		Manifest:    c.manifest,
		BaseRoot:    c.baseRoot,
		Phase:       c.phase,
		ExitCode:    c.exitCode,
		Error:       c.errMsg,
		Total:       len(c.outcomes),
		Outcomes:    append([]domain.Outcome(nil), c.outcomes...),
		Cleanup:     c.cleanup,
	}
	if idx.Outcomes == nil {
		idx.Outcomes = []domain.Outcome{}
	}

	for _, o := range c.outcomes {
		switch {
		case !o.OK():
			idx.Failed++
		case o.Unchanged:
			idx.Unchanged++
		default:
			idx.Written++
		}
	}

	if c.errMsg == "" {
		idx.Status = (&domain.Result{Outcomes: c.outcomes}).Status()
	}
	return idx
}

// Count returns the number of recorded outcomes
func (c *ReportCollector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.outcomes)
}

// IsEnabled reports whether Flush writes anything
func (c *ReportCollector) IsEnabled() bool {
	return c.enabled
}
