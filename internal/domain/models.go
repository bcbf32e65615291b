package domain

import "time"

// Format identifies a manifest serialization
type Format string

// Supported manifest formats
const (
	FormatAuto      Format = ""
	FormatJSON      Format = "json"      // object of path -> payload
	FormatYAML      Format = "yaml"      // mapping of path -> payload
	FormatTOML      Format = "toml"      // table of path -> payload
	FormatList      Format = "list"      // {"version", "entries": [{path, payload}]}
	FormatDelimited Format = "delimited" // path===payload blocks split by ---
	FormatCaret     Format = "caret"     // path\npayload blocks split by ^^
	FormatCompanion Format = "companion" // directory of _data_*.txt files
)

// Entry is one (relative path, encoded payload) pair
type Entry struct {
	Path    string `json:"path" yaml:"path"`
	Payload string `json:"payload" yaml:"payload"`
}

// Manifest is an ordered, duplicate-free sequence of entries
type Manifest struct {
	Source    string   `json:"source"`
	Format    Format   `json:"format"`
	Entries   []Entry  `json:"entries"`
	Artifacts []string `json:"artifacts,omitempty"` // files the manifest was read from
}

// Len returns the number of entries
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Outcome is the per-entry result of a materialization pass.
// An outcome with a nil Err is Written, otherwise Failed.
type Outcome struct {
	Path      string    `json:"path"`
	Target    string    `json:"target,omitempty"`
	Kind      ErrorKind `json:"kind,omitempty"`
	Err       error     `json:"-"`
	Message   string    `json:"error,omitempty"`
	Bytes     int       `json:"bytes,omitempty"`
	Unchanged bool      `json:"unchanged,omitempty"`
}

// Written creates a successful outcome
func Written(path, target string, bytes int, unchanged bool) Outcome {
	return Outcome{
		Path:      path,
		Target:    target,
		Bytes:     bytes,
		Unchanged: unchanged,
	}
}

// Failed creates a failed outcome, classifying err
func Failed(path string, err error) Outcome {
	return Outcome{
		Path:    path,
		Kind:    KindOf(err),
		Err:     err,
		Message: err.Error(),
	}
}

// OK reports whether the entry was written
func (o Outcome) OK() bool {
	return o.Err == nil && o.Kind == KindNone
}

// Status is the aggregate result of a materialization pass
type Status string

// Aggregate statuses
const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
)

// Result aggregates the outcomes of one pass in manifest order
type Result struct {
	Outcomes   []Outcome     `json:"outcomes"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Status returns StatusSuccess only if every outcome is written.
// A pass over zero entries is a success.
func (r *Result) Status() Status {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return StatusPartialFailure
		}
	}
	return StatusSuccess
}

// Succeeded is shorthand for Status() == StatusSuccess
func (r *Result) Succeeded() bool {
	return r != nil && r.Status() == StatusSuccess
}

// Written returns the paths that were written
func (r *Result) Written() []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.OK() {
			paths = append(paths, o.Path)
		}
	}
	return paths
}

// Targets returns the absolute targets that were written
func (r *Result) Targets() []string {
	var targets []string
	for _, o := range r.Outcomes {
		if o.OK() && o.Target != "" {
			targets = append(targets, o.Target)
		}
	}
	return targets
}

// Failures returns the failed outcomes
func (r *Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// CleanupWarning records one artifact that could not be removed
type CleanupWarning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// CleanupReport collects the outcome of finalization
type CleanupReport struct {
	Removed  []string         `json:"removed,omitempty"`
	Missing  []string         `json:"missing,omitempty"`
	Skipped  []string         `json:"skipped,omitempty"` // matched but produced by this run
	Warnings []CleanupWarning `json:"warnings,omitempty"`
}

// HasWarnings reports whether any deletion failed
func (c *CleanupReport) HasWarnings() bool {
	return c != nil && len(c.Warnings) > 0
}

// Warn records a failed deletion
func (c *CleanupReport) Warn(path string, err error) {
	c.Warnings = append(c.Warnings, CleanupWarning{
		Path:    path,
		Message: err.Error(),
		Err:     err,
	})
}
