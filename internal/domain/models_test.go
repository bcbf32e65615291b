package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifest_Len(t *testing.T) {
	var nilManifest *Manifest
	assert.Equal(t, 0, nilManifest.Len())

	m := &Manifest{
		Entries: []Entry{
			{Path: "index.ts", Payload: "eA=="},
			{Path: "providers/base.ts", Payload: "eQ=="},
		},
	}
	assert.Equal(t, 2, m.Len())
}

func TestOutcome(t *testing.T) {
	ok := Written("a.ts", "/root/a.ts", 12, false)
	assert.True(t, ok.OK())
	assert.Equal(t, KindNone, ok.Kind)

	failed := Failed("b.ts", fmt.Errorf("%w: bad", ErrPayloadDecode))
	assert.False(t, failed.OK())
	assert.Equal(t, KindPayloadDecode, failed.Kind)
	assert.Contains(t, failed.Message, "bad")
}

func TestResult_Status(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		want     Status
	}{
		{
			name: "empty manifest is success",
			want: StatusSuccess,
		},
		{
			name: "all written",
			outcomes: []Outcome{
				Written("a", "/r/a", 1, false),
				Written("b", "/r/b", 1, true),
			},
			want: StatusSuccess,
		},
		{
			name: "one failure",
			outcomes: []Outcome{
				Written("a", "/r/a", 1, false),
				Failed("b", ErrPayloadDecode),
				Written("c", "/r/c", 1, false),
			},
			want: StatusPartialFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{Outcomes: tt.outcomes}
			assert.Equal(t, tt.want, r.Status())
			assert.Equal(t, tt.want == StatusSuccess, r.Succeeded())
		})
	}
}

func TestResult_WrittenAndFailures(t *testing.T) {
	r := &Result{Outcomes: []Outcome{
		Written("a", "/r/a", 1, false),
		Failed("b", ErrPayloadDecode),
		Written("c", "/r/c", 1, false),
		Failed("../x", ErrPathTraversal),
	}}

	assert.Equal(t, []string{"a", "c"}, r.Written())
	assert.Equal(t, []string{"/r/a", "/r/c"}, r.Targets())

	failures := r.Failures()
	assert.Len(t, failures, 2)
	assert.Equal(t, "b", failures[0].Path)
	assert.Equal(t, KindPayloadDecode, failures[0].Kind)
	assert.Equal(t, "../x", failures[1].Path)
	assert.Equal(t, KindPathTraversal, failures[1].Kind)
}

func TestResult_NilSucceeded(t *testing.T) {
	var r *Result
	assert.False(t, r.Succeeded())
}

func TestCleanupReport(t *testing.T) {
	var nilReport *CleanupReport
	assert.False(t, nilReport.HasWarnings())

	report := &CleanupReport{}
	assert.False(t, report.HasWarnings())

	report.Warn("_writer.py", errors.New("permission denied"))
	assert.True(t, report.HasWarnings())
	assert.Equal(t, "_writer.py", report.Warnings[0].Path)
	assert.Equal(t, "permission denied", report.Warnings[0].Message)
}
