package cleanup

import "errors"

var (
	// ErrNotFinalizable indicates finalize was asked to run after a failed pass
	ErrNotFinalizable = errors.New("materialization did not fully succeed; refusing to finalize")

	// ErrIsDirectory indicates an artifact path names a directory
	ErrIsDirectory = errors.New("artifact is a directory")
)
