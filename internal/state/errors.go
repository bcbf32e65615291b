package state

import "errors"

var (
	// ErrStateNotFound indicates no run record exists for a manifest
	ErrStateNotFound = errors.New("run record not found")

	// ErrStateCorrupted indicates the run record contains invalid JSON
	ErrStateCorrupted = errors.New("run record is corrupted")

	// ErrVersionMismatch indicates an incompatible record schema version
	ErrVersionMismatch = errors.New("run record version mismatch")

	// ErrRootLocked indicates another run holds the base root
	ErrRootLocked = errors.New("base root is locked by another run")
)
