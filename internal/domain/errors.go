package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error kind
var (
	// ErrManifestFormat indicates the manifest is structurally malformed
	ErrManifestFormat = errors.New("manifest format error")

	// ErrDuplicatePath indicates two entries share a relative path
	ErrDuplicatePath = errors.New("duplicate path")

	// ErrPayloadDecode indicates a payload is not valid base64 or not UTF-8
	ErrPayloadDecode = errors.New("payload decode error")

	// ErrPathTraversal indicates a path is absolute, empty, or escapes the base root
	ErrPathTraversal = errors.New("path traversal")

	// ErrFilesystem indicates a filesystem operation failed
	ErrFilesystem = errors.New("filesystem error")

	// ErrManifestNotFound indicates the manifest location does not exist
	ErrManifestNotFound = errors.New("manifest not found")
)

// ErrorKind names the class of a failure in reports and exit status
type ErrorKind string

// Error kinds
const (
	KindNone             ErrorKind = ""
	KindManifestFormat   ErrorKind = "ManifestFormatError"
	KindDuplicatePath    ErrorKind = "DuplicatePathError"
	KindPayloadDecode    ErrorKind = "PayloadDecodeError"
	KindPathTraversal    ErrorKind = "PathTraversalError"
	KindFilesystem       ErrorKind = "FilesystemError"
	KindManifestNotFound ErrorKind = "ManifestNotFoundError"
)

// KindOf classifies an error by the sentinel it wraps.
// Unclassified errors are reported as filesystem errors since every
// remaining failure mode of a write is an I/O failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var entryErr *EntryError
	if errors.As(err, &entryErr) && entryErr.Kind != KindNone {
		return entryErr.Kind
	}

	switch {
	case errors.Is(err, ErrDuplicatePath):
		return KindDuplicatePath
	case errors.Is(err, ErrManifestNotFound):
		return KindManifestNotFound
	case errors.Is(err, ErrManifestFormat):
		return KindManifestFormat
	case errors.Is(err, ErrPayloadDecode):
		return KindPayloadDecode
	case errors.Is(err, ErrPathTraversal):
		return KindPathTraversal
	default:
		return KindFilesystem
	}
}

// IsParseError reports whether err aborts a run before any write
func IsParseError(err error) bool {
	return errors.Is(err, ErrManifestFormat) ||
		errors.Is(err, ErrDuplicatePath) ||
		errors.Is(err, ErrManifestNotFound)
}

// EntryError represents a failure tied to one manifest entry
type EntryError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// NewEntryError creates a new EntryError, classifying err when kind is empty
func NewEntryError(path string, err error) *EntryError {
	return &EntryError{
		Path: path,
		Kind: KindOf(err),
		Err:  err,
	}
}

// FormatError represents a malformed manifest segment
type FormatError struct {
	Source  string
	Segment int // 1-based block, entry or line index; 0 if unknown
	Message string
}

func (e *FormatError) Error() string {
	if e.Segment > 0 {
		return fmt.Sprintf("%s: segment %d: %s", e.Source, e.Segment, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *FormatError) Unwrap() error {
	return ErrManifestFormat
}

// NewFormatError creates a new FormatError
func NewFormatError(source string, segment int, message string) *FormatError {
	return &FormatError{
		Source:  source,
		Segment: segment,
		Message: message,
	}
}

// DuplicatePathError reports the repeated path and where it was first seen
type DuplicatePathError struct {
	Path   string
	First  int
	Second int
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path %q (entries %d and %d)", e.Path, e.First, e.Second)
}

func (e *DuplicatePathError) Unwrap() error {
	return ErrDuplicatePath
}
