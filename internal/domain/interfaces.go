package domain

// Codec converts between transport-safe payloads and raw content
type Codec interface {
	// Decode turns a payload into validated UTF-8 bytes
	Decode(payload string) ([]byte, error)
	// Encode is the exact inverse of Decode
	Encode(content []byte) string
}

// PathResolver maps manifest-relative paths onto the base root
type PathResolver interface {
	// Base returns the absolute base root
	Base() string
	// Resolve returns the absolute target for a relative path
	Resolve(relPath string) (string, error)
	// EnsureParent creates the target's parent directories if missing
	EnsureParent(target string) error
}

// WriteStat describes a completed write
type WriteStat struct {
	Bytes     int
	Unchanged bool
}

// FileWriter commits one file's content to disk
type FileWriter interface {
	// Write normalizes and atomically stores content at target
	Write(target string, content []byte) (WriteStat, error)
}

// Remover deletes a single artifact
type Remover interface {
	// Remove deletes path; a missing path returns an fs.ErrNotExist error
	Remove(path string) error
}

// ManifestLoader reads a manifest location into the canonical form
type ManifestLoader interface {
	// Load reads and parses the manifest at location
	Load(location string) (*Manifest, error)
}
