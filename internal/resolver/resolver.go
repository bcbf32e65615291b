// Package resolver maps manifest-relative paths onto a base root and refuses
// any path that could land outside it.
package resolver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/quantmind-br/treepack/internal/domain"
)

// DefaultDirMode is the permission used for created parent directories
const DefaultDirMode os.FileMode = 0o755

// Ensure Resolver implements domain.PathResolver
var _ domain.PathResolver = (*Resolver)(nil)

// Resolver resolves relative paths against a fixed base root
type Resolver struct {
	base    string
	dirMode os.FileMode
}

// Options contains options for creating a resolver
type Options struct {
	Base    string
	DirMode os.FileMode
}

// New creates a resolver rooted at opts.Base. The base is made absolute but
// is not created; parent directories are created per entry on demand.
func New(opts Options) (*Resolver, error) {
	if strings.TrimSpace(opts.Base) == "" {
		return nil, fmt.Errorf("base root is required")
	}
	abs, err := filepath.Abs(opts.Base)
	if err != nil {
		return nil, fmt.Errorf("resolving base root %s: %w", opts.Base, err)
	}
	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	return &Resolver{
		base:    filepath.Clean(abs),
		dirMode: opts.DirMode,
	}, nil
}

// Base returns the absolute base root
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the absolute target for relPath.
//
// Rejected with domain.ErrPathTraversal: empty paths, paths containing NUL,
// absolute paths (POSIX, UNC-style or drive-letter), paths that clean to the
// base itself, paths whose cleaned form climbs above the base, and paths
// that would be redirected by a symlink already present under the base.
// Backslashes are treated as separators so manifests produced on Windows
// resolve identically everywhere.
func (r *Resolver) Resolve(relPath string) (string, error) {
	cleaned, err := Clean(relPath)
	if err != nil {
		return "", err
	}

	native := filepath.FromSlash(cleaned)
	lexical := filepath.Join(r.base, native)

	secure, err := securejoin.SecureJoin(r.base, native)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrPathTraversal, relPath, err)
	}
	if secure != lexical {
		return "", fmt.Errorf("%w: %s is redirected by a symlink under the base root", domain.ErrPathTraversal, relPath)
	}

	return lexical, nil
}

// EnsureParent creates the parent directories of target. It is a no-op when
// they already exist and never removes anything.
func (r *Resolver) EnsureParent(target string) error {
	dir := filepath.Dir(target)
	if !r.Contains(dir) {
		return fmt.Errorf("%w: %s is outside the base root", domain.ErrPathTraversal, dir)
	}
	if err := os.MkdirAll(dir, r.dirMode); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrFilesystem, dir, err)
	}
	return nil
}

// Contains reports whether p is the base root or lies beneath it
func (r *Resolver) Contains(p string) bool {
	rel, err := filepath.Rel(r.base, p)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

// Clean validates a manifest path and returns its slash-separated canonical
// form. Two manifest paths name the same file exactly when their Clean forms
// are equal.
func Clean(relPath string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrPathTraversal)
	}
	if strings.ContainsRune(relPath, 0) {
		return "", fmt.Errorf("%w: %q contains NUL", domain.ErrPathTraversal, relPath)
	}

	slashed := strings.ReplaceAll(relPath, `\`, "/")
	if isAbsolute(slashed) || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s is absolute", domain.ErrPathTraversal, relPath)
	}

	cleaned := path.Clean(slashed)
	switch {
	case cleaned == ".":
		return "", fmt.Errorf("%w: %s refers to the base root itself", domain.ErrPathTraversal, relPath)
	case cleaned == "..", strings.HasPrefix(cleaned, "../"):
		return "", fmt.Errorf("%w: %s escapes the base root", domain.ErrPathTraversal, relPath)
	}

	return cleaned, nil
}

// isAbsolute catches rooted and drive-qualified paths on every platform
func isAbsolute(slashed string) bool {
	if strings.HasPrefix(slashed, "/") {
		return true
	}
	if len(slashed) >= 2 && slashed[1] == ':' {
		c := slashed[0]
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	}
	return false
}
