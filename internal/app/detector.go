package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/treepack/internal/cleanup"
	"github.com/quantmind-br/treepack/internal/domain"
)

// ManifestDir returns the directory a manifest lives in: the parent of a
// manifest file, or a companion directory itself
func ManifestDir(location string) (string, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// DetectRoot returns the base root for a run: root when given, otherwise
// the manifest's directory
func DetectRoot(location, root string) (string, error) {
	if root != "" {
		return filepath.Abs(root)
	}
	return ManifestDir(location)
}

// DetectArtifacts lists everything finalize should remove after a
// successful run: the files the manifest was read from, explicitly named
// extras, and generator artifacts matching patterns beside the manifest.
// The list is absolute and duplicate-free, in that order.
func DetectArtifacts(m *domain.Manifest, location string, extra, patterns, exclude []string) ([]string, error) {
	var artifacts []string
	seen := make(map[string]bool)
	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving artifact %s: %w", p, err)
		}
		if !seen[abs] {
			seen[abs] = true
			artifacts = append(artifacts, abs)
		}
		return nil
	}

	if m != nil {
		for _, a := range m.Artifacts {
			if err := add(a); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range extra {
		if err := add(a); err != nil {
			return nil, err
		}
	}

	if len(patterns) > 0 {
		dir, err := ManifestDir(location)
		if err != nil {
			return nil, err
		}
		found, err := cleanup.Discover(dir, patterns, exclude)
		if err != nil {
			return nil, err
		}
		for _, a := range found {
			if err := add(a); err != nil {
				return nil, err
			}
		}
	}

	return artifacts, nil
}
