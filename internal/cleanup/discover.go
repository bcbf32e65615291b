package cleanup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// DefaultPatterns match the generator scripts and scratch files that
// accompany a manifest
var DefaultPatterns = []string{
	"_writer.py",
	"_write*.py",
	"_gen*.py",
	"_mk*.py",
	"_bootstrap.py",
	"_encode_helper.py",
	"_compute_b64.py",
	"_precompute.py",
	"_e.py",
	"_b64*.py",
	"_b64encode.js",
	"_create_files.py",
	"_tmp_content.txt",
}

// Discover returns the regular files directly inside dir whose names match
// any of patterns and none of exclude, in lexical order
func Discover(dir string, patterns, exclude []string) ([]string, error) {
	include, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	skip, err := compile(exclude)
	if err != nil {
		return nil, err
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var found []string
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		name := item.Name()
		if matchAny(include, name) && !matchAny(skip, name) {
			found = append(found, filepath.Join(dir, name))
		}
	}
	return found, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
