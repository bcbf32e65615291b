package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/resolver"
)

// Parse validates adapter output and returns the canonical manifest.
//
// Empty paths and empty payloads are format errors. Two entries naming the
// same file after separator and dot-segment normalization are a
// DuplicatePathError. Paths that are unsafe but unique are accepted here and
// rejected per entry during materialization.
func Parse(source string, format domain.Format, entries []domain.Entry) (*domain.Manifest, error) {
	seen := make(map[string]int, len(entries))
	out := make([]domain.Entry, 0, len(entries))

	for i, e := range entries {
		n := i + 1
		if strings.TrimSpace(e.Path) == "" {
			return nil, domain.NewFormatError(source, n, "empty path")
		}
		if strings.TrimSpace(e.Payload) == "" {
			return nil, domain.NewFormatError(source, n, fmt.Sprintf("empty payload for %s", e.Path))
		}

		key := pathKey(e.Path)
		if first, dup := seen[key]; dup {
			return nil, &domain.DuplicatePathError{Path: e.Path, First: first, Second: n}
		}
		seen[key] = n
		out = append(out, e)
	}

	return &domain.Manifest{
		Source:  source,
		Format:  format,
		Entries: out,
	}, nil
}

func pathKey(p string) string {
	if cleaned, err := resolver.Clean(p); err == nil {
		return cleaned
	}
	return p
}
