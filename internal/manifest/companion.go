package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/quantmind-br/treepack/internal/domain"
)

// CompanionPattern matches per-entry companion files
const CompanionPattern = "_data_*.txt"

var companionGlob = glob.MustCompile(CompanionPattern)

// IsCompanion reports whether name is a companion file name
func IsCompanion(name string) bool {
	return companionGlob.Match(name)
}

// loadCompanion reads every companion file in dir in lexical order. Each
// file becomes one entry and one artifact.
func loadCompanion(dir string) (*domain.Manifest, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrManifestFormat, dir, err)
	}

	var (
		entries   []domain.Entry
		artifacts []string
	)
	for _, item := range items {
		if item.IsDir() || !IsCompanion(item.Name()) {
			continue
		}

		file := filepath.Join(dir, item.Name())
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrManifestFormat, file, err)
		}

		text := strings.TrimSpace(normalizeEOL(string(data)))
		p, payload, ok := strings.Cut(text, "\n")
		if !ok {
			return nil, domain.NewFormatError(file, 0, "companion file has no payload line")
		}

		entries = append(entries, domain.Entry{
			Path:    strings.TrimSpace(p),
			Payload: strings.TrimSpace(payload),
		})
		artifacts = append(artifacts, file)
	}

	m, err := Parse(dir, domain.FormatCompanion, entries)
	if err != nil {
		return nil, err
	}
	m.Artifacts = artifacts
	return m, nil
}
