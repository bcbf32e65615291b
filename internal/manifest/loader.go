package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/quantmind-br/treepack/internal/domain"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Ensure Loader implements domain.ManifestLoader
var _ domain.ManifestLoader = (*Loader)(nil)

// Loader reads manifests from disk and normalizes them
type Loader struct {
	format domain.Format
}

// LoaderOptions contains options for creating a loader
type LoaderOptions struct {
	// Format skips detection when set
	Format domain.Format
}

// NewLoader creates a new manifest loader
func NewLoader(opts LoaderOptions) *Loader {
	return &Loader{format: opts.Format}
}

// Load reads the manifest at location. A directory is read as companion
// files; a file is decompressed when needed and its format detected from the
// extension or, failing that, from its content.
func (l *Loader) Load(location string) (*domain.Manifest, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrManifestFormat, location, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrManifestNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrManifestFormat, location, err)
	}

	if info.IsDir() {
		if l.format != domain.FormatAuto && l.format != domain.FormatCompanion {
			return nil, fmt.Errorf("%w: %s is a directory, format %s needs a file", domain.ErrManifestFormat, location, l.format)
		}
		return loadCompanion(abs)
	}
	if l.format == domain.FormatCompanion {
		return nil, fmt.Errorf("%w: companion format needs a directory, got %s", domain.ErrManifestFormat, location)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrManifestFormat, location, err)
	}

	data, name, err := decompress(abs, data)
	if err != nil {
		return nil, err
	}

	format := l.format
	if format == domain.FormatAuto {
		format = DetectFormat(name, data)
	}

	m, err := l.LoadFromBytes(abs, data, format)
	if err != nil {
		return nil, err
	}
	m.Artifacts = []string{abs}
	return m, nil
}

// LoadFromBytes parses an uncompressed manifest in the given format.
// Mapping JSON and YAML documents with an "entries" array are read as lists.
func (l *Loader) LoadFromBytes(source string, data []byte, format domain.Format) (*domain.Manifest, error) {
	var (
		entries []domain.Entry
		err     error
	)

	switch format {
	case domain.FormatAuto:
		return l.LoadFromBytes(source, data, DetectFormat(source, data))
	case domain.FormatJSON:
		if isJSONList(data) {
			format = domain.FormatList
			entries, err = parseJSONList(source, data)
		} else {
			entries, err = parseJSONMapping(source, data)
		}
	case domain.FormatYAML:
		root, rerr := yamlRoot(source, data)
		if rerr != nil {
			return nil, rerr
		}
		if isYAMLList(root) {
			format = domain.FormatList
			entries, err = parseYAMLList(source, root)
		} else {
			entries, err = parseYAMLMapping(source, root)
		}
	case domain.FormatList:
		if startsWithBrace(data) {
			entries, err = parseJSONList(source, data)
			break
		}
		root, rerr := yamlRoot(source, data)
		if rerr != nil {
			return nil, rerr
		}
		if root == nil {
			return nil, domain.NewFormatError(source, 0, "empty list manifest")
		}
		entries, err = parseYAMLList(source, root)
	case domain.FormatTOML:
		entries, err = parseTOMLMapping(source, data)
	case domain.FormatDelimited:
		entries, err = parseDelimited(source, data)
	case domain.FormatCaret:
		entries, err = parseCaret(source, data)
	case domain.FormatCompanion:
		return nil, fmt.Errorf("%w: companion format needs a directory", domain.ErrManifestFormat)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return Parse(source, format, entries)
}

// DetectFormat chooses a format from the file extension, then from content
func DetectFormat(name string, data []byte) domain.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		return domain.FormatJSON
	case ".yaml", ".yml":
		return domain.FormatYAML
	case ".toml":
		return domain.FormatTOML
	}

	if startsWithBrace(data) {
		return domain.FormatJSON
	}
	if looksCaret(string(data)) {
		return domain.FormatCaret
	}
	return domain.FormatDelimited
}

// decompress inflates gzip or zstd data, detected by suffix or magic bytes.
// It returns the name with the compression suffix removed.
func decompress(name string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case ext == ".gz" || bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: gzip: %v", domain.ErrManifestFormat, name, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: gzip: %v", domain.ErrManifestFormat, name, err)
		}
		return out, trimExt(name, ".gz"), nil

	case ext == ".zst" || bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, "", fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: zstd: %v", domain.ErrManifestFormat, name, err)
		}
		return out, trimExt(name, ".zst"), nil
	}

	return data, name, nil
}

func trimExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}

func startsWithBrace(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
