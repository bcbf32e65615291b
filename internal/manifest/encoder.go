package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"github.com/quantmind-br/treepack/internal/domain"
	"gopkg.in/yaml.v3"
)

// Encoder produces manifests from raw files
type Encoder struct {
	codec domain.Codec
}

// NewEncoder creates an encoder using codec for payloads
func NewEncoder(codec domain.Codec) *Encoder {
	return &Encoder{codec: codec}
}

// Entries encodes files into manifest entries, keeping their order.
// Empty and non-UTF-8 files are rejected since they cannot round trip.
func (e *Encoder) Entries(files []SourceFile) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, len(files))
	for _, f := range files {
		if len(f.Content) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyContent, f.Path)
		}
		if !utf8.Valid(f.Content) {
			return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrPayloadDecode, f.Path)
		}
		entries = append(entries, domain.Entry{
			Path:    filepath.ToSlash(f.Path),
			Payload: e.codec.Encode(f.Content),
		})
	}
	return entries, nil
}

// Write serializes entries to w. FormatAuto writes a JSON mapping.
func (e *Encoder) Write(w io.Writer, format domain.Format, entries []domain.Entry) error {
	if _, err := Parse("encoder", format, entries); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case domain.FormatAuto, domain.FormatJSON:
		data, err = encodeJSONMapping(entries)
	case domain.FormatList:
		if entries == nil {
			entries = []domain.Entry{}
		}
		data, err = json.MarshalIndent(listDocument{Version: ListVersion, Entries: entries}, "", "  ")
		data = append(data, '\n')
	case domain.FormatYAML:
		data, err = encodeYAMLMapping(entries)
	case domain.FormatTOML:
		table := make(map[string]string, len(entries))
		for _, en := range entries {
			table[en.Path] = en.Payload
		}
		data, err = toml.Marshal(table)
	case domain.FormatDelimited:
		if err := checkBlockPaths(format, entries, blockSeparator, pairSeparator); err != nil {
			return err
		}
		data = joinBlocks(entries, pairSeparator, "\n"+blockSeparator+"\n")
	case domain.FormatCaret:
		if err := checkBlockPaths(format, entries, caretSeparator, "\n"); err != nil {
			return err
		}
		data = joinBlocks(entries, "\n", "\n"+caretSeparator+"\n")
	case domain.FormatCompanion:
		return fmt.Errorf("%w: companion manifests are written with WriteCompanion", ErrUnknownFormat)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s manifest: %w", format, err)
	}

	_, err = w.Write(data)
	return err
}

// WriteCompanion writes one _data_NNNN.txt file per entry into dir and
// returns the files written
func (e *Encoder) WriteCompanion(dir string, entries []domain.Entry) ([]string, error) {
	if _, err := Parse(dir, domain.FormatCompanion, entries); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for i, en := range entries {
		name := filepath.Join(dir, fmt.Sprintf("_data_%04d.txt", i+1))
		if err := os.WriteFile(name, []byte(en.Path+"\n"+en.Payload+"\n"), 0o644); err != nil {
			return files, fmt.Errorf("writing %s: %w", name, err)
		}
		files = append(files, name)
	}
	return files, nil
}

// encodeJSONMapping writes keys in entry order, which encoding/json would
// sort for a map
func encodeJSONMapping(entries []domain.Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, en := range entries {
		k, err := json.Marshal(en.Path)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(en.Payload)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(entries) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encodeYAMLMapping(entries []domain.Entry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, en := range entries {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: en.Path},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: en.Payload},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// checkBlockPaths rejects paths that would be read back split at a separator
func checkBlockPaths(format domain.Format, entries []domain.Entry, separators ...string) error {
	for i, en := range entries {
		for _, sep := range separators {
			if strings.Contains(en.Path, sep) {
				return domain.NewFormatError("encoder", i+1,
					fmt.Sprintf("path %q contains %q and cannot be written as %s", en.Path, sep, format))
			}
		}
	}
	return nil
}

func joinBlocks(entries []domain.Entry, pair, sep string) []byte {
	blocks := make([]string, 0, len(entries))
	for _, en := range entries {
		blocks = append(blocks, en.Path+pair+en.Payload)
	}
	if len(blocks) == 0 {
		return nil
	}
	return []byte(strings.Join(blocks, sep) + "\n")
}
