package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// parseJSONMapping reads a JSON object of path -> payload through the token
// stream so key order and repeated keys survive.
func parseJSONMapping(source string, data []byte) ([]domain.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid JSON: %v", err))
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, domain.NewFormatError(source, 0, "expected a JSON object of path to payload")
	}

	var entries []domain.Entry
	for dec.More() {
		n := len(entries) + 1

		keyTok, err := dec.Token()
		if err != nil {
			return nil, domain.NewFormatError(source, n, fmt.Sprintf("invalid JSON: %v", err))
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, domain.NewFormatError(source, n, fmt.Sprintf("invalid JSON: %v", err))
		}
		var payload string
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, domain.NewFormatError(source, n, fmt.Sprintf("payload for %q is not a string", key))
		}

		entries = append(entries, domain.Entry{Path: key, Payload: payload})
	}

	if _, err := dec.Token(); err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid JSON: %v", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewFormatError(source, 0, "unexpected data after JSON object")
	}

	return entries, nil
}

// parseYAMLMapping walks the document node so order and repeated keys
// survive; a plain map decode would reject or merge them.
func parseYAMLMapping(source string, root *yaml.Node) ([]domain.Entry, error) {
	if root == nil {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, domain.NewFormatError(source, root.Line, "expected a mapping of path to payload")
	}

	entries := make([]domain.Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, domain.NewFormatError(source, k.Line, "path must be a scalar")
		}
		if v.Kind != yaml.ScalarNode {
			return nil, domain.NewFormatError(source, v.Line, fmt.Sprintf("payload for %q is not a string", k.Value))
		}

		payload := v.Value
		if v.Tag == "!!null" {
			payload = ""
		}
		entries = append(entries, domain.Entry{Path: k.Value, Payload: payload})
	}

	return entries, nil
}

// parseTOMLMapping reads top-level string keys. TOML tables are unordered,
// so entries come back in lexical path order.
func parseTOMLMapping(source string, data []byte) ([]domain.Entry, error) {
	var table map[string]any
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid TOML: %v", err))
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]domain.Entry, 0, len(keys))
	for _, k := range keys {
		payload, ok := table[k].(string)
		if !ok {
			return nil, domain.NewFormatError(source, 0, fmt.Sprintf("payload for %q is not a string (quote paths containing dots)", k))
		}
		entries = append(entries, domain.Entry{Path: k, Payload: payload})
	}

	return entries, nil
}

// yamlRoot returns the top-level node of a YAML document, or nil when empty
func yamlRoot(source string, data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid YAML: %v", err))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}
