package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/jsonc"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// ListVersion is the version written by the encoder
const ListVersion = "1.0.0"

// supportedVersions is the semver constraint a list manifest must satisfy
const supportedVersions = "^1"

//go:embed schema/list.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// listDocument is the explicit list form
type listDocument struct {
	Version any            `json:"version,omitempty" yaml:"version,omitempty"`
	Entries []domain.Entry `json:"entries" yaml:"entries"`
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("list.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("list.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// isJSONList reports whether a JSON document is an object whose "entries"
// member is an array
func isJSONList(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &probe); err != nil {
		return false
	}
	raw, ok := probe["entries"]
	return ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '['
}

// isYAMLList reports whether a YAML mapping has an "entries" sequence
func isYAMLList(root *yaml.Node) bool {
	if root == nil || root.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "entries" && root.Content[i+1].Kind == yaml.SequenceNode {
			return true
		}
	}
	return false
}

// parseJSONList validates and decodes a JSON list manifest
func parseJSONList(source string, data []byte) ([]domain.Entry, error) {
	return parseList(source, jsonc.ToJSON(data))
}

// parseYAMLList converts a YAML list manifest to JSON and validates it
func parseYAMLList(source string, root *yaml.Node) ([]domain.Entry, error) {
	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid YAML: %v", err))
	}
	jsonData, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("converting to JSON: %v", err))
	}
	return parseList(source, jsonData)
}

func parseList(source string, jsonData []byte) ([]domain.Entry, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("%w: %s: %s", ErrSchema, source, firstCause(ve))
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, source, err)
	}

	var doc listDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, domain.NewFormatError(source, 0, fmt.Sprintf("invalid list manifest: %v", err))
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return doc.Entries, nil
}

// checkVersion accepts a missing version as the current one
func checkVersion(v any) error {
	var raw string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		raw = val
	case float64:
		raw = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		raw = fmt.Sprint(val)
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, raw, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, supportedVersions)
	}
	return nil
}

// firstCause returns the most specific message in a validation error tree
func firstCause(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.ErrorKind == nil {
		return ve.Error()
	}
	return fmt.Sprintf("/%s: %s", strings.Join(ve.InstanceLocation, "/"), ve.ErrorKind.LocalizedString(printer))
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeYAML(v)
		}
		return out
	default:
		return v
	}
}
