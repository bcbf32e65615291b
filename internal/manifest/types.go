package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/treepack/internal/domain"
)

// SourceFile is raw file content before encoding
type SourceFile struct {
	Path    string
	Content []byte
}

// Formats lists the format names accepted by ParseFormat
func Formats() []domain.Format {
	return []domain.Format{
		domain.FormatJSON,
		domain.FormatYAML,
		domain.FormatTOML,
		domain.FormatList,
		domain.FormatDelimited,
		domain.FormatCaret,
		domain.FormatCompanion,
	}
}

// ParseFormat converts a user supplied name into a format.
// An empty name or "auto" selects detection.
func ParseFormat(name string) (domain.Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return domain.FormatAuto, nil
	case "json", "jsonc":
		return domain.FormatJSON, nil
	case "yaml", "yml":
		return domain.FormatYAML, nil
	case "toml":
		return domain.FormatTOML, nil
	case "list":
		return domain.FormatList, nil
	case "delimited", "blocks", "b64":
		return domain.FormatDelimited, nil
	case "caret":
		return domain.FormatCaret, nil
	case "companion":
		return domain.FormatCompanion, nil
	default:
		return domain.FormatAuto, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}
