package manifest

import (
	"fmt"

	"github.com/quantmind-br/treepack/internal/domain"
)

// Sentinel errors for the manifest package. Each wraps
// domain.ErrManifestFormat so callers can classify them as parse failures.
var (
	// ErrUnknownFormat indicates an unsupported format name
	ErrUnknownFormat = fmt.Errorf("%w: unknown format", domain.ErrManifestFormat)

	// ErrUnsupportedVersion indicates a list manifest version outside ^1
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported manifest version", domain.ErrManifestFormat)

	// ErrSchema indicates a list manifest failed schema validation
	ErrSchema = fmt.Errorf("%w: schema violation", domain.ErrManifestFormat)

	// ErrUnterminatedBlock indicates a source block without ===END
	ErrUnterminatedBlock = fmt.Errorf("%w: unterminated source block", domain.ErrManifestFormat)

	// ErrEmptyContent indicates a file with no content cannot be packed
	ErrEmptyContent = fmt.Errorf("%w: empty content", domain.ErrManifestFormat)
)
