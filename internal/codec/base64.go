// Package codec converts manifest payloads to and from their transport
// encoding. Payloads are standard base64 of UTF-8 text.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quantmind-br/treepack/internal/domain"
)

// Ensure Base64 implements domain.Codec
var _ domain.Codec = Base64{}

// Base64 is the payload codec used by every manifest format
type Base64 struct{}

// New returns the default payload codec
func New() Base64 {
	return Base64{}
}

// Decode strips ASCII whitespace, decodes base64 and validates UTF-8.
// Producers that wrap long payloads across lines are tolerated; unpadded
// payloads are accepted.
func (Base64) Decode(payload string) ([]byte, error) {
	compact := stripSpace(payload)

	enc := base64.StdEncoding
	if len(compact)%4 != 0 && !strings.HasSuffix(compact, "=") {
		enc = base64.RawStdEncoding
	}

	data, err := enc.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPayloadDecode, err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: decoded content is not valid UTF-8", domain.ErrPayloadDecode)
	}

	return data, nil
}

// Encode returns the padded standard base64 form of content
func (Base64) Encode(content []byte) string {
	return base64.StdEncoding.EncodeToString(content)
}

// stripSpace removes ASCII whitespace without allocating when there is none
func stripSpace(s string) string {
	if strings.IndexAny(s, " \t\r\n\f\v") < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			continue
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
