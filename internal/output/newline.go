package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/transform"
)

// LineEnding is the canonical line terminator written to disk
type LineEnding string

// Supported line endings
const (
	LF   LineEnding = "lf"
	CRLF LineEnding = "crlf"
)

// ParseLineEnding converts a config value into a LineEnding
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lf", "\n":
		return LF, nil
	case "crlf", "\r\n":
		return CRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q (use lf or crlf)", s)
	}
}

func (le LineEnding) bytes() []byte {
	if le == CRLF {
		return []byte("\r\n")
	}
	return []byte("\n")
}

// NewlineNormalizer rewrites \r\n, lone \r and \n to one terminator
type NewlineNormalizer struct {
	transform.NopResetter
	eol []byte
}

// NewNewlineNormalizer returns a transformer producing le
func NewNewlineNormalizer(le LineEnding) *NewlineNormalizer {
	return &NewlineNormalizer{eol: le.bytes()}
}

// Transform implements transform.Transformer
func (n *NewlineNormalizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '\r' && c != '\n' {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		consumed := 1
		if c == '\r' {
			if nSrc+1 == len(src) && !atEOF {
				// a following \n may arrive in the next chunk
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
				consumed = 2
			}
		}

		if nDst+len(n.eol) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], n.eol)
		nSrc += consumed
	}
	return nDst, nSrc, nil
}

// Normalize returns content with every line terminator replaced by le
func Normalize(content []byte, le LineEnding) ([]byte, error) {
	out, _, err := transform.Bytes(NewNewlineNormalizer(le), content)
	if err != nil {
		return nil, fmt.Errorf("normalizing line endings: %w", err)
	}
	return out, nil
}
