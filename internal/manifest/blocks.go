package manifest

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/treepack/internal/domain"
)

const (
	blockSeparator = "---"
	pairSeparator  = "==="
	caretSeparator = "^^"
)

// parseDelimited reads path===payload blocks separated by "---". Blank
// blocks are skipped.
func parseDelimited(source string, data []byte) ([]domain.Entry, error) {
	var entries []domain.Entry

	for i, block := range splitDelimited(normalizeEOL(string(data))) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		p, payload, ok := strings.Cut(block, pairSeparator)
		if !ok {
			return nil, domain.NewFormatError(source, i+1, "block has no === separator between path and payload")
		}
		entries = append(entries, domain.Entry{
			Path:    strings.TrimSpace(p),
			Payload: strings.TrimSpace(payload),
		})
	}

	return entries, nil
}

// splitDelimited splits on every "---", not only on separator lines, so
// blocks run together on one line still come apart. Base64 never contains
// '-', so a payload cannot hold the separator.
func splitDelimited(text string) []string {
	return strings.Split(text, blockSeparator)
}

// parseCaret reads blocks separated by "^^", each with the path on its first
// line and the payload on the rest.
func parseCaret(source string, data []byte) ([]domain.Entry, error) {
	var entries []domain.Entry

	for i, block := range strings.Split(normalizeEOL(string(data)), caretSeparator) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		p, payload, ok := strings.Cut(block, "\n")
		if !ok {
			return nil, domain.NewFormatError(source, i+1, fmt.Sprintf("block %q has no payload line", truncate(block, 40)))
		}
		entries = append(entries, domain.Entry{
			Path:    strings.TrimSpace(p),
			Payload: strings.TrimSpace(payload),
		})
	}

	return entries, nil
}

// looksCaret reports whether text uses caret blocks rather than delimited ones
func looksCaret(text string) bool {
	return strings.Contains(text, caretSeparator) && !strings.Contains(text, pairSeparator)
}

func normalizeEOL(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
