package manifest

import (
	"fmt"
	"io"
	"strings"

	"github.com/quantmind-br/treepack/internal/domain"
)

const (
	sourceStart = "===FILE:"
	sourceEnd   = "===END"
)

// ParseSourceBlocks reads raw files framed as
//
//	===FILE: relative/path.ts
//	...content...
//	===END
//
// Content lines are joined with "\n"; the line break before ===END is not
// part of the content. Text outside blocks is ignored. A block left open at
// end of input is an error.
func ParseSourceBlocks(r io.Reader) ([]SourceFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source blocks: %w", err)
	}

	var (
		files   []SourceFile
		current *SourceFile
		lines   []string
		start   int
	)

	flush := func() {
		if current != nil {
			current.Content = []byte(strings.Join(lines, "\n"))
			files = append(files, *current)
		}
		current = nil
		lines = nil
	}

	for n, line := range strings.Split(string(data), "\n") {
		marker := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(marker, sourceStart):
			flush()
			p := strings.TrimSpace(strings.TrimPrefix(marker, sourceStart))
			if p == "" {
				return nil, domain.NewFormatError("source blocks", n+1, "===FILE: without a path")
			}
			current = &SourceFile{Path: p}
			start = n + 1
		case marker == sourceEnd:
			flush()
		case current != nil:
			lines = append(lines, line)
		}
	}

	if current != nil {
		return nil, fmt.Errorf("%w: %s opened on line %d", ErrUnterminatedBlock, current.Path, start)
	}

	return files, nil
}
