package testutil

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// File is one manifest entry in plain text
type File struct {
	Path    string
	Content string
}

// Encode returns the base64 payload of s
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// JSONManifest renders files as an ordered JSON mapping manifest
func JSONManifest(t *testing.T, files []File) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range files {
		key, err := json.Marshal(f.Path)
		require.NoError(t, err)
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(": \"")
		b.WriteString(Encode(f.Content))
		b.WriteString("\"")
		if i < len(files)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteJSONManifest writes files as a JSON mapping manifest to dir/name
func WriteJSONManifest(t *testing.T, dir, name string, files []File) string {
	t.Helper()
	return WriteFile(t, dir, name, JSONManifest(t, files))
}
