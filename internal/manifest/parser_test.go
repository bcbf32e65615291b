package manifest

import (
	"errors"
	"testing"

	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.Entry
		wantErr error
	}{
		{
			name: "ordered entries",
			entries: []domain.Entry{
				{Path: "z.ts", Payload: "eg=="},
				{Path: "a.ts", Payload: "YQ=="},
			},
		},
		{
			name: "empty manifest",
		},
		{
			name: "unsafe path is left for the resolver",
			entries: []domain.Entry{
				{Path: "../outside.txt", Payload: "eA=="},
			},
		},
		{
			name: "empty path",
			entries: []domain.Entry{
				{Path: "", Payload: "eA=="},
			},
			wantErr: domain.ErrManifestFormat,
		},
		{
			name: "empty payload",
			entries: []domain.Entry{
				{Path: "a.ts", Payload: "  "},
			},
			wantErr: domain.ErrManifestFormat,
		},
		{
			name: "exact duplicate",
			entries: []domain.Entry{
				{Path: "a.ts", Payload: "YQ=="},
				{Path: "a.ts", Payload: "Yg=="},
			},
			wantErr: domain.ErrDuplicatePath,
		},
		{
			name: "duplicate after normalization",
			entries: []domain.Entry{
				{Path: "providers/base.ts", Payload: "YQ=="},
				{Path: `providers\base.ts`, Payload: "Yg=="},
			},
			wantErr: domain.ErrDuplicatePath,
		},
		{
			name: "duplicate with dot segments",
			entries: []domain.Entry{
				{Path: "a//b.ts", Payload: "YQ=="},
				{Path: "./a/b.ts", Payload: "Yg=="},
			},
			wantErr: domain.ErrDuplicatePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse("test", domain.FormatJSON, tt.entries)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, domain.IsParseError(err))
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test", m.Source)
			assert.Equal(t, domain.FormatJSON, m.Format)
			assert.Equal(t, len(tt.entries), m.Len())
			for i, e := range tt.entries {
				assert.Equal(t, e, m.Entries[i])
			}
		})
	}
}

func TestParse_DuplicateReportsPositions(t *testing.T) {
	_, err := Parse("test", domain.FormatDelimited, []domain.Entry{
		{Path: "a.ts", Payload: "YQ=="},
		{Path: "b.ts", Payload: "Yg=="},
		{Path: "a.ts", Payload: "Yw=="},
	})

	var dup *domain.DuplicatePathError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a.ts", dup.Path)
	assert.Equal(t, 1, dup.First)
	assert.Equal(t, 3, dup.Second)
	assert.Equal(t, domain.KindDuplicatePath, domain.KindOf(err))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Format
		wantErr bool
	}{
		{in: "", want: domain.FormatAuto},
		{in: "auto", want: domain.FormatAuto},
		{in: "JSON", want: domain.FormatJSON},
		{in: "jsonc", want: domain.FormatJSON},
		{in: "yml", want: domain.FormatYAML},
		{in: "toml", want: domain.FormatTOML},
		{in: "list", want: domain.FormatList},
		{in: "delimited", want: domain.FormatDelimited},
		{in: "caret", want: domain.FormatCaret},
		{in: "companion", want: domain.FormatCompanion},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				assert.ErrorIs(t, err, domain.ErrManifestFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}
