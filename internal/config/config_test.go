package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quantmind-br/treepack/internal/output"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name: "empty line ending defaults to lf",
			modify: func(c *Config) {
				c.Output.LineEnding = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLineEnding, c.Output.LineEnding)
				assert.Equal(t, output.LF, c.LineEnding())
			},
		},
		{
			name: "crlf accepted",
			modify: func(c *Config) {
				c.Output.LineEnding = "CRLF"
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, output.CRLF, c.LineEnding())
			},
		},
		{
			name: "unknown line ending rejected",
			modify: func(c *Config) {
				c.Output.LineEnding = "cr"
			},
			wantErr: true,
		},
		{
			name: "empty file mode defaults",
			modify: func(c *Config) {
				c.Output.FileMode = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, os.FileMode(0o644), c.FileMode())
			},
		},
		{
			name: "unparsable file mode rejected",
			modify: func(c *Config) {
				c.Output.FileMode = "rw-r--r--"
			},
			wantErr: true,
		},
		{
			name: "negative retries repaired",
			modify: func(c *Config) {
				c.Cleanup.MaxRetries = -4
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultMaxRetries, c.Cleanup.MaxRetries)
			},
		},
		{
			name: "excessive retries repaired",
			modify: func(c *Config) {
				c.Cleanup.MaxRetries = 500
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultMaxRetries, c.Cleanup.MaxRetries)
			},
		},
		{
			name: "zero retries kept",
			modify: func(c *Config) {
				c.Cleanup.MaxRetries = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 0, c.Cleanup.MaxRetries)
			},
		},
		{
			name: "retry delay out of range repaired",
			modify: func(c *Config) {
				c.Cleanup.RetryDelay = time.Hour
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultRetryDelay, c.Cleanup.RetryDelay)
			},
		},
		{
			name: "bad cleanup pattern rejected",
			modify: func(c *Config) {
				c.Cleanup.Exclude = []string{"[oops"}
			},
			wantErr: true,
		},
		{
			name: "unknown log format falls back",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
				c.Logging.Level = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLogFormat, c.Logging.Format)
				assert.Equal(t, DefaultLogLevel, c.Logging.Level)
			},
		},
		{
			name: "empty state directories filled in",
			modify: func(c *Config) {
				c.State.Directory = ""
				c.State.LockDir = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, StateDir(), c.State.Directory)
				assert.Equal(t, LockDir(), c.State.LockDir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestParseFileMode(t *testing.T) {
	tests := []struct {
		in      string
		want    os.FileMode
		wantErr bool
	}{
		{in: "0644", want: 0o644},
		{in: "644", want: 0o644},
		{in: "0o600", want: 0o600},
		{in: " 0755 ", want: 0o755},
		{in: "", wantErr: true},
		{in: "0999", wantErr: true},
		{in: "0", wantErr: true},
		{in: "1777", wantErr: true},
		{in: "0444", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "lf", cfg.Output.LineEnding)
	assert.Equal(t, "0644", cfg.Output.FileMode)
	assert.False(t, cfg.Output.DryRun)
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, DefaultCleanupPatterns, cfg.Cleanup.Patterns)
	assert.Equal(t, 3, cfg.Cleanup.MaxRetries)
	assert.True(t, cfg.State.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
}

func TestDirs(t *testing.T) {
	assert.True(t, strings.HasSuffix(ConfigDir(), ".treepack"))
	assert.Equal(t, filepath.Join(ConfigDir(), "state"), StateDir())
	assert.Equal(t, filepath.Join(ConfigDir(), "locks"), LockDir())
	assert.Equal(t, filepath.Join(ConfigDir(), "config.yaml"), ConfigFilePath())
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())
	require.NoError(t, EnsureStateDir())

	info, err := os.Stat(filepath.Join(home, ".treepack", "state"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadWithViper_MissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, v, err := LoadWithViper()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "lf", cfg.Output.LineEnding)
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, DefaultRetryDelay, cfg.Cleanup.RetryDelay)
}

func TestLoadWithViper_InvalidConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output: [unclosed"), 0o644))
	chdir(t, dir)

	_, _, err := LoadWithViper()
	assert.Error(t, err)
}

func TestLoadWithViper_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := `output:
  line_ending: crlf
  file_mode: "0600"
cleanup:
  enabled: false
  patterns: ["_gen*.py"]
  retry_delay: 250ms
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, output.CRLF, cfg.LineEnding())
	assert.Equal(t, os.FileMode(0o600), cfg.FileMode())
	assert.False(t, cfg.Cleanup.Enabled)
	assert.Equal(t, []string{"_gen*.py"}, cfg.Cleanup.Patterns)
	assert.Equal(t, 250*time.Millisecond, cfg.Cleanup.RetryDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadWithViper_Environment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("TREEPACK_OUTPUT_LINE_ENDING", "crlf")
	t.Setenv("TREEPACK_CLEANUP_ENABLED", "false")

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "crlf", cfg.Output.LineEnding)
	assert.False(t, cfg.Cleanup.Enabled)
}

func TestLoadWithViper_InvalidValue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("TREEPACK_OUTPUT_LINE_ENDING", "mac")

	_, _, err := LoadWithViper()
	assert.Error(t, err)
}

func TestLoadFrom_ExplicitConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cleanup:\n  max_retries: 7\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cleanup.MaxRetries)
	assert.Equal(t, path, v.ConfigFileUsed())
}
