package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/quantmind-br/treepack/internal/output"
	"github.com/quantmind-br/treepack/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Cleanup CleanupConfig `mapstructure:"cleanup" yaml:"cleanup"`
	State   StateConfig   `mapstructure:"state" yaml:"state"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// OutputConfig contains settings for written files
type OutputConfig struct {
	LineEnding string `mapstructure:"line_ending" yaml:"line_ending"`
	FileMode   string `mapstructure:"file_mode" yaml:"file_mode"`
	DryRun     bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

// CleanupConfig contains finalization settings
type CleanupConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	Patterns   []string      `mapstructure:"patterns" yaml:"patterns"`
	Exclude    []string      `mapstructure:"exclude" yaml:"exclude"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// StateConfig contains run ledger settings
type StateConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
	LockDir   string `mapstructure:"lock_directory" yaml:"lock_directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, replacing out-of-range values with
// defaults
func (c *Config) Validate() error {
	if _, err := output.ParseLineEnding(c.Output.LineEnding); err != nil {
		return fmt.Errorf("invalid output.line_ending: %w", err)
	}
	if c.Output.LineEnding == "" {
		c.Output.LineEnding = DefaultLineEnding
	}
	if c.Output.FileMode == "" {
		c.Output.FileMode = DefaultFileMode
	} else if _, err := ParseFileMode(c.Output.FileMode); err != nil {
		return fmt.Errorf("invalid output.file_mode: %w", err)
	}

	if c.Cleanup.MaxRetries < 0 || c.Cleanup.MaxRetries > MaxCleanupRetries {
		c.Cleanup.MaxRetries = DefaultMaxRetries
	}
	if c.Cleanup.RetryDelay < time.Millisecond || c.Cleanup.RetryDelay > time.Minute {
		c.Cleanup.RetryDelay = DefaultRetryDelay
	}
	for _, p := range append(append([]string{}, c.Cleanup.Patterns...), c.Cleanup.Exclude...) {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid cleanup pattern %q: %w", p, err)
		}
	}

	if c.State.Directory == "" {
		c.State.Directory = StateDir()
	}
	if c.State.LockDir == "" {
		c.State.LockDir = LockDir()
	}

	switch strings.ToLower(c.Logging.Format) {
	case utils.FormatPretty, utils.FormatJSON, utils.FormatAuto:
		c.Logging.Format = strings.ToLower(c.Logging.Format)
	default:
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	return nil
}

// LineEnding returns the parsed output line ending
func (c *Config) LineEnding() output.LineEnding {
	le, err := output.ParseLineEnding(c.Output.LineEnding)
	if err != nil {
		return output.LF
	}
	return le
}

// FileMode returns the parsed output file mode
func (c *Config) FileMode() os.FileMode {
	mode, err := ParseFileMode(c.Output.FileMode)
	if err != nil {
		return output.DefaultFileMode
	}
	return mode
}

// ParseFileMode parses an octal permission string such as "0644" or "755"
func ParseFileMode(s string) (os.FileMode, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0o")
	if s == "" {
		return 0, fmt.Errorf("empty file mode")
	}

	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal value: %w", err)
	}
	if n == 0 || n > 0o777 {
		return 0, fmt.Errorf("file mode %s out of range", s)
	}
	if n&0o600 != 0o600 {
		return 0, fmt.Errorf("file mode %s is not owner read-write", s)
	}

	return os.FileMode(n), nil
}
