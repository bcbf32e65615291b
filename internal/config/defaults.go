package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/treepack/internal/cleanup"
)

// Default values
const (
	// Output defaults
	DefaultLineEnding = "lf"
	DefaultFileMode   = "0644"

	// Cleanup defaults
	DefaultCleanupEnabled = true
	DefaultMaxRetries     = 3
	MaxCleanupRetries     = 10
	DefaultRetryDelay     = 100 * time.Millisecond

	// State defaults
	DefaultStateEnabled = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "auto"
)

// DefaultCleanupPatterns match generator artifacts next to the manifest
var DefaultCleanupPatterns = cleanup.DefaultPatterns

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".treepack"
	}
	return filepath.Join(home, ".treepack")
}

// StateDir returns the run ledger directory path
func StateDir() string {
	return filepath.Join(ConfigDir(), "state")
}

// LockDir returns the base-root lock directory path
func LockDir() string {
	return filepath.Join(ConfigDir(), "locks")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			LineEnding: DefaultLineEnding,
			FileMode:   DefaultFileMode,
			DryRun:     false,
		},
		Cleanup: CleanupConfig{
			Enabled:    DefaultCleanupEnabled,
			Patterns:   append([]string(nil), DefaultCleanupPatterns...),
			MaxRetries: DefaultMaxRetries,
			RetryDelay: DefaultRetryDelay,
		},
		State: StateConfig{
			Enabled:   DefaultStateEnabled,
			Directory: StateDir(),
			LockDir:   LockDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
