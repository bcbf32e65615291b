package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (TREEPACK_OUTPUT_LINE_ENDING, ...)
const EnvPrefix = "TREEPACK"

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration through v, honoring any flags already bound
// to it and any config file set with v.SetConfigFile
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg, err := load(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithViper loads configuration and returns the viper instance
// This is useful for merging CLI flags later
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Config file settings. An explicit --config wins over the search path.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (TREEPACK_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Output defaults
	v.SetDefault("output.line_ending", DefaultLineEnding)
	v.SetDefault("output.file_mode", DefaultFileMode)
	v.SetDefault("output.dry_run", false)

	// Cleanup defaults
	v.SetDefault("cleanup.enabled", DefaultCleanupEnabled)
	v.SetDefault("cleanup.patterns", DefaultCleanupPatterns)
	v.SetDefault("cleanup.exclude", []string{})
	v.SetDefault("cleanup.max_retries", DefaultMaxRetries)
	v.SetDefault("cleanup.retry_delay", DefaultRetryDelay)

	// State defaults
	v.SetDefault("state.enabled", DefaultStateEnabled)
	v.SetDefault("state.directory", StateDir())
	v.SetDefault("state.lock_directory", LockDir())

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	dir := ConfigDir()
	return os.MkdirAll(dir, 0755)
}

// EnsureStateDir creates the ledger directory if it doesn't exist
func EnsureStateDir() error {
	return os.MkdirAll(StateDir(), 0755)
}
