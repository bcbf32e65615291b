package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log formats
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatAuto   = "auto"
)

// Logger is a wrapper around zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// LoggerOptions contains options for creating a logger
type LoggerOptions struct {
	Level   string
	Format  string // "pretty", "json" or "auto"
	Output  io.Writer
	Verbose bool
}

// NewLogger builds a leveled logger writing to Output (stderr by default).
// Verbose forces the debug level regardless of Level.
func NewLogger(opts LoggerOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if ResolveLogFormat(opts.Format, out) == FormatPretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    !IsTerminal(out),
		}
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return &Logger{
		Logger: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// ResolveLogFormat turns "auto" (or empty) into pretty for terminals and
// json for everything else
func ResolveLogFormat(format string, out io.Writer) string {
	switch format {
	case FormatPretty, FormatJSON:
		return format
	}
	if IsTerminal(out) {
		return FormatPretty
	}
	return FormatJSON
}

// ParseLevel maps a config level onto zerolog. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithRun returns a logger with a run_id field
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("run_id", runID).Logger(),
	}
}

// WithManifest returns a logger tagged with the manifest location and root
func (l *Logger) WithManifest(location, root string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("manifest", location).Str("root", root).Logger(),
	}
}
