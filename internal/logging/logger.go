// Package logging provides structured logging for the command-line and interactive modes.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger modes.
const (
	// ModeCLI writes human-readable logs to stderr (stdout carries command output).
	ModeCLI = "cli"
	// ModeTUI keeps the terminal clean for the full-screen browser; only the file sink receives logs.
	ModeTUI = "tui"
)

// Logger wraps zerolog with mode-specific behavior.
type Logger struct {
	zlog   zerolog.Logger
	mode   string
	file   *FileSink
	output io.Writer // current console writer, nil in TUI mode
}

// NewLogger creates a new logger for the specified mode. A non-nil file sink
// receives every entry as JSON in addition to the console.
func NewLogger(mode string, file *FileSink) *Logger {
	l := &Logger{mode: mode, file: file}
	if mode != ModeTUI {
		l.output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}
	l.rebuild()
	return l
}

// NewDefaultCLILogger creates a default CLI logger.
func NewDefaultCLILogger() *Logger {
	return NewLogger(ModeCLI, nil)
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop(), mode: ModeCLI}
}

func (l *Logger) rebuild() {
	var writers []io.Writer
	if l.output != nil {
		writers = append(writers, l.output)
	}
	if l.file != nil {
		writers = append(writers, l.file)
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	l.zlog = zerolog.New(w).
		With().
		Timestamp().
		Logger()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger with additional context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Mode returns the logger mode.
func (l *Logger) Mode() string {
	return l.mode
}

// SetOutput changes the console writer for the logger.
// This is useful for redirecting logs through progress bars.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	l.rebuild()
}

// Output returns the current console writer, nil when the console is detached.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Debugf logs a debug message with printf-style formatting.
// This is only shown when debug/verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
