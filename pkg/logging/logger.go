// Package logging provides structured logging for the conversa CLI.
// It wraps zerolog behind a small interface so analysis code can log
// without depending on zerolog directly, with human-readable console
// output by default and JSON output for machine consumption.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey type for context values to avoid collisions.
type ContextKey string

// RunIDKey carries the analysis run identifier in a context.
const RunIDKey ContextKey = "run_id"

// Level represents logging severity levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level sets the minimum log level (debug, info, warn, error).
	Level Level

	// Command is the CLI command name included in all log entries.
	Command string

	// JSONFormat enables JSON output when true, console output when false.
	JSONFormat bool

	// NoColor disables ANSI colors in console output.
	NoColor bool

	// Output sets the writer for logs (defaults to os.Stderr so that
	// reports written to stdout stay clean).
	Output io.Writer
}

// DefaultConfig returns a Config with sensible defaults for interactive use.
func DefaultConfig() *Config {
	return &Config{
		Level:   LevelInfo,
		Command: "conversa",
		Output:  os.Stderr,
	}
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a new Logger with the given fields attached to all subsequent logs.
	With(fields ...Field) Logger

	// WithContext returns a new Logger carrying the run id found in ctx, if any.
	WithContext(ctx context.Context) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field with the given key and value.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Err creates a Field for an error.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

type logger struct {
	zl zerolog.Logger
}

// NewLogger creates a new Logger with the given configuration.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if !cfg.JSONFormat {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}

	zl := zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("command", cfg.Command).
		Logger()

	return &logger{zl: zl}
}

// ParseLevel converts a user-supplied string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s)
	default:
		return LevelInfo
	}
}

func parseLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *logger) Debug(msg string, fields ...Field) {
	addFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *logger) Info(msg string, fields ...Field) {
	addFields(l.zl.Info(), fields).Msg(msg)
}

func (l *logger) Warn(msg string, fields ...Field) {
	addFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *logger) Error(msg string, fields ...Field) {
	addFields(l.zl.Error(), fields).Msg(msg)
}

// With returns a new logger with additional fields.
func (l *logger) With(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = addFieldToContext(ctx, f)
	}
	return &logger{zl: ctx.Logger()}
}

// WithContext returns a new logger that includes the run id from ctx.
func (l *logger) WithContext(ctx context.Context) Logger {
	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		return &logger{zl: l.zl.With().Str(string(RunIDKey), runID).Logger()}
	}
	return l
}

// ContextWithRunID returns a copy of ctx carrying runID.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func addFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case error:
			event = event.Err(v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case time.Time:
			event = event.Time(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

func addFieldToContext(ctx zerolog.Context, f Field) zerolog.Context {
	switch v := f.Value.(type) {
	case string:
		return ctx.Str(f.Key, v)
	case int:
		return ctx.Int(f.Key, v)
	case int64:
		return ctx.Int64(f.Key, v)
	case float64:
		return ctx.Float64(f.Key, v)
	case bool:
		return ctx.Bool(f.Key, v)
	case error:
		return ctx.Err(v)
	case time.Duration:
		return ctx.Dur(f.Key, v)
	case time.Time:
		return ctx.Time(f.Key, v)
	default:
		return ctx.Interface(f.Key, v)
	}
}

// nopLogger is a logger that discards all output.
type nopLogger struct{}

func (n *nopLogger) Debug(msg string, fields ...Field)      {}
func (n *nopLogger) Info(msg string, fields ...Field)       {}
func (n *nopLogger) Warn(msg string, fields ...Field)       {}
func (n *nopLogger) Error(msg string, fields ...Field)      {}
func (n *nopLogger) With(fields ...Field) Logger            { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger { return n }

// NewNopLogger returns a logger that discards all output.
// Useful for testing when you don't want log noise.
func NewNopLogger() Logger {
	return &nopLogger{}
}
