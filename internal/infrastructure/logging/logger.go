// Package logging provides structured logging infrastructure for the tokker
// application. It wraps Go's standard log/slog package with context-aware
// logging and domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// ProviderKey is the context key for provider names.
	ProviderKey contextKey = "provider"
	// ModelKey is the context key for model names.
	ModelKey contextKey = "model"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration. Warn is the
// default: tok is a CLI whose stdout belongs to tokenization output, so logs
// stay quiet on stderr unless asked for.
func DefaultConfig() Config {
	return Config{
		Level:      LevelWarn,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for tokker.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	mu      sync.RWMutex
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetLevel dynamically changes the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = parseLevel(level)
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
		level:   l.level,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+4)

	if v := ctx.Value(ProviderKey); v != nil {
		enriched = append(enriched, "provider", v)
	}
	if v := ctx.Value(ModelKey); v != nil {
		enriched = append(enriched, "model", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// Underlying returns the underlying slog.Logger.
func (l *Logger) Underlying() *slog.Logger {
	return l.slogger
}

// --- Context helpers ---

// WithProvider adds a provider name to the context.
func WithProvider(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ProviderKey, name)
}

// WithModel adds a model name to the context.
func WithModel(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ModelKey, name)
}

// --- Domain-specific logging helpers ---

// LogDiscoveryStart logs the start of a guarded discovery run.
func LogDiscoveryStart(ctx context.Context, logger *Logger, reason string) {
	logger.DebugContext(ctx, "provider discovery started",
		"reason", reason,
	)
}

// LogDiscoveryComplete logs the outcome of a guarded discovery run.
func LogDiscoveryComplete(ctx context.Context, logger *Logger, providers []string, models int, skipped int) {
	logger.DebugContext(ctx, "provider discovery completed",
		"providers", providers,
		"models", models,
		"skipped", skipped,
	)
}

// LogCacheHit logs a discovery cache hit.
func LogCacheHit(ctx context.Context, logger *Logger, path string, providers int, models int) {
	logger.DebugContext(ctx, "discovery cache hit",
		"path", path,
		"providers", providers,
		"models", models,
	)
}

// LogCacheMiss logs a discovery cache miss.
func LogCacheMiss(ctx context.Context, logger *Logger, path string, reason string) {
	logger.DebugContext(ctx, "discovery cache miss",
		"path", path,
		"reason", reason,
	)
}

// LogProbe logs a dynamic model probe and its outcome.
func LogProbe(ctx context.Context, logger *Logger, provider, model string, accepted bool, latency time.Duration) {
	logger.DebugContext(ctx, "model probe",
		"provider", provider,
		"model", model,
		"accepted", accepted,
		"latency_ms", latency.Milliseconds(),
	)
}

// LogProviderConstructed logs the lazy construction of a provider instance.
func LogProviderConstructed(ctx context.Context, logger *Logger, provider string, latency time.Duration) {
	logger.DebugContext(ctx, "provider constructed",
		"provider", provider,
		"latency_ms", latency.Milliseconds(),
	)
}

// LogTokenize logs a completed tokenization.
func LogTokenize(ctx context.Context, logger *Logger, provider, model string, tokens int, latency time.Duration) {
	logger.DebugContext(ctx, "tokenize completed",
		"provider", provider,
		"model", model,
		"tokens", tokens,
		"latency_ms", latency.Milliseconds(),
	)
}
