// Package config provides configuration structs and utilities for the tokker application.
package config

import (
	"errors"
	"fmt"
)

// Config represents the root configuration for the tokker application.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	History  HistoryConfig  `yaml:"history"`
}

// DefaultsConfig holds the user-facing tokenization defaults.
type DefaultsConfig struct {
	Model     string `yaml:"model"`     // model used when --model is omitted
	Output    string `yaml:"output"`    // json, plain, count, pivot
	Delimiter string `yaml:"delimiter"` // separator for delimited token output
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`       // Whether tracing is enabled
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // OTLP collector endpoint
	SampleRate   float64 `yaml:"sample_rate"`   // Sampling rate (0.0 to 1.0)
	ServiceName  string  `yaml:"service_name"`  // Service name for traces
}

// HistoryConfig holds configuration for usage history recording.
type HistoryConfig struct {
	Enabled    bool `yaml:"enabled"`     // Whether history recording is enabled
	MaxEntries int  `yaml:"max_entries"` // Entries kept before the oldest are pruned
}

// Default configuration values.
const (
	DefaultModel     = "cl100k_base"
	DefaultOutput    = "json"
	DefaultDelimiter = "⎮"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	// Tracing defaults
	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "tokker"

	// History defaults
	DefaultHistoryEnabled    = true
	DefaultHistoryMaxEntries = 500
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid output formats.
var validOutputFormats = map[string]bool{
	"json":  true,
	"plain": true,
	"count": true,
	"pivot": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Model:     DefaultModel,
			Output:    DefaultOutput,
			Delimiter: DefaultDelimiter,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
		History: HistoryConfig{
			Enabled:    DefaultHistoryEnabled,
			MaxEntries: DefaultHistoryMaxEntries,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the DefaultsConfig is valid.
func (d *DefaultsConfig) Validate() error {
	var errs []error

	if d.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}

	if d.Output != "" && !validOutputFormats[d.Output] {
		errs = append(errs, fmt.Errorf("invalid output %q: must be one of json, plain, count, pivot", d.Output))
	}

	if d.Delimiter == "" {
		errs = append(errs, errors.New("delimiter is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the HistoryConfig is valid.
func (h *HistoryConfig) Validate() error {
	if h.Enabled && h.MaxEntries <= 0 {
		return errors.New("max_entries must be positive when history is enabled")
	}
	return nil
}
