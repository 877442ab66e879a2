// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"fmt"

	"github.com/igoakulov/tokker/internal/adapters/cache"
	adapterProvider "github.com/igoakulov/tokker/internal/adapters/provider"
	"github.com/igoakulov/tokker/internal/application/ports"
	"github.com/igoakulov/tokker/internal/application/registry"
	"github.com/igoakulov/tokker/internal/domain/history"
	"github.com/igoakulov/tokker/internal/domain/tokenize"
	"github.com/igoakulov/tokker/internal/infrastructure/config"
	"github.com/igoakulov/tokker/internal/infrastructure/logging"
	"github.com/igoakulov/tokker/internal/infrastructure/storage"
	"github.com/igoakulov/tokker/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order: config, observability,
// history storage, then the registry.
type Container struct {
	// Configuration
	config  *config.Config
	loader  *config.Loader
	verbose bool // Override log level to info when true

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer

	// History storage (nil when disabled in config)
	historyRepo ports.HistoryPort

	// Registry
	discoveryCache ports.DiscoveryCachePort
	registry       *registry.Registry
}

// NewContainer creates a new dependency injection container with all
// services initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}

	c := &Container{
		config:  cfg,
		loader:  loader,
		verbose: verbose,
	}

	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := c.initHistory(); err != nil {
		_ = c.Close() // Clean up on error
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	c.initRegistry()

	return c, nil
}

// initObservability initializes logging and tracing.
func (c *Container) initObservability() error {
	ctx := context.Background()

	// Verbose flag overrides the configured level
	logLevel := logging.LevelWarn
	if c.verbose {
		logLevel = logging.LevelInfo
	} else {
		switch c.config.Logging.Level {
		case "debug":
			logLevel = logging.LevelDebug
		case "info":
			logLevel = logging.LevelInfo
		case "warn":
			logLevel = logging.LevelWarn
		case "error":
			logLevel = logging.LevelError
		}
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.Format = logFormat
	c.logger = logging.New(logCfg)

	if c.config.Tracing.Enabled {
		tracingCfg := tracing.Config{
			Enabled:      true,
			ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
			OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
			ServiceName:  c.config.Tracing.ServiceName,
			Environment:  "production",
			SampleRate:   c.config.Tracing.SampleRate,
		}
		tracer, err := tracing.New(ctx, tracingCfg)
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
		c.tracer = tracer
	} else {
		c.tracer = tracing.Default()
	}

	return nil
}

// initHistory opens the history database when recording is enabled.
func (c *Container) initHistory() error {
	if !c.config.History.Enabled {
		return nil
	}

	conn, err := storage.NewConnection(c.loader.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("failed to create history connection: %w", err)
	}
	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	repo, err := storage.NewHistoryRepository(conn, c.config.History.MaxEntries)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.historyRepo = repo
	return nil
}

// initRegistry wires the discovery cache and the provider registry.
func (c *Container) initRegistry() {
	fingerprint := cache.RegistryFingerprint(adapterProvider.Identifiers(adapterProvider.Builtins()))
	c.discoveryCache = cache.NewDiscoveryCache(cache.DefaultDiscoveryCachePath(), fingerprint)

	c.registry = registry.New(
		registry.WithCache(c.discoveryCache),
		registry.WithLogger(c.logger),
		registry.WithTracer(c.tracer),
	)
}

// RecordHistory appends a history entry for a completed tokenization.
// Recording is best-effort: failures are logged at debug level and never
// surface to the caller.
func (c *Container) RecordHistory(ctx context.Context, text, model, provider string, result *tokenize.Result) {
	if c.historyRepo == nil || result == nil {
		return
	}

	entry := history.NewEntry(text, model, provider,
		result.TokenCount, tokenize.CountWords(text), tokenize.CountChars(text))
	if err := c.historyRepo.Append(ctx, entry); err != nil {
		c.logger.DebugContext(ctx, "history append failed", "error", err)
	}
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	ctx := context.Background()

	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}

	if c.historyRepo != nil {
		err := c.historyRepo.Close()
		c.historyRepo = nil
		return err
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// ConfigLoader returns the configuration loader, used for default paths
// and persistence.
func (c *Container) ConfigLoader() *config.Loader {
	return c.loader
}

// Registry returns the provider registry.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// History returns the history repository, or nil when recording is
// disabled.
func (c *Container) History() ports.HistoryPort {
	return c.historyRepo
}

// DiscoveryCache returns the discovery cache adapter.
func (c *Container) DiscoveryCache() ports.DiscoveryCachePort {
	return c.discoveryCache
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
