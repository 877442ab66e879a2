// Package tracing provides OpenTelemetry-based distributed tracing infrastructure.
// It supports multiple exporters (stdout, OTLP) and provides domain-specific
// span helpers for provider discovery, model resolution and tokenization.
package tracing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the name used for the tokker tracer.
	TracerName = "github.com/igoakulov/tokker"

	// Version is the semantic version of the tracer.
	Version = "1.0.0"
)

// ExporterType defines the type of trace exporter.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool         // Whether tracing is enabled
	ExporterType ExporterType // Type of exporter to use
	OTLPEndpoint string       // OTLP collector endpoint (for OTLP exporter)
	ServiceName  string       // Service name for traces
	Environment  string       // Deployment environment (development, production)
	SampleRate   float64      // Sampling rate (0.0 to 1.0)
	Output       io.Writer    // Output for stdout exporter (defaults to os.Stdout)
}

// DefaultConfig returns sensible default tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ExporterType: ExporterNone,
		ServiceName:  "tokker",
		Environment:  "development",
		SampleRate:   1.0,
	}
}

// Tracer wraps an OpenTelemetry tracer with domain-specific functionality.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   Config
}

// global is the package-level default tracer.
var (
	global     *Tracer
	globalOnce sync.Once
)

// Init initializes the global tracer with the provided configuration.
func Init(ctx context.Context, cfg Config) (*Tracer, error) {
	var err error
	globalOnce.Do(func() {
		global, err = New(ctx, cfg)
	})
	return global, err
}

// Default returns the global tracer, or a no-op tracer if not initialized.
func Default() *Tracer {
	if global == nil {
		return &Tracer{
			tracer: otel.Tracer(TracerName),
			config: DefaultConfig(),
		}
	}
	return global
}

// New creates a new Tracer with the provided configuration.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		return &Tracer{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
			config: cfg,
		}, nil
	}

	// Create exporter
	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	// Create resource without merging with Default() to avoid schema URL conflicts.
	// The default resource's schema URL may conflict with our semconv version.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create sampler
	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Create tracer provider
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	// Set global propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set global tracer provider
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
		config:   cfg,
	}, nil
}

// createExporter creates the appropriate exporter based on configuration.
func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{
			stdouttrace.WithPrettyPrint(),
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithInsecure(),
		}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown gracefully shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts a new span with the given name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// --- Domain-specific span helpers ---

// DiscoverySpan represents a provider discovery span.
type DiscoverySpan struct {
	span trace.Span
	ctx  context.Context
}

// StartDiscoverySpan starts a span for provider discovery. The reason
// records why discovery ran (cache_miss, cache_bypass, cache_invalid).
func (t *Tracer) StartDiscoverySpan(ctx context.Context, reason string) (context.Context, *DiscoverySpan) {
	ctx, span := t.tracer.Start(ctx, "registry.discover",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("discovery.reason", reason),
		),
	)

	return ctx, &DiscoverySpan{span: span, ctx: ctx}
}

// SetProviderCount sets the number of providers found installed.
func (ds *DiscoverySpan) SetProviderCount(count int) {
	ds.span.SetAttributes(attribute.Int("discovery.provider_count", count))
}

// SetModelCount sets the number of statically catalogued models.
func (ds *DiscoverySpan) SetModelCount(count int) {
	ds.span.SetAttributes(attribute.Int("discovery.model_count", count))
}

// SetSkipped sets the number of registered providers skipped as unavailable.
func (ds *DiscoverySpan) SetSkipped(count int) {
	ds.span.SetAttributes(attribute.Int("discovery.skipped", count))
}

// SetCacheWritten marks whether the discovery result was persisted.
func (ds *DiscoverySpan) SetCacheWritten(written bool) {
	ds.span.SetAttributes(attribute.Bool("discovery.cache_written", written))
}

// End ends the discovery span with success status.
func (ds *DiscoverySpan) End() {
	ds.span.SetStatus(codes.Ok, "discovery completed successfully")
	ds.span.End()
}

// EndWithError ends the discovery span with error status.
func (ds *DiscoverySpan) EndWithError(err error) {
	ds.span.RecordError(err)
	ds.span.SetStatus(codes.Error, err.Error())
	ds.span.End()
}

// ResolveSpan represents a model resolution span.
type ResolveSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartResolveSpan starts a span for resolving a model name to a provider.
func (t *Tracer) StartResolveSpan(ctx context.Context, model string) (context.Context, *ResolveSpan) {
	ctx, span := t.tracer.Start(ctx, "resolve.model",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("resolve.model", model),
		),
	)

	return ctx, &ResolveSpan{span: span, ctx: ctx}
}

// SetSource records whether the model was resolved statically or via probing.
func (rs *ResolveSpan) SetSource(source string) {
	rs.span.SetAttributes(attribute.String("resolve.source", source))
}

// SetProvider sets the provider the model resolved to.
func (rs *ResolveSpan) SetProvider(provider string) {
	rs.span.SetAttributes(attribute.String("resolve.provider", provider))
}

// SetProbeCount sets how many providers were probed before resolution.
func (rs *ResolveSpan) SetProbeCount(count int) {
	rs.span.SetAttributes(attribute.Int("resolve.probe_count", count))
}

// End ends the resolve span with success status.
func (rs *ResolveSpan) End() {
	rs.span.SetStatus(codes.Ok, "model resolved successfully")
	rs.span.End()
}

// EndWithError ends the resolve span with error status.
func (rs *ResolveSpan) EndWithError(err error) {
	rs.span.RecordError(err)
	rs.span.SetStatus(codes.Error, err.Error())
	rs.span.End()
}

// ProbeSpan represents a dynamic model probe span.
type ProbeSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartProbeSpan starts a span for asking a provider whether it serves a model.
func (t *Tracer) StartProbeSpan(ctx context.Context, provider, model string) (context.Context, *ProbeSpan) {
	ctx, span := t.tracer.Start(ctx, "provider.probe",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", provider),
			attribute.String("provider.model", model),
		),
	)

	return ctx, &ProbeSpan{span: span, ctx: ctx}
}

// SetAccepted marks whether the provider accepted the model.
func (ps *ProbeSpan) SetAccepted(accepted bool) {
	ps.span.SetAttributes(attribute.Bool("probe.accepted", accepted))
}

// End ends the probe span with success status.
func (ps *ProbeSpan) End() {
	ps.span.SetStatus(codes.Ok, "probe completed")
	ps.span.End()
}

// EndWithError ends the probe span with error status.
func (ps *ProbeSpan) EndWithError(err error) {
	ps.span.RecordError(err)
	ps.span.SetStatus(codes.Error, err.Error())
	ps.span.End()
}

// TokenizeSpan represents a tokenization request span.
type TokenizeSpan struct {
	span trace.Span
	ctx  context.Context
}

// StartTokenizeSpan starts a span for a tokenization request against a provider.
func (t *Tracer) StartTokenizeSpan(ctx context.Context, provider, model string) (context.Context, *TokenizeSpan) {
	ctx, span := t.tracer.Start(ctx, "provider.tokenize",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", provider),
			attribute.String("provider.model", model),
		),
	)

	return ctx, &TokenizeSpan{span: span, ctx: ctx}
}

// SetTextLength sets the character length of the input text.
func (ts *TokenizeSpan) SetTextLength(chars int) {
	ts.span.SetAttributes(attribute.Int("tokenize.chars", chars))
}

// SetTokenCount sets the number of tokens produced.
func (ts *TokenizeSpan) SetTokenCount(count int) {
	ts.span.SetAttributes(attribute.Int("tokenize.token_count", count))
}

// End ends the tokenize span with success status.
func (ts *TokenizeSpan) End() {
	ts.span.SetStatus(codes.Ok, "tokenization completed")
	ts.span.End()
}

// EndWithError ends the tokenize span with error status.
func (ts *TokenizeSpan) EndWithError(err error) {
	ts.span.RecordError(err)
	ts.span.SetStatus(codes.Error, err.Error())
	ts.span.End()
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
}

// SetAttribute sets an attribute on the current span.
func SetAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	}
}
