// Package registry resolves model names to tokenizer backends. It owns the
// discovery snapshot, the lazily constructed provider instances, and the
// probe memo, and it exposes the operations the presentation layer consumes.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/igoakulov/tokker/internal/adapters/cache"
	adapterProvider "github.com/igoakulov/tokker/internal/adapters/provider"
	"github.com/igoakulov/tokker/internal/application/ports"
	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
	"github.com/igoakulov/tokker/internal/domain/tokenize"
	"github.com/igoakulov/tokker/internal/infrastructure/logging"
	"github.com/igoakulov/tokker/internal/infrastructure/tracing"
)

// Registry coordinates guarded discovery, model resolution and tokenization
// across the registered backends.
//
// The snapshot is built once per Registry: from the discovery cache when a
// usable record exists, otherwise by walking the registration table. On a
// cache hit no backend is constructed or touched in any way; instances come
// into existence only when an operation needs one, at most once each.
type Registry struct {
	mu            sync.RWMutex
	registrations []adapterProvider.Registration
	cache         ports.DiscoveryCachePort
	logger        *logging.Logger
	tracer        *tracing.Tracer

	snapshot  *ports.DiscoveryRecord
	instances map[string]ports.TokenizerProvider
	probes    *cache.ProbeMemo
}

// Option configures a Registry.
type Option func(*Registry)

// WithCache sets the discovery cache. Without it the Registry runs
// discovery on first use and persists nothing.
func WithCache(c ports.DiscoveryCachePort) Option {
	return func(r *Registry) {
		r.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithRegistrations replaces the built-in registration table.
func WithRegistrations(regs []adapterProvider.Registration) Option {
	return func(r *Registry) {
		r.registrations = regs
	}
}

// New creates a Registry over the built-in backends. Nothing is discovered
// or constructed until the first operation.
func New(opts ...Option) *Registry {
	r := &Registry{
		registrations: adapterProvider.Builtins(),
		logger:        logging.Default(),
		tracer:        tracing.Default(),
		instances:     make(map[string]ports.TokenizerProvider),
		probes:        cache.NewProbeMemo(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Providers returns the installed provider names in discovery order.
func (r *Registry) Providers(ctx context.Context) ([]string, error) {
	snap, err := r.ensureSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	providers := make([]string, len(snap.Providers))
	copy(providers, snap.Providers)
	return providers, nil
}

// Models returns the statically catalogued model names, sorted. A non-empty
// providerName filters to that provider's models; a name that matches no
// installed provider yields an empty list.
func (r *Registry) Models(ctx context.Context, providerName string) ([]string, error) {
	snap, err := r.ensureSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]string, 0, len(snap.ModelIndex))
	for model, owner := range snap.ModelIndex {
		if providerName == "" || owner == providerName {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models, nil
}

// ModelsByProvider returns the static model names grouped by installed
// provider, sorted within each group. Providers with no static models map
// to an empty list.
func (r *Registry) ModelsByProvider(ctx context.Context) (map[string][]string, error) {
	snap, err := r.ensureSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(snap.Providers))
	for _, name := range snap.Providers {
		result[name] = []string{}
	}
	for model, owner := range snap.ModelIndex {
		result[owner] = append(result[owner], model)
	}
	for _, models := range result {
		sort.Strings(models)
	}
	return result, nil
}

// IsModelSupported reports whether the model resolves to any installed
// provider, statically or by probing.
func (r *Registry) IsModelSupported(ctx context.Context, model string) (bool, error) {
	_, err := r.ResolveModel(ctx, model)
	if err != nil {
		var notFound *domainErrors.ModelNotFoundError
		if domainErrors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResolveModel resolves a model name to the owning provider's name without
// constructing the provider. The static index always wins; unindexed names
// are offered to each installed provider in discovery order and the first
// acceptance is final. An unresolvable name fails with ModelNotFoundError.
func (r *Registry) ResolveModel(ctx context.Context, model string) (string, error) {
	snap, err := r.ensureSnapshot(ctx)
	if err != nil {
		return "", err
	}

	ctx, span := r.tracer.StartResolveSpan(ctx, model)

	if name, ok := snap.ModelIndex[model]; ok {
		span.SetSource("static")
		span.SetProvider(name)
		span.End()
		return name, nil
	}

	probed := 0
	for _, name := range snap.Providers {
		accepted, live := r.probeProvider(ctx, name, model)
		probed += live
		if accepted {
			span.SetSource("probe")
			span.SetProvider(name)
			span.SetProbeCount(probed)
			span.End()
			return name, nil
		}
	}

	span.SetProbeCount(probed)
	providers := make([]string, len(snap.Providers))
	copy(providers, snap.Providers)
	notFound := domainErrors.NewModelNotFound(model, providers)
	span.EndWithError(notFound)
	return "", notFound
}

// ProviderByModel resolves the model and returns the owning provider
// instance, constructing it on first use.
func (r *Registry) ProviderByModel(ctx context.Context, model string) (ports.TokenizerProvider, error) {
	name, err := r.ResolveModel(ctx, model)
	if err != nil {
		return nil, err
	}
	return r.provider(ctx, name)
}

// Tokenize resolves the model, constructs its provider if needed, and
// encodes the text. Provider failures surface as ProviderRuntimeError and
// are never retried here.
func (r *Registry) Tokenize(ctx context.Context, model, text string) (*tokenize.Result, error) {
	if model == "" {
		return nil, domainErrors.NewError(domainErrors.CodeValidation,
			"model name is empty", domainErrors.ErrModelRequired)
	}

	providerName, err := r.ResolveModel(ctx, model)
	if err != nil {
		return nil, err
	}

	instance, err := r.provider(ctx, providerName)
	if err != nil {
		return nil, err
	}

	ctx, span := r.tracer.StartTokenizeSpan(ctx, providerName, model)
	span.SetTextLength(len(text))

	start := time.Now()
	result, err := instance.Tokenize(ctx, model, text)
	if err != nil {
		span.EndWithError(err)
		return nil, domainErrors.NewProviderRuntime(providerName, err)
	}

	span.SetTokenCount(result.TokenCount)
	span.End()
	logging.LogTokenize(ctx, r.logger, providerName, model, result.TokenCount, time.Since(start))
	return result, nil
}

// ensureSnapshot returns the discovery snapshot, building it on first call.
// The cache-hit path touches no backend. A cache miss runs guarded
// discovery and then writes the cache, logging rather than failing when
// the write cannot land.
func (r *Registry) ensureSnapshot(ctx context.Context) (*ports.DiscoveryRecord, error) {
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot != nil {
		return r.snapshot, nil
	}

	reason := "cache_bypass"
	if r.cache != nil {
		record, err := r.cache.Load()
		if err == nil {
			logging.LogCacheHit(ctx, r.logger, r.cache.Path(), len(record.Providers), len(record.ModelIndex))
			r.snapshot = record
			return record, nil
		}
		logging.LogCacheMiss(ctx, r.logger, r.cache.Path(), err.Error())
		if domainErrors.Is(err, domainErrors.ErrCacheInvalid) {
			reason = "cache_invalid"
		} else {
			reason = "cache_miss"
		}
	}

	logging.LogDiscoveryStart(ctx, r.logger, reason)
	ctx, span := r.tracer.StartDiscoverySpan(ctx, reason)

	record, skipped, err := adapterProvider.Discover(r.registrations)
	if err != nil {
		span.EndWithError(err)
		return nil, err
	}

	span.SetProviderCount(len(record.Providers))
	span.SetModelCount(len(record.ModelIndex))
	span.SetSkipped(skipped)
	logging.LogDiscoveryComplete(ctx, r.logger, record.Providers, len(record.ModelIndex), skipped)

	if r.cache != nil {
		if err := r.cache.Write(record.Providers, record.ModelIndex); err != nil {
			span.SetCacheWritten(false)
			r.logger.WarnContext(ctx, "discovery cache write failed",
				"path", r.cache.Path(),
				"error", err)
		} else {
			span.SetCacheWritten(true)
		}
	}
	span.End()

	r.snapshot = record
	return record, nil
}

// probeProvider asks one installed provider whether it recognizes the
// model. It returns the verdict and how many live probes ran (zero on a
// memo hit or when the provider cannot probe). Only genuine answers enter
// the memo; a transport failure counts as non-acceptance for this
// resolution but must not pin the model for the rest of the process.
func (r *Registry) probeProvider(ctx context.Context, name, model string) (accepted bool, live int) {
	if accepted, ok := r.probes.Get(name, model); ok {
		return accepted, 0
	}

	instance, err := r.provider(ctx, name)
	if err != nil {
		r.logger.WarnContext(ctx, "provider construction failed during probe",
			"provider", name,
			"error", err)
		return false, 0
	}

	prober, ok := instance.(ports.ModelProber)
	if !ok {
		return false, 0
	}

	probeCtx, span := r.tracer.StartProbeSpan(ctx, name, model)
	start := time.Now()
	accepted, err = prober.ProbeModel(probeCtx, model)
	if err != nil {
		span.EndWithError(err)
		r.logger.WarnContext(ctx, "probe failed",
			"provider", name,
			"model", model,
			"error", err)
		return false, 1
	}

	span.SetAccepted(accepted)
	span.End()
	logging.LogProbe(ctx, r.logger, name, model, accepted, time.Since(start))
	r.probes.Set(name, model, accepted)
	return accepted, 1
}

// provider returns the named provider instance, constructing it on first
// use. Successful constructions are memoized for the life of the Registry;
// failures are not, so a later call may retry.
func (r *Registry) provider(ctx context.Context, name string) (ports.TokenizerProvider, error) {
	r.mu.RLock()
	instance, ok := r.instances[name]
	r.mu.RUnlock()
	if ok {
		return instance, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if instance, ok := r.instances[name]; ok {
		return instance, nil
	}

	reg, ok := adapterProvider.Find(r.registrations, name)
	if !ok {
		return nil, domainErrors.NewError(domainErrors.CodeProvider,
			fmt.Sprintf("no registration for provider %s", name), nil)
	}

	start := time.Now()
	instance, err := reg.New(ctx)
	if err != nil {
		return nil, domainErrors.NewProviderRuntime(name, err)
	}
	if instance == nil {
		return nil, domainErrors.NewError(domainErrors.CodeProvider,
			fmt.Sprintf("registration for provider %s constructed nil", name), nil)
	}

	logging.LogProviderConstructed(ctx, r.logger, name, time.Since(start))
	r.instances[name] = instance
	return instance, nil
}
