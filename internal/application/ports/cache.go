package ports

// DiscoveryRecord is the persisted snapshot of one guarded discovery run:
// the ordered provider names and the static model index.
type DiscoveryRecord struct {
	Providers  []string
	ModelIndex map[string]string
}

// DiscoveryCachePort persists discovery results between invocations so a
// registry can come up without touching any backend.
//
// Both operations fail soft. A Load error is a miss, never a failure:
// callers run discovery and continue. A Write error degrades the process
// to rediscover-every-run; callers log it and continue.
type DiscoveryCachePort interface {
	// Load returns the cached record on a usable hit. Any error is a
	// miss: absent, unreadable, malformed, or written by a different
	// provider build.
	Load() (*DiscoveryRecord, error)

	// Write atomically replaces the cached record.
	Write(providers []string, modelIndex map[string]string) error

	// Path returns the backing file location, for diagnostics.
	Path() string
}
