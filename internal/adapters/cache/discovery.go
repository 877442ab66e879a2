// Package cache provides adapters for persisting provider discovery results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/igoakulov/tokker/internal/application/ports"
	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
)

const (
	// discoveryFileName is the on-disk name of the discovery snapshot.
	discoveryFileName = "registry.json"

	// discoverySubDir is the subdirectory under the user cache directory.
	discoverySubDir = "tokker"
)

// DiscoveryCache is a file-backed DiscoveryCachePort. One JSON document
// holds the installed provider names, the static model index, and the
// fingerprint of the provider build that wrote it.
//
// Unknown JSON fields are ignored so newer builds can extend the document
// without invalidating older readers.
type DiscoveryCache struct {
	path        string
	fingerprint string
}

// discoveryFile is the persisted JSON shape.
type discoveryFile struct {
	Providers   []string          `json:"providers"`
	ModelIndex  map[string]string `json:"model_index"`
	Fingerprint string            `json:"fingerprint"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
}

// NewDiscoveryCache creates a discovery cache backed by the file at path.
// The fingerprint identifies the current provider build; records written
// under a different fingerprint load as misses.
func NewDiscoveryCache(path, fingerprint string) *DiscoveryCache {
	return &DiscoveryCache{
		path:        path,
		fingerprint: fingerprint,
	}
}

// DefaultDiscoveryCachePath returns the platform cache location for the
// discovery snapshot, falling back to the home directory and finally to a
// relative .cache directory when the platform locations are unavailable.
func DefaultDiscoveryCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, discoverySubDir, discoveryFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".tokker", discoveryFileName)
	}
	return filepath.Join(".cache", discoverySubDir, discoveryFileName)
}

// RegistryFingerprint derives a stable identity for a set of registered
// provider identifiers. Sorting makes the fingerprint independent of
// registration order.
func RegistryFingerprint(identifiers []string) string {
	sorted := make([]string, len(identifiers))
	copy(sorted, identifiers)
	sort.Strings(sorted)

	combined := strings.Join(sorted, "|")
	hash := sha256.Sum256([]byte(combined))

	return hex.EncodeToString(hash[:])
}

// Load reads and validates the cached discovery record. Any error is a
// miss; errors from malformed or mismatched content wrap ErrCacheInvalid.
func (d *DiscoveryCache) Load() (*ports.DiscoveryRecord, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}

	var file discoveryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrCacheInvalid, err)
	}

	// A missing key unmarshals to nil; an empty list does not.
	if file.Providers == nil || file.ModelIndex == nil || file.Fingerprint == "" {
		return nil, fmt.Errorf("%w: missing required fields", domainErrors.ErrCacheInvalid)
	}

	if file.Fingerprint != d.fingerprint {
		return nil, fmt.Errorf("%w: fingerprint mismatch", domainErrors.ErrCacheInvalid)
	}

	return &ports.DiscoveryRecord{
		Providers:  file.Providers,
		ModelIndex: file.ModelIndex,
	}, nil
}

// Write atomically replaces the cached record by writing to a temporary
// file in the same directory and renaming it into place.
func (d *DiscoveryCache) Write(providers []string, modelIndex map[string]string) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Normalize nil inputs so the written document always carries the
	// required keys.
	if providers == nil {
		providers = []string{}
	}
	if modelIndex == nil {
		modelIndex = map[string]string{}
	}

	file := discoveryFile{
		Providers:   providers,
		ModelIndex:  modelIndex,
		Fingerprint: d.fingerprint,
		CreatedAt:   time.Now().UTC(),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal discovery record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write discovery record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}

// Path returns the backing file location.
func (d *DiscoveryCache) Path() string {
	return d.path
}

// Ensure DiscoveryCache implements DiscoveryCachePort
var _ ports.DiscoveryCachePort = (*DiscoveryCache)(nil)
