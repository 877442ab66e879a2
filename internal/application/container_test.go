// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"testing"

	"github.com/igoakulov/tokker/internal/domain/tokenize"
	"github.com/igoakulov/tokker/internal/infrastructure/config"
)

// isolateHome points HOME and the cache directory at a temp dir so the
// container never touches the real ~/.tokker.
func isolateHome(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)
}

func TestNewContainer(t *testing.T) {
	isolateHome(t)

	cfg := config.NewDefaultConfig()

	container, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close()

	if container.Config() == nil {
		t.Error("Config should not be nil")
	}
	if container.ConfigLoader() == nil {
		t.Error("ConfigLoader should not be nil")
	}
	if container.Logger() == nil {
		t.Error("Logger should not be nil")
	}
	if container.Tracer() == nil {
		t.Error("Tracer should not be nil")
	}
	if container.Registry() == nil {
		t.Error("Registry should not be nil")
	}
	if container.DiscoveryCache() == nil {
		t.Error("DiscoveryCache should not be nil")
	}
	if container.History() == nil {
		t.Error("History should not be nil when recording is enabled")
	}
}

func TestNewContainer_WithNilConfig(t *testing.T) {
	isolateHome(t)

	// NewContainer should create a default config when nil is passed
	container, err := NewContainer(nil, false)
	if err != nil {
		t.Fatalf("NewContainer with nil config failed: %v", err)
	}
	defer container.Close()

	if container.Config() == nil {
		t.Error("Config should not be nil even when nil is passed")
	}
	if container.Config().Defaults.Model != config.DefaultModel {
		t.Errorf("expected default model %q, got %q",
			config.DefaultModel, container.Config().Defaults.Model)
	}
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	isolateHome(t)

	cfg := config.NewDefaultConfig()
	cfg.Defaults.Output = "sideways"

	if _, err := NewContainer(cfg, false); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestNewContainer_HistoryDisabled(t *testing.T) {
	isolateHome(t)

	cfg := config.NewDefaultConfig()
	cfg.History.Enabled = false

	container, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close()

	if container.History() != nil {
		t.Error("History should be nil when recording is disabled")
	}
}

func TestContainer_Close(t *testing.T) {
	isolateHome(t)

	container, err := NewContainer(config.NewDefaultConfig(), false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	if err := container.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Closing again should not error
	if err := container.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestContainer_RecordHistory(t *testing.T) {
	isolateHome(t)

	container, err := NewContainer(config.NewDefaultConfig(), false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	result := tokenize.NewResult([]string{"Hello", " world"}, []int{9906, 1917})
	container.RecordHistory(ctx, "Hello world", "cl100k_base", "OpenAI", result)

	entries, err := container.History().Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Model != "cl100k_base" || entry.Provider != "OpenAI" {
		t.Errorf("unexpected entry metadata: %+v", entry)
	}
	if entry.TokenCount != 2 || entry.WordCount != 2 || entry.CharCount != 11 {
		t.Errorf("unexpected entry counts: %+v", entry)
	}
}

func TestContainer_RecordHistoryDisabledIsNoop(t *testing.T) {
	isolateHome(t)

	cfg := config.NewDefaultConfig()
	cfg.History.Enabled = false

	container, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close()

	// Must not panic with no history repository wired
	result := tokenize.NewResult([]string{"hi"}, []int{6151})
	container.RecordHistory(context.Background(), "hi", "cl100k_base", "OpenAI", result)
	container.RecordHistory(context.Background(), "hi", "cl100k_base", "OpenAI", nil)
}
