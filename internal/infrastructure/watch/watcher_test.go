package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	t.Run("creates watcher with default config", func(t *testing.T) {
		w, err := NewWatcher(DefaultConfig())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer w.Close()

		if w == nil {
			t.Fatal("expected watcher to be non-nil")
		}
	})

	t.Run("creates watcher with custom debounce duration", func(t *testing.T) {
		cfg := Config{
			DebounceDuration: 200 * time.Millisecond,
			BufferSize:       50,
		}
		w, err := NewWatcher(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer w.Close()

		if w == nil {
			t.Fatal("expected watcher to be non-nil")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DebounceDuration != 300*time.Millisecond {
		t.Errorf("expected DebounceDuration 300ms, got %v", cfg.DebounceDuration)
	}
	if cfg.BufferSize != 16 {
		t.Errorf("expected BufferSize 16, got %d", cfg.BufferSize)
	}
}

func TestWatcherWatch(t *testing.T) {
	t.Run("detects file modification", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(filePath, []byte("before"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		w, err := NewWatcher(Config{
			DebounceDuration: 50 * time.Millisecond,
			BufferSize:       10,
		})
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}
		defer w.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := w.Watch(ctx, filePath); err != nil {
			t.Fatalf("failed to watch file: %v", err)
		}

		// Give watcher time to start
		time.Sleep(50 * time.Millisecond)

		if err := os.WriteFile(filePath, []byte("after"), 0644); err != nil {
			t.Fatalf("failed to modify file: %v", err)
		}

		select {
		case event := <-w.Events():
			if event.Path != filePath {
				t.Errorf("expected path %q, got %q", filePath, event.Path)
			}
			if event.Type != EventWrite {
				t.Errorf("expected Write event, got %q", event.Type)
			}
		case err := <-w.Errors():
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			t.Fatal("timeout waiting for event")
		}
	})

	t.Run("detects file deletion", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(filePath, []byte("content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		w, err := NewWatcher(Config{
			DebounceDuration: 50 * time.Millisecond,
			BufferSize:       10,
		})
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}
		defer w.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := w.Watch(ctx, filePath); err != nil {
			t.Fatalf("failed to watch file: %v", err)
		}

		time.Sleep(50 * time.Millisecond)

		if err := os.Remove(filePath); err != nil {
			t.Fatalf("failed to remove file: %v", err)
		}

		select {
		case event := <-w.Events():
			if event.Path != filePath {
				t.Errorf("expected path %q, got %q", filePath, event.Path)
			}
			if event.Type != EventRemove {
				t.Errorf("expected Remove event, got %q", event.Type)
			}
		case err := <-w.Errors():
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			t.Fatal("timeout waiting for event")
		}
	})

	t.Run("ignores sibling files", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "watched.txt")
		if err := os.WriteFile(filePath, []byte("content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		w, err := NewWatcher(Config{
			DebounceDuration: 50 * time.Millisecond,
			BufferSize:       10,
		})
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}
		defer w.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := w.Watch(ctx, filePath); err != nil {
			t.Fatalf("failed to watch file: %v", err)
		}

		// Touch a different file in the same directory
		sibling := filepath.Join(dir, "other.txt")
		if err := os.WriteFile(sibling, []byte("noise"), 0644); err != nil {
			t.Fatalf("failed to create sibling: %v", err)
		}

		select {
		case event := <-w.Events():
			t.Errorf("unexpected event for sibling file: %+v", event)
		case err := <-w.Errors():
			t.Fatalf("unexpected error: %v", err)
		case <-ctx.Done():
			// Expected - no event should be received
		}
	})

	t.Run("debounces rapid changes", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "busy.txt")
		if err := os.WriteFile(filePath, []byte("v0"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		w, err := NewWatcher(Config{
			DebounceDuration: 100 * time.Millisecond,
			BufferSize:       10,
		})
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}
		defer w.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := w.Watch(ctx, filePath); err != nil {
			t.Fatalf("failed to watch file: %v", err)
		}

		time.Sleep(50 * time.Millisecond)

		for i := 0; i < 5; i++ {
			if err := os.WriteFile(filePath, []byte("v"+string(rune('1'+i))), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			time.Sleep(10 * time.Millisecond) // Rapid writes
		}

		// Should receive only one debounced event
		eventCount := 0
		timeout := time.After(400 * time.Millisecond)
		for {
			select {
			case <-w.Events():
				eventCount++
			case err := <-w.Errors():
				t.Fatalf("unexpected error: %v", err)
			case <-timeout:
				// Allow 1-2 events due to timing variability
				if eventCount == 0 {
					t.Error("expected at least one event")
				}
				if eventCount > 2 {
					t.Errorf("expected 1-2 debounced events, got %d", eventCount)
				}
				return
			}
		}
	})

	t.Run("fails for missing file", func(t *testing.T) {
		w, err := NewWatcher(DefaultConfig())
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}
		defer w.Close()

		if err := w.Watch(context.Background(), "/no/such/file.txt"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestWatcherClose(t *testing.T) {
	t.Run("close stops watching", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(filePath, []byte("content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		w, err := NewWatcher(DefaultConfig())
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}

		if err := w.Watch(context.Background(), filePath); err != nil {
			t.Fatalf("failed to watch file: %v", err)
		}

		// Close should not error
		if err := w.Close(); err != nil {
			t.Errorf("expected no error from Close, got %v", err)
		}
	})

	t.Run("close can be called multiple times", func(t *testing.T) {
		w, err := NewWatcher(DefaultConfig())
		if err != nil {
			t.Fatalf("failed to create watcher: %v", err)
		}

		// Multiple closes should not panic
		_ = w.Close()
		_ = w.Close()
	})
}
