// Package watch provides a debounced file watcher for the watch command.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event.
type EventType string

// Watch event types.
const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventRemove EventType = "remove"
	EventRename EventType = "rename"
)

// Event represents a file system event for a watched file.
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Config holds configuration for the file watcher.
type Config struct {
	DebounceDuration time.Duration
	BufferSize       int
}

// DefaultConfig returns sensible default configuration. The debounce window
// absorbs editor save storms (write, chmod, rename in quick succession).
func DefaultConfig() Config {
	return Config{
		DebounceDuration: 300 * time.Millisecond,
		BufferSize:       16,
	}
}

// Watcher monitors individual files for changes. It wraps fsnotify with
// debouncing, registering each file's parent directory so that editors
// which replace the file by rename are still observed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    Config
	events    chan Event
	errors    chan error

	// Watched file set, keyed by cleaned absolute path
	targets   map[string]struct{}
	targetsMu sync.RWMutex

	// Debouncing state
	pending   map[string]pendingEvent
	pendingMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// pendingEvent tracks a pending file event for debouncing.
type pendingEvent struct {
	eventType EventType
	timestamp time.Time
}

// NewWatcher creates a new file watcher with the given configuration.
func NewWatcher(cfg Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.DebounceDuration <= 0 {
		cfg.DebounceDuration = 300 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		events:    make(chan Event, cfg.BufferSize),
		errors:    make(chan error, cfg.BufferSize),
		targets:   make(map[string]struct{}),
		pending:   make(map[string]pendingEvent),
		ctx:       ctx,
		cancel:    cancel,
	}

	return w, nil
}

// Watch starts watching the given files for changes. Each file must exist
// when watching begins; events for other files in the same directories are
// filtered out.
func (w *Watcher) Watch(ctx context.Context, files ...string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	dirs := make(map[string]struct{})
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return err
		}

		w.targetsMu.Lock()
		w.targets[filepath.Clean(abs)] = struct{}{}
		w.targetsMu.Unlock()

		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	// Start event processing goroutine
	w.wg.Add(1)
	go w.processEvents()

	// Start debounce ticker goroutine
	w.wg.Add(1)
	go w.debounceProcessor()

	return nil
}

// Events returns the channel for receiving watch events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	err := w.fsWatcher.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errors)

	return err
}

// isTarget reports whether path names one of the watched files.
func (w *Watcher) isTarget(path string) bool {
	w.targetsMu.RLock()
	defer w.targetsMu.RUnlock()
	_, ok := w.targets[filepath.Clean(path)]
	return ok
}

// processEvents reads from fsnotify and queues events for debouncing.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			// The parent directory is watched; keep only the target files
			if !w.isTarget(event.Name) {
				continue
			}

			// Convert event type
			eventType := convertEventType(event.Op)
			if eventType == "" {
				continue
			}

			// Queue for debouncing
			w.pendingMu.Lock()
			w.pending[filepath.Clean(event.Name)] = pendingEvent{
				eventType: eventType,
				timestamp: time.Now(),
			}
			w.pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Drop error if channel is full
			}
		}
	}
}

// debounceProcessor periodically checks for stable events and emits them.
func (w *Watcher) debounceProcessor() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.DebounceDuration / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.emitStableEvents()
		}
	}
}

// emitStableEvents checks for events that have been stable long enough and emits them.
func (w *Watcher) emitStableEvents() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	now := time.Now()
	stable := make([]string, 0)

	for path, pending := range w.pending {
		if now.Sub(pending.timestamp) >= w.config.DebounceDuration {
			stable = append(stable, path)
		}
	}

	for _, path := range stable {
		pending := w.pending[path]
		delete(w.pending, path)

		event := Event{
			Path:      path,
			Type:      pending.eventType,
			Timestamp: pending.timestamp,
		}

		select {
		case w.events <- event:
		default:
			// Drop event if channel is full
		}
	}
}

// convertEventType converts fsnotify event operation to EventType.
func convertEventType(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return EventCreate
	case op&fsnotify.Write == fsnotify.Write:
		return EventWrite
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventRemove
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventRename
	default:
		return ""
	}
}
