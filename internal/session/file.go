package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultPollInterval is how often a FileBackend checks the file for
// mutations made by other processes.
const DefaultPollInterval = 500 * time.Millisecond

// FileBackend persists session entries as a JSON map in a single file.
// It is used for the ephemeral scope: the file lives under the user's
// runtime directory, which the OS clears when the login session ends.
//
// FileBackend implements Notifier by polling the file and diffing against
// the last snapshot this process wrote or observed, so a logout in another
// terminal is picked up without restarting.
type FileBackend struct {
	mu       sync.Mutex
	path     string
	interval time.Duration
	known    map[string]string

	subMu sync.Mutex
	subs  map[int]func(key, newValue string)
	next  int
	stop  chan struct{}
	once  sync.Once
}

// DefaultEphemeralPath returns the session file location for the CLI:
// the XDG runtime directory when available, the system temp dir otherwise.
func DefaultEphemeralPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "manageday", "session.json")
}

// NewFileBackend creates a file-backed store at path. A zero interval
// uses DefaultPollInterval.
func NewFileBackend(path string, interval time.Duration) *FileBackend {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &FileBackend{
		path:     path,
		interval: interval,
		known:    map[string]string{},
		subs:     map[int]func(string, string){},
	}
}

func (f *FileBackend) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.save(entries)
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.save(entries)
}

// Notify starts the poller on first subscription and reports keys whose
// values diverge from the snapshot of this process's own writes.
func (f *FileBackend) Notify(fn func(key, newValue string)) (stop func()) {
	f.subMu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.subMu.Unlock()

	f.once.Do(func() {
		f.stop = make(chan struct{})
		go f.poll()
	})

	return func() {
		f.subMu.Lock()
		delete(f.subs, id)
		f.subMu.Unlock()
	}
}

// Close stops the poller. Safe to call when Notify was never used.
func (f *FileBackend) Close() {
	if f.stop != nil {
		select {
		case <-f.stop:
		default:
			close(f.stop)
		}
	}
}

func (f *FileBackend) poll() {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			f.diff()
		}
	}
}

// diff compares the file against the known snapshot and publishes every
// divergence as an external change.
func (f *FileBackend) diff() {
	f.mu.Lock()
	entries, err := f.load()
	if err != nil {
		f.mu.Unlock()
		return
	}

	var changed []struct{ key, value string }
	for key, value := range entries {
		if f.known[key] != value {
			changed = append(changed, struct{ key, value string }{key, value})
		}
	}
	for key := range f.known {
		if _, ok := entries[key]; !ok {
			changed = append(changed, struct{ key, value string }{key, ""})
		}
	}
	f.known = entries
	f.mu.Unlock()

	for _, c := range changed {
		f.publish(c.key, c.value)
	}
}

func (f *FileBackend) publish(key, newValue string) {
	f.subMu.Lock()
	fns := make([]func(string, string), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.subMu.Unlock()

	for _, fn := range fns {
		fn(key, newValue)
	}
}

// load reads the session file. A missing file is an empty store.
// Callers must hold f.mu.
func (f *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt session file is treated as empty rather than fatal.
		return map[string]string{}, nil
	}
	return entries, nil
}

// save writes the session file and refreshes the snapshot so our own
// writes are not reported as external changes. Callers must hold f.mu.
func (f *FileBackend) save(entries map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	f.known = maps.Clone(entries)
	return nil
}
