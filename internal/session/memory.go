package session

import "sync"

// MemoryBackend is an in-process backend. It backs the ephemeral scope when
// no session file is wanted and stands in for both scopes in tests.
//
// SimulateExternalChange mutates the store and publishes the change the way
// a FileBackend poller would report another process's write, which lets the
// cross-context convergence behavior run without real storage.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]string

	subMu sync.Mutex
	subs  map[int]func(key, newValue string)
	next  int
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: map[string]string{},
		subs:    map[int]func(string, string){},
	}
}

func (m *MemoryBackend) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Notify registers fn for externally simulated changes.
func (m *MemoryBackend) Notify(fn func(key, newValue string)) (stop func()) {
	m.subMu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// SimulateExternalChange applies a mutation as if another context performed
// it and notifies subscribers synchronously. An empty newValue removes the
// key, mirroring a storage-removal event.
func (m *MemoryBackend) SimulateExternalChange(key, newValue string) {
	m.mu.Lock()
	if newValue == "" {
		delete(m.entries, key)
	} else {
		m.entries[key] = newValue
	}
	m.mu.Unlock()

	m.subMu.Lock()
	fns := make([]func(string, string), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(key, newValue)
	}
}
