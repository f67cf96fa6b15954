package keystore

import (
	"fmt"
	"sync"
)

// mapKeystore keeps keys in process memory. Meant for tests and for nodes
// running with an ephemeral store.
type mapKeystore struct {
	mu   sync.RWMutex
	keys map[KeyName]PrivKey
}

// NewMapKeystore constructs an in-memory Keystore.
func NewMapKeystore() Keystore {
	return &mapKeystore{keys: make(map[KeyName]PrivKey)}
}

func (m *mapKeystore) Put(n KeyName, k PrivKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[n]; ok {
		return fmt.Errorf("keystore: key '%s' already exists", n)
	}

	m.keys[n] = k
	return nil
}

func (m *mapKeystore) Get(n KeyName) (PrivKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.keys[n]
	if !ok {
		return PrivKey{}, fmt.Errorf("%w: %s", ErrNotFound, n)
	}

	return k, nil
}

func (m *mapKeystore) Delete(n KeyName) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[n]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, n)
	}

	delete(m.keys, n)
	return nil
}

func (m *mapKeystore) List() ([]KeyName, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]KeyName, 0, len(m.keys))
	for n := range m.keys {
		names = append(names, n)
	}

	return names, nil
}

// Path reports an empty path, nothing is ever written out.
func (m *mapKeystore) Path() string {
	return ""
}
