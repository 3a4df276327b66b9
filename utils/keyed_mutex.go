package utils

import "sync"

// KeyedMutex serializes operations per string key. Locks are created on
// first use and kept for the life of the process; the key space of a
// market (collection/token pairs) is small enough that no eviction is
// needed.
type KeyedMutex struct {
	lk    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (m *KeyedMutex) Lock(key string) {
	m.mutexFor(key).Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.mutexFor(key).Unlock()
}

func (m *KeyedMutex) mutexFor(key string) *sync.Mutex {
	m.lk.Lock()
	defer m.lk.Unlock()
	lk, ok := m.locks[key]
	if !ok {
		lk = new(sync.Mutex)
		m.locks[key] = lk
	}
	return lk
}
