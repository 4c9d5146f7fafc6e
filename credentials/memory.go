package credentials

import "sync"

// MemoryStore keeps the token pair in process memory. It is the default
// store when the caller does not need persistence across restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
}

// NewMemoryStore creates an in-memory store seeded with the given pair.
func NewMemoryStore(pair TokenPair) *MemoryStore {
	return &MemoryStore{pair: pair}
}

func (m *MemoryStore) Get() (TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *MemoryStore) Set(pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	return nil
}

func (m *MemoryStore) ClearAccessToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.AccessToken = ""
	return nil
}
