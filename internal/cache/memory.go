package cache

import (
	"sync"
	"time"
)

// TTL tiers used for cached market data. Callers pick the tier matching the
// data category at Get time.
const (
	TTLQuotes     = 30 * time.Second
	TTLSentiment  = 5 * time.Minute
	TTLHistorical = time.Hour
)

// DefaultMaxEntries bounds the in-process store. When full, the
// oldest-inserted entry is evicted (FIFO, not LRU).
const DefaultMaxEntries = 100

type memoryEntry struct {
	value    any
	storedAt time.Time
}

// Memory is a bounded in-process key/value store with per-read TTL checks.
// It exists to keep outbound calls to the free public APIs inside their rate
// limits; nothing persists across restarts.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	order      []string
	maxEntries int
	now        func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	return NewMemoryWithClock(maxEntries, time.Now)
}

// NewMemoryWithClock builds a store reading time from now instead of the
// wall clock.
func NewMemoryWithClock(maxEntries int, now func() time.Time) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry, maxEntries),
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get returns the value stored under key if it is younger than ttl. A stale
// entry is treated as absent; the caller is expected to refetch and Set.
func (m *Memory) Get(key string, ttl time.Duration) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.storedAt) >= ttl {
		return nil, false
	}
	return entry.value, true
}

// Set overwrites any existing entry for key with a fresh timestamp. An
// overwrite keeps the key's original insertion-order position.
func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
		if len(m.order) > m.maxEntries {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
	}
	m.entries[key] = memoryEntry{value: value, storedAt: m.now()}
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
