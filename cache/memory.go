package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryBackend is a concurrent in-memory LRU cache backend (spec.md
// §4.7). With MaxSize > 0, inserting beyond the limit evicts the
// least-recently-used entry atomically with the insert. The stats
// snapshot is cached for up to 5 seconds and invalidated by every
// Get, Set, Delete, Clear and Cleanup.
type MemoryBackend struct {
	MaxSize int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits, misses, evictions int64

	statsMu    sync.Mutex
	statsAt    time.Time
	statsCache Stats
}

type memItem struct {
	key   string
	entry Entry
}

// NewMemoryBackend creates an in-memory backend. maxSize <= 0 means unbounded.
func NewMemoryBackend(maxSize int) *MemoryBackend {
	return &MemoryBackend{
		MaxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		m.misses++
		m.invalidateStats()
		return Entry{}, false, nil
	}
	item := el.Value.(*memItem)
	if item.entry.Expired(time.Now()) {
		m.removeLocked(el)
		m.misses++
		m.invalidateStats()
		return Entry{}, false, nil
	}
	m.order.MoveToFront(el)
	m.hits++
	m.invalidateStats()
	return item.entry, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry := Entry{Value: value, CreatedAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	if el, ok := m.entries[key]; ok {
		el.Value.(*memItem).entry = entry
		m.order.MoveToFront(el)
		m.invalidateStats()
		return nil
	}

	el := m.order.PushFront(&memItem{key: key, entry: entry})
	m.entries[key] = el

	if m.MaxSize > 0 {
		for len(m.entries) > m.MaxSize {
			oldest := m.order.Back()
			if oldest == nil {
				break
			}
			m.removeLocked(oldest)
			m.evictions++
		}
	}
	m.invalidateStats()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	m.removeLocked(el)
	m.invalidateStats()
	return true, nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*list.Element)
	m.order = list.New()
	m.invalidateStats()
	return nil
}

// Cleanup removes every expired entry and invalidates the cached stats
// snapshot, independent of any Get-triggered lazy expiry.
func (m *MemoryBackend) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*memItem).entry.Expired(now) {
			m.removeLocked(el)
		}
		el = next
	}
	m.invalidateStats()
}

func (m *MemoryBackend) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	if !m.statsAt.IsZero() && time.Since(m.statsAt) < 5*time.Second {
		return m.statsCache, nil
	}

	s := Stats{Hits: m.hits, Misses: m.misses, Evictions: m.evictions, Size: len(m.entries)}
	m.statsCache = s
	m.statsAt = time.Now()
	return s, nil
}

// invalidateStats must be called with mu held; it only needs to clear the
// cached snapshot, so it takes statsMu independently.
func (m *MemoryBackend) invalidateStats() {
	m.statsMu.Lock()
	m.statsAt = time.Time{}
	m.statsMu.Unlock()
}

func (m *MemoryBackend) removeLocked(el *list.Element) {
	item := el.Value.(*memItem)
	delete(m.entries, item.key)
	m.order.Remove(el)
}

var _ Backend = (*MemoryBackend)(nil)
