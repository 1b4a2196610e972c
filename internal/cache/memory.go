package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// maxJanitorInterval bounds how long expired entries linger unread.
const maxJanitorInterval = 5 * time.Minute

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewMemory creates a memory cache. A non-positive ttl keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && m.now().After(item.expires) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	e := item.entry
	return &e, true, nil
}

func (m *Memory) Put(_ context.Context, key string, e Entry) error {
	item := memoryItem{entry: e}
	if m.ttl > 0 {
		item.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

// Cleanup removes expired entries and returns how many were dropped.
func (m *Memory) Cleanup() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, item := range m.items {
		if !item.expires.IsZero() && now.After(item.expires) {
			delete(m.items, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// StartJanitor runs Cleanup every interval until Close. Only the first
// call has an effect.
func (m *Memory) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-m.stop:
					return
				case <-ticker.C:
					m.Cleanup()
				}
			}
		}()
	})
}

// Close stops the janitor, if running. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
	return nil
}
