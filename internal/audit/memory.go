package audit

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory feed when no capacity is given.
const DefaultCapacity = 200

// MemoryLog keeps the most recent entries in process memory, newest first.
type MemoryLog struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

// NewMemoryLog constructs a bounded in-memory log.
func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryLog{capacity: capacity, now: time.Now}
}

// Log prepends an entry, dropping the oldest beyond capacity.
func (m *MemoryLog) Log(_ context.Context, entry Entry) error {
	entry = normalize(entry, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]Entry{entry}, m.entries...)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[:m.capacity]
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (m *MemoryLog) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, limit)
	copy(out, m.entries[:limit])
	return out, nil
}
