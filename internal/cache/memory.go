package cache

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/tracked/internal/models"
)

type memoryItem struct {
	view    models.MonthView
	expires time.Time
}

// Memory is an in-process MonthCache with a fixed TTL.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemory creates a cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:   ttl,
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, year, month int) (models.MonthView, bool) {
	key := monthKey(year, month)

	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return models.MonthView{}, false
	}
	if m.now().Before(item.expires) {
		return item.view, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A Set may have replaced the item since the read lock was dropped.
	item, ok = m.items[key]
	if !ok {
		return models.MonthView{}, false
	}
	if !m.now().Before(item.expires) {
		delete(m.items, key)
		return models.MonthView{}, false
	}
	return item.view, true
}

func (m *Memory) Set(_ context.Context, view models.MonthView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[monthKey(view.Year, view.Month)] = memoryItem{view: view, expires: m.now().Add(m.ttl)}
}

func (m *Memory) Invalidate(_ context.Context, year, month int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, monthKey(year, month))
}

func (m *Memory) InvalidateAll(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
}

func (m *Memory) Close() error { return nil }
