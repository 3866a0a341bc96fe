package cache

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/tracked/internal/models"
)

var (
	_ MonthCache = (*Memory)(nil)
	_ MonthCache = (*Redis)(nil)
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if _, ok := c.Get(ctx, 2024, 3); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Set(ctx, models.MonthView{Year: 2024, Month: 3, TotalDays: 31})
	view, ok := c.Get(ctx, 2024, 3)
	if !ok || view.TotalDays != 31 {
		t.Fatalf("Get() = %+v, %v", view, ok)
	}
	if _, ok := c.Get(ctx, 2024, 4); ok {
		t.Error("different month should miss")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, models.MonthView{Year: 2024, Month: 3})

	now = now.Add(4*time.Minute + 59*time.Second)
	if _, ok := c.Get(ctx, 2024, 3); !ok {
		t.Fatal("entry expired early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get(ctx, 2024, 3); ok {
		t.Fatal("entry survived its TTL")
	}
	if len(c.items) != 0 {
		t.Errorf("expired entry not evicted")
	}
}

func TestMemoryExpiryKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	c := NewMemory(5 * time.Minute)

	// The first clock read after expiry lands a fresh Set between Get's
	// read and write locks.
	refreshed := false
	c.now = func() time.Time {
		if !refreshed && now.After(start.Add(5*time.Minute)) {
			refreshed = true
			c.Set(ctx, models.MonthView{Year: 2024, Month: 3, TotalDays: 31})
		}
		return now
	}

	c.Set(ctx, models.MonthView{Year: 2024, Month: 3})
	now = now.Add(6 * time.Minute)

	view, ok := c.Get(ctx, 2024, 3)
	if !ok || view.TotalDays != 31 {
		t.Fatalf("Get = %+v, %v; want the refreshed view", view, ok)
	}
	if _, ok := c.Get(ctx, 2024, 3); !ok {
		t.Error("refreshed entry was evicted")
	}
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	c.Set(ctx, models.MonthView{Year: 2024, Month: 3})
	c.Set(ctx, models.MonthView{Year: 2024, Month: 4})

	c.Invalidate(ctx, 2024, 3)
	if _, ok := c.Get(ctx, 2024, 3); ok {
		t.Error("invalidated month still cached")
	}
	if _, ok := c.Get(ctx, 2024, 4); !ok {
		t.Error("other month was dropped")
	}

	c.InvalidateAll(ctx)
	if _, ok := c.Get(ctx, 2024, 4); ok {
		t.Error("InvalidateAll left entries behind")
	}
}

func TestMonthKey(t *testing.T) {
	if got := monthKey(2024, 3); got != "tracked:month:2024-03" {
		t.Errorf("monthKey() = %q", got)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not a url", time.Minute); err == nil {
		t.Error("expected error for malformed url")
	}
}
