package cache_test

import (
	"sort"
	"testing"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/infra/cache"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := cache.New[string](time.Minute, cache.WithClock(clock.Now))

	c.Set("key1", "value1")
	clock.Advance(2 * time.Minute)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
	if c.Len() != 1 {
		t.Fatalf("expired entries stay until evicted, got len %d", c.Len())
	}
}

func TestCache_Touch(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := cache.New[string](time.Minute, cache.WithClock(clock.Now))

	c.Set("key1", "value1")
	clock.Advance(50 * time.Second)
	if !c.Touch("key1") {
		t.Fatal("expected touch to succeed")
	}
	clock.Advance(50 * time.Second)

	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected touched entry to be alive")
	}
	if c.Touch("missing") {
		t.Fatal("expected touch on missing key to fail")
	}
}

func TestCache_EvictExpired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := cache.New[int](time.Minute, cache.WithClock(clock.Now))

	c.Set("old1", 1)
	c.Set("old2", 2)
	clock.Advance(45 * time.Second)
	c.Set("fresh", 3)
	clock.Advance(30 * time.Second)

	removed := c.EvictExpired()
	sort.Strings(removed)

	if len(removed) != 2 || removed[0] != "old1" || removed[1] != "old2" {
		t.Fatalf("unexpected evictions: %v", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
	if vals := c.Values(); len(vals) != 1 || vals[0] != 3 {
		t.Fatalf("unexpected values: %v", vals)
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
