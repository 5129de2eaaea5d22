package cache_test

import (
	"testing"
	"time"

	"github.com/Lauda128109319/food-alert/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set(cache.Key("alice", "2026-08"), "snapshot")

	v, ok := c.Get(cache.Key("alice", "2026-08"))

	if !ok || v != "snapshot" {
		t.Fatalf("get = %v %v", v, ok)
	}

	if _, ok := c.Get(cache.Key("alice", "2026-09")); ok {
		t.Fatalf("unexpected hit for another month")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(10 * time.Millisecond)

	c.Set("k", 1)

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestInvalidateOwnerIsScoped(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set(cache.Key("alice", "2026-08"), 1)
	c.Set(cache.Key("alice", "2026-09"), 2)
	c.Set(cache.Key("bob", "2026-08"), 3)

	c.InvalidateOwner("alice")

	if _, ok := c.Get(cache.Key("alice", "2026-08")); ok {
		t.Fatalf("alice 2026-08 survived")
	}

	if _, ok := c.Get(cache.Key("alice", "2026-09")); ok {
		t.Fatalf("alice 2026-09 survived")
	}

	if _, ok := c.Get(cache.Key("bob", "2026-08")); !ok {
		t.Fatalf("bob's entry was dropped")
	}
}

func TestClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry survived clear")
	}
}
