package cache

import (
	"testing"
	"time"
)

func TestGet_SetThenGetReturnsValue(t *testing.T) {
	c := New(10)
	c.Set("k", "v", time.Second)
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Fatalf("want v, got %v ok=%v", v, ok)
	}
}

func TestGet_LazyExpiry(t *testing.T) {
	c := New(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v", time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry should be fresh")
	}

	now = now.Add(1100 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry must never be returned")
	}
	// Expiry on read removes the entry entirely.
	if c.Size() != 0 {
		t.Fatalf("want size 0 after expiry-on-read, got %d", c.Size())
	}
}

func TestGet_ExpiredEntryOccupiesCapacityUntilRead(t *testing.T) {
	c := New(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("dead", "v", time.Second)
	now = now.Add(2 * time.Second)
	// No background sweep: the dead entry is still physically present.
	if c.Size() != 1 {
		t.Fatalf("want size 1 before read, got %d", c.Size())
	}
}

func TestSet_FIFOEvictsOldestInserted(t *testing.T) {
	c := New(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	// Access recency must not matter: touch "a", then overflow.
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be present")
	}
	c.Set("d", 4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a was oldest-inserted and must be evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%s should survive eviction", k)
		}
	}
	if c.Size() != 3 {
		t.Fatalf("want size 3, got %d", c.Size())
	}
}

func TestSet_OverwriteKeepsInsertionPosition(t *testing.T) {
	c := New(3)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("b", 22, time.Minute) // overwrite below capacity keeps position
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute) // overflow

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a is still the oldest and must go first")
	}
	if v, _ := c.Get("b"); v != 22 {
		t.Fatalf("want overwritten value 22, got %v", v)
	}
}

func TestSet_EvictsExactlyOneOnFullEvenWhenOverwriting(t *testing.T) {
	// Matches the original behavior: a full cache evicts the oldest entry
	// before every insert, including an overwrite of an existing key.
	c := New(2)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("a", 11, time.Minute)

	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("want a=11, got %v ok=%v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("want size 2, got %d", c.Size())
	}

	c.Set("c", 3, time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b became oldest after a was reinserted and must be evicted")
	}
}

func TestClear(t *testing.T) {
	c := New(5)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("want empty cache, got %d", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("cleared entry returned")
	}
}
