package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c := New(Options{Shards: 4, MaxEntries: 100, TTL: time.Hour})
	defer c.Shutdown()

	key := KeyFor("complexity", []byte("func main() {}"))
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss before Put")
	}

	c.Put(key, []byte(`{"cyclomatic":1}`))

	val, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if string(val) != `{"cyclomatic":1}` {
		t.Errorf("unexpected value: %s", val)
	}
}

func TestCache_DifferentCategoriesDontCollide(t *testing.T) {
	c := New(Options{Shards: 4, MaxEntries: 100, TTL: time.Hour})
	defer c.Shutdown()

	content := []byte("package main")
	k1 := KeyFor("complexity", content)
	k2 := KeyFor("satd", content)

	c.Put(k1, []byte("a"))
	c.Put(k2, []byte("b"))

	v1, _ := c.Get(k1)
	v2, _ := c.Get(k2)
	if string(v1) == string(v2) {
		t.Errorf("expected distinct values per category, got %s and %s", v1, v2)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(Options{Shards: 2, MaxEntries: 100, TTL: time.Millisecond})
	defer c.Shutdown()

	key := KeyFor("satd", []byte("// TODO: fix this"))
	c.Put(key, []byte("finding"))

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected entry to have expired")
	}
}

func TestCache_EvictsWhenShardFull(t *testing.T) {
	c := New(Options{Shards: 1, MaxEntries: 3, TTL: time.Hour})
	defer c.Shutdown()

	for i := 0; i < 10; i++ {
		key := KeyFor("duplicate", []byte{byte(i)})
		c.Put(key, []byte{byte(i)})
	}

	stats := c.Stats()
	if stats.L1Entries > 4 {
		t.Errorf("expected shard to stay near its cap, got %d entries", stats.L1Entries)
	}
	if stats.Evictions == 0 {
		t.Error("expected at least one eviction")
	}
}

func TestCache_GetOrCompute_SingleFlight(t *testing.T) {
	c := New(Options{Shards: 4, MaxEntries: 100, TTL: time.Hour})
	defer c.Shutdown()

	key := KeyFor("big_o", []byte("for { for { } }"))
	calls := 0

	compute := func() ([]byte, error) {
		calls++
		return []byte("O(n^2)"), nil
	}

	for i := 0; i < 5; i++ {
		val, err := c.GetOrCompute(key, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(val) != "O(n^2)" {
			t.Errorf("unexpected value: %s", val)
		}
	}

	if calls != 1 {
		t.Errorf("expected compute to run exactly once, ran %d times", calls)
	}
}

func TestL2Store_PutGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2.db")
	store, err := OpenL2Store(path, 0)
	if err != nil {
		t.Fatalf("OpenL2Store: %v", err)
	}
	defer store.Close()

	key := KeyFor("dependency_graph", []byte("module foo"))
	store.Put(key, []byte("graph-bytes"), time.Hour)

	val, ok := store.Get(key)
	if !ok || string(val) != "graph-bytes" {
		t.Fatalf("expected to retrieve stored value, got %q ok=%v", val, ok)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get(key); ok {
		t.Error("expected miss after delete")
	}
}

func TestL2Store_TTLExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2.db")
	store, err := OpenL2Store(path, 0)
	if err != nil {
		t.Fatalf("OpenL2Store: %v", err)
	}
	defer store.Close()

	key := KeyFor("complexity", []byte("x"))
	store.Put(key, []byte("stale"), time.Nanosecond)

	time.Sleep(2 * time.Millisecond)

	if _, ok := store.Get(key); ok {
		t.Error("expected expired entry to be absent")
	}
}

func TestCache_L1AndL2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l2.db")
	l2, err := OpenL2Store(path, 0)
	if err != nil {
		t.Fatalf("OpenL2Store: %v", err)
	}

	c := New(Options{Shards: 2, MaxEntries: 100, TTL: time.Hour, L2: l2})
	defer c.Shutdown()

	key := KeyFor("defect_probability", []byte("risk"))

	// Entry exists only in L2, simulating one that was already evicted from
	// L1 (or produced by a prior process run). Get must fall back to L2 and
	// backfill L1 with it.
	l2.Put(key, []byte("0.73"), time.Hour)

	val, ok := c.Get(key)
	if !ok {
		t.Fatal("expected L2 fallback to serve the key")
	}
	if string(val) != "0.73" {
		t.Errorf("unexpected value from L2 fallback: %s", val)
	}

	sh := c.shardFor(key)
	sh.mu.RLock()
	_, backfilled := sh.entries[key]
	sh.mu.RUnlock()
	if !backfilled {
		t.Error("expected L2 hit to backfill L1")
	}
}
