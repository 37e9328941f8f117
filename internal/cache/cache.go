// Package cache implements the engine's layered cache: a sharded in-memory
// L1 with sampling-based eviction, backed by a persistent L2 on disk.
// Every analyzer result is keyed by (category, 128-bit content hash) so
// two files with identical content never recompute the same analysis.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultShards      = 16
	DefaultMaxEntries  = 4000
	DefaultTTL         = 2 * time.Hour
	sampleSize         = 5 // LFU sampling window, k=5
	cleanupSweepPeriod = 10 * time.Minute
)

// Key128 is the cache's addressing scheme: a category tag plus a 128-bit
// content hash (fast xxhash64 half for shard routing/locality, sha256-derived
// half for cross-file collision resistance).
type Key128 struct {
	Category string
	Fast     uint64
	Slow     uint64
}

// KeyFor builds a Key128 from raw content, scoped to one analyzer category.
func KeyFor(category string, content []byte) Key128 {
	fast := xxhash.Sum64(content)
	full := sha256.Sum256(content)
	slow := binary.LittleEndian.Uint64(full[:8])
	return Key128{Category: category, Fast: fast, Slow: slow}
}

type entry struct {
	data        []byte
	cachedAtNano int64
	accessCount  int64
}

// shard is one partition of the L1 cache: its own map, its own single-flight
// group, so a miss storm on one category/hash never serializes against an
// unrelated key in another shard.
type shard struct {
	mu      sync.RWMutex
	entries map[Key128]*entry
	group   singleflight.Group
	count   int64
}

func newShard() *shard {
	return &shard{entries: make(map[Key128]*entry)}
}

// Cache is the process-wide layered cache. L1 holds hot entries in memory;
// L2, when configured, receives a copy of every Put and persists it to disk.
type Cache struct {
	shards     []*shard
	numShards  int
	maxEntries int
	ttl        time.Duration
	l2         *L2Store // nil if no persistent layer configured

	hits      int64
	misses    int64
	evictions int64

	stopCleanup chan struct{}
}

// Options configures a new Cache.
type Options struct {
	Shards     int
	MaxEntries int // per shard
	TTL        time.Duration
	L2         *L2Store
}

// DefaultOptions returns the engine's default cache sizing.
func DefaultOptions() Options {
	return Options{
		Shards:     DefaultShards,
		MaxEntries: DefaultMaxEntries / DefaultShards,
		TTL:        DefaultTTL,
	}
}

// New constructs a Cache and starts its background TTL sweep.
func New(opts Options) *Cache {
	if opts.Shards <= 0 {
		opts.Shards = DefaultShards
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries / opts.Shards
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	c := &Cache{
		shards:      make([]*shard, opts.Shards),
		numShards:   opts.Shards,
		maxEntries:  opts.MaxEntries,
		ttl:         opts.TTL,
		l2:          opts.L2,
		stopCleanup: make(chan struct{}),
	}
	for i := range c.shards {
		c.shards[i] = newShard()
	}

	go c.runCleanup()
	return c
}

func (c *Cache) shardFor(key Key128) *shard {
	return c.shards[key.Fast%uint64(c.numShards)]
}

// Get returns a cached value for key, checking L1 then L2. A false result
// means the caller must compute the value itself.
func (c *Cache) Get(key Key128) ([]byte, bool) {
	sh := c.shardFor(key)
	now := time.Now().UnixNano()

	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()

	if ok {
		if now-atomic.LoadInt64(&e.cachedAtNano) <= c.ttl.Nanoseconds() {
			atomic.AddInt64(&e.accessCount, 1)
			atomic.AddInt64(&c.hits, 1)
			return e.data, true
		}
		sh.mu.Lock()
		delete(sh.entries, key)
		sh.mu.Unlock()
		atomic.AddInt64(&sh.count, -1)
	}

	if c.l2 != nil {
		if data, ok := c.l2.Get(key); ok {
			atomic.AddInt64(&c.hits, 1)
			c.putL1(key, data)
			return data, true
		}
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores value under key in L1, spilling to L2 if configured, evicting
// from L1 if the owning shard is over capacity.
func (c *Cache) Put(key Key128, value []byte) {
	c.putL1(key, value)
	if c.l2 != nil {
		c.l2.Put(key, value, c.ttl)
	}
}

func (c *Cache) putL1(key Key128, value []byte) {
	sh := c.shardFor(key)
	now := time.Now().UnixNano()

	sh.mu.Lock()
	_, existed := sh.entries[key]
	sh.entries[key] = &entry{data: value, cachedAtNano: now, accessCount: 1}
	sh.mu.Unlock()

	if !existed {
		count := atomic.AddInt64(&sh.count, 1)
		if count > int64(c.maxEntries) {
			c.evictSample(sh)
		}
	}
}

// evictSample implements LRU+LFU(k=5) sampling eviction: draw sampleSize
// random-order entries from the shard's map (Go map iteration order is
// already randomized) and evict whichever scores lowest on
// recency-weighted frequency, rather than scanning the whole shard.
func (c *Cache) evictSample(sh *shard) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := time.Now().UnixNano()
	var worstKey Key128
	var worstScore float64 = -1
	found := false
	sampled := 0

	for k, e := range sh.entries {
		age := float64(now-e.cachedAtNano) / float64(time.Second)
		if age <= 0 {
			age = 1
		}
		score := float64(e.accessCount) / age
		if !found || score < worstScore {
			worstScore = score
			worstKey = k
			found = true
		}
		sampled++
		if sampled >= sampleSize {
			break
		}
	}

	if found {
		delete(sh.entries, worstKey)
		atomic.AddInt64(&sh.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// GetOrCompute returns the cached value for key, computing and storing it
// via fn exactly once across concurrent callers racing on the same key
// (thundering-herd prevention, scoped per shard).
func (c *Cache) GetOrCompute(key Key128, fn func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	sh := c.shardFor(key)
	// singleflight keys are strings; Key128 has no stable string form by
	// default, so build one scoped to this shard's group.
	groupKey := keyString(key)

	v, err, _ := sh.group.Do(groupKey, func() (interface{}, error) {
		if data, ok := c.Get(key); ok {
			return data, nil
		}
		data, err := fn()
		if err != nil {
			return nil, err
		}
		c.Put(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func keyString(key Key128) string {
	buf := make([]byte, 0, len(key.Category)+17)
	buf = append(buf, key.Category...)
	buf = append(buf, ':')
	buf = binary.LittleEndian.AppendUint64(buf, key.Fast)
	buf = binary.LittleEndian.AppendUint64(buf, key.Slow)
	return string(buf)
}

// Invalidate removes key from both cache layers, used when a watched file
// changes underneath a cached analysis result.
func (c *Cache) Invalidate(key Key128) {
	sh := c.shardFor(key)
	sh.mu.Lock()
	if _, ok := sh.entries[key]; ok {
		delete(sh.entries, key)
		atomic.AddInt64(&sh.count, -1)
	}
	sh.mu.Unlock()

	if c.l2 != nil {
		c.l2.Delete(key)
	}
}

// Stats reports cache hit/miss/eviction counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
	L1Entries int64
}

func (c *Cache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses

	var entries int64
	for _, sh := range c.shards {
		entries += atomic.LoadInt64(&sh.count)
	}

	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   hitRate,
		L1Entries: entries,
	}
}

func (c *Cache) runCleanup() {
	ticker := time.NewTicker(cleanupSweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) sweepExpired() {
	now := time.Now().UnixNano()
	ttlNanos := c.ttl.Nanoseconds()
	for _, sh := range c.shards {
		sh.mu.Lock()
		for k, e := range sh.entries {
			if now-e.cachedAtNano > ttlNanos {
				delete(sh.entries, k)
				atomic.AddInt64(&sh.count, -1)
			}
		}
		sh.mu.Unlock()
	}
}

// Shutdown stops the background TTL sweep and closes L2 if present.
func (c *Cache) Shutdown() error {
	close(c.stopCleanup)
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
