package cache

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var rootBucket = []byte("lci_cache")

// L2Store is the persistent second cache layer: one bbolt database file,
// a single bucket whose keys carry the category as a prefix, a TTL header
// prefixed to every stored value, and size-cap eviction that sweeps the
// entries with the earliest expiry once the database grows past MaxBytes.
type L2Store struct {
	db       *bolt.DB
	maxBytes int64
}

// OpenL2Store opens (creating if necessary) a bbolt-backed L2 cache at path.
func OpenL2Store(path string, maxBytes int64) (*L2Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open L2 cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init L2 cache bucket: %w", err)
	}

	return &L2Store{db: db, maxBytes: maxBytes}, nil
}

// record is the on-disk value shape: an 8-byte expiry header (unix nanos)
// followed by the raw payload.
func encodeRecord(value []byte, ttl time.Duration) []byte {
	buf := make([]byte, 8+len(value))
	binary.LittleEndian.PutUint64(buf, uint64(time.Now().Add(ttl).UnixNano()))
	copy(buf[8:], value)
	return buf
}

func decodeRecord(raw []byte) (value []byte, expiresAtNano int64, ok bool) {
	if len(raw) < 8 {
		return nil, 0, false
	}
	expiresAtNano = int64(binary.LittleEndian.Uint64(raw[:8]))
	return raw[8:], expiresAtNano, true
}

func diskKey(key Key128) []byte {
	buf := make([]byte, 0, len(key.Category)+17)
	buf = append(buf, key.Category...)
	buf = append(buf, ':')
	buf = binary.BigEndian.AppendUint64(buf, key.Fast)
	buf = binary.BigEndian.AppendUint64(buf, key.Slow)
	return buf
}

// Get looks up key, returning (nil, false) if absent or expired.
func (s *L2Store) Get(key Key128) ([]byte, bool) {
	var value []byte
	var expired bool

	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		raw := b.Get(diskKey(key))
		if raw == nil {
			return nil
		}
		v, expiresAt, ok := decodeRecord(raw)
		if !ok {
			return nil
		}
		if time.Now().UnixNano() > expiresAt {
			expired = true
			return nil
		}
		value = append([]byte(nil), v...)
		return nil
	})

	if expired {
		_ = s.Delete(key)
		return nil, false
	}
	return value, value != nil
}

// Put stores value under key with the given TTL, sweeping the oldest
// entries first if the database has grown past MaxBytes.
func (s *L2Store) Put(key Key128, value []byte, ttl time.Duration) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		if s.maxBytes > 0 && int64(tx.Size()) > s.maxBytes {
			sweepOldest(b, tx.Size()-s.maxBytes)
		}
		return b.Put(diskKey(key), encodeRecord(value, ttl))
	})
}

// Delete removes key from the store.
func (s *L2Store) Delete(key Key128) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(diskKey(key))
	})
}

// sweepOldest deletes the oldest-expiring entries (smallest expiry
// timestamp) until approximately freedBytes worth of keys are removed.
// Called with the bucket's write transaction already open.
func sweepOldest(b *bolt.Bucket, freedBytes int64) {
	type candidate struct {
		key       []byte
		expiresAt int64
		size      int
	}
	var candidates []candidate

	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		_, expiresAt, ok := decodeRecord(v)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{key: append([]byte(nil), k...), expiresAt: expiresAt, size: len(v)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].expiresAt < candidates[j].expiresAt })

	var freed int64
	for _, cand := range candidates {
		if freed >= freedBytes {
			break
		}
		_ = b.Delete(cand.key)
		freed += int64(cand.size)
	}
}

// Close closes the underlying database file.
func (s *L2Store) Close() error {
	return s.db.Close()
}
