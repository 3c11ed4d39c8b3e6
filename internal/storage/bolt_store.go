package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	historyBucket    = "history"
	expiryValueBytes = 8
	keyBytes         = 16
)

// boltStore implements a Store backed by BoltDB. Keys sort by record time so a reverse
// cursor walk yields the newest entries first.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores e with an expiry of now+TTL. RecordedAt defaults to now.
func (b *boltStore) Record(e Entry) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now.UTC()
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return fmt.Errorf("history bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, keyBytes)
		binary.BigEndian.PutUint64(key[:8], uint64(e.RecordedAt.UnixNano()))
		binary.BigEndian.PutUint64(key[8:], seq)
		if e.ID == "" {
			e.ID = fmt.Sprintf("%d-%d", e.RecordedAt.UnixNano(), seq)
		}

		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.entryTTL).Unix()))
		return bucket.Put(key, append(buf, payload...))
	})
}

// Recent returns up to limit unexpired entries, newest first. limit <= 0 means all.
func (b *boltStore) Recent(limit int) ([]Entry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := time.Now()
	var out []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return fmt.Errorf("history bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				continue
			}
			var e Entry
			if err := json.Unmarshal(v[expiryValueBytes:], &e); err != nil {
				return fmt.Errorf("decode entry %x: %w", k, err)
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return fmt.Errorf("history bucket missing")
		}

		// Deleting through the cursor mid-walk skips the following key, so collect first.
		var expired [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the value prefix.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
