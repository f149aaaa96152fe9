// Package textcache keeps extracted document text in a bbolt file so the
// same URL is not downloaded and parsed twice within the TTL.
package textcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

var bucketTexts = []byte("texts")

// Entry is one cached extraction.
type Entry struct {
	Text         string    `json:"text"`
	ContentType  string    `json:"content_type"`
	PageCount    int       `json:"page_count"`
	PagesRead    int       `json:"pages_read"`
	SkippedPages []int     `json:"skipped_pages,omitempty"`
	StoredAt     time.Time `json:"stored_at"`
}

type Cache struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates or opens the cache file at path. ttl <= 0 keeps entries
// forever.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open text cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketTexts); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketTexts, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the storage key for a URL read up to maxPages pages.
func Key(url string, maxPages int) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(maxPages)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached entry, or ok=false when it is missing or expired.
func (c *Cache) Get(url string, maxPages int) (entry Entry, ok bool, err error) {
	key := []byte(Key(url, maxPages))
	err = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTexts).Get(key)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("decode cache entry: %w", err)
		}
		ok = !c.expired(entry)
		return nil
	})
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (c *Cache) Put(url string, maxPages int, entry Entry) error {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = c.now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTexts).Put([]byte(Key(url, maxPages)), data)
	})
}

// Prune deletes expired entries and reports how many were removed.
func (c *Cache) Prune() (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	removed := 0
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTexts)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil || c.expired(entry) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.StoredAt) > c.ttl
}
