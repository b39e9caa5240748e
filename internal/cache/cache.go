// Package cache memoizes search results keyed by (user, query), with
// fuzzy query matching: a lookup hits when a stored query's similarity
// ratio against the incoming query clears a configurable threshold.
//
// The cache must be invalidated wholesale whenever the document set
// changes; serving stale results after a mutation is a correctness
// bug, not a tradeoff.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/renameio"
	lru "github.com/hashicorp/golang-lru/v2"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
)

// DefaultThreshold is the similarity ratio required for a hit.
// 0.92 keeps queries differing in one meaningful term apart; 0.8 is a
// looser tuning value, not a separate behavior.
const DefaultThreshold = 0.92

// DefaultMaxPerUser caps cached entries per user.
const DefaultMaxPerUser = 128

// Cache is a concurrency-safe fuzzy response cache.
type Cache[V any] struct {
	mu        sync.Mutex
	users     map[string]*lru.Cache[string, V]
	threshold float64
	perUser   int
}

// New creates a cache with the given similarity threshold and per-user
// capacity. Zero values fall back to the defaults.
func New[V any](threshold float64, perUser int) *Cache[V] {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if perUser <= 0 {
		perUser = DefaultMaxPerUser
	}
	return &Cache[V]{
		users:     make(map[string]*lru.Cache[string, V]),
		threshold: threshold,
		perUser:   perUser,
	}
}

// Get returns the cached value for the first stored query whose
// similarity to query clears the threshold. Stored queries are scanned
// oldest first, so repeated lookups are deterministic.
func (c *Cache[V]) Get(user, query string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.users[user]
	if !ok {
		return zero, false
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	for _, stored := range bucket.Keys() {
		if Ratio(needle, stored) >= c.threshold {
			if v, hit := bucket.Peek(stored); hit {
				return v, true
			}
		}
	}
	return zero, false
}

// Put stores a value for (user, query), evicting the user's least
// recently used entry at capacity.
func (c *Cache[V]) Put(user, query string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.users[user]
	if !ok {
		// Size is validated in New; construction cannot fail.
		bucket, _ = lru.New[string, V](c.perUser)
		c.users[user] = bucket
	}
	bucket.Add(strings.ToLower(strings.TrimSpace(query)), value)
}

// InvalidateAll drops every cached entry for every user. Call on any
// document-set mutation.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = make(map[string]*lru.Cache[string, V])
}

// Len returns the total number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, bucket := range c.users {
		n += bucket.Len()
	}
	return n
}

// snapshot is the on-disk cache format.
type snapshot[V any] struct {
	Version int                     `json:"version"`
	Entries map[string]map[string]V `json:"entries"`
}

// SaveTo persists the cache to path. The write is atomic
// (write-temp-then-rename) so a crash cannot leave a truncated file.
func (c *Cache[V]) SaveTo(path string) error {
	c.mu.Lock()
	snap := snapshot[V]{Version: 1, Entries: make(map[string]map[string]V, len(c.users))}
	for user, bucket := range c.users {
		entries := make(map[string]V, bucket.Len())
		for _, k := range bucket.Keys() {
			if v, ok := bucket.Peek(k); ok {
				entries[k] = v
			}
		}
		snap.Entries[user] = entries
	}
	c.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// LoadFrom restores cache entries from path. A missing file is not an
// error; an unreadable or corrupt file is reported as cache corruption
// so the caller can discard it.
func (c *Cache[V]) LoadFrom(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeCacheCorrupt,
			fmt.Sprintf("cannot read cache file %s", path), err)
	}

	var snap snapshot[V]
	if err := json.Unmarshal(data, &snap); err != nil {
		return seekerrors.New(seekerrors.ErrCodeCacheCorrupt,
			fmt.Sprintf("cache file %s is corrupt", path), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for user, entries := range snap.Entries {
		bucket, ok := c.users[user]
		if !ok {
			bucket, _ = lru.New[string, V](c.perUser)
			c.users[user] = bucket
		}
		for q, v := range entries {
			bucket.Add(q, v)
		}
	}
	return nil
}
