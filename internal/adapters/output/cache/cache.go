package cache

import (
	"context"
	"fmt"
	"time"

	"appliancebot/configs"
	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Compile-time check to ensure Adapter implements LookupCache
var _ output.LookupCache = (*Adapter)(nil)

// entryStore is the backing storage for cache entries. Get returns nil on
// a miss. Only the cache layer mutates the store.
type entryStore interface {
	Get(key string) (*domain.CacheEntry, error)
	Put(entry domain.CacheEntry) error
	Delete(key string) error
	Close() error
}

// Adapter struct - Output adapter memoizing catalog lookups. Success and
// not-found outcomes are stored with a TTL; fetch errors are returned
// uncached so the next identical request retries. A singleflight group
// guarantees at most one fetch in flight per descriptor key without
// serializing unrelated keys.
type Adapter struct {
	store entryStore // nil in "none" mode: always fetch
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

// NewAdapter func - Creates the lookup cache for the configured mode:
// memory (process-lifetime LRU), disk (sqlite, survives restarts) or none.
func NewAdapter(config configs.Cache) (*Adapter, error) {
	ttl := time.Duration(config.TTL) * time.Second
	if config.TTL <= 0 {
		ttl = time.Hour
	}
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = 256
	}

	var store entryStore
	switch config.Mode {
	case "", "memory":
		store = newMemoryStore(capacity)
		logrus.Infof("Lookup cache initialized in memory mode, capacity %d, ttl %v", capacity, ttl)
	case "disk":
		diskStore, err := newDiskStore(config.Path, capacity)
		if err != nil {
			return nil, fmt.Errorf("open disk cache: %w", err)
		}
		store = diskStore
		logrus.Infof("Lookup cache initialized in disk mode at %s, capacity %d, ttl %v", config.Path, capacity, ttl)
	case "none":
		logrus.Info("Lookup cache disabled, every call fetches")
	default:
		return nil, fmt.Errorf("unknown cache mode %q", config.Mode)
	}

	return &Adapter{store: store, ttl: ttl, now: time.Now}, nil
}

// newAdapterWithStore builds an adapter around an explicit store and
// clock, used by tests.
func newAdapterWithStore(store entryStore, ttl time.Duration, now func() time.Time) *Adapter {
	if now == nil {
		now = time.Now
	}
	return &Adapter{store: store, ttl: ttl, now: now}
}

// GetOrFetch looks up by the normalized descriptor key, fetching on a miss
// or an expired entry. Concurrent callers for one key share a single fetch.
func (a *Adapter) GetOrFetch(ctx context.Context, descriptor domain.QueryDescriptor, fetcher output.CatalogFetcher) (*domain.LookupResult, error) {
	key := descriptor.Key()

	if result := a.lookup(key); result != nil {
		return result, nil
	}

	value, err, _ := a.group.Do(key, func() (interface{}, error) {
		// A waiter that lost the race may find the entry the winner stored.
		if result := a.lookup(key); result != nil {
			return result, nil
		}

		result, err := fetcher.Fetch(ctx, descriptor)
		if err != nil {
			return nil, err
		}

		if a.store != nil {
			storedAt := a.now()
			if err := a.store.Put(domain.CacheEntry{
				Key:       key,
				Result:    *result,
				StoredAt:  storedAt,
				ExpiresAt: storedAt.Add(a.ttl),
			}); err != nil {
				logrus.Warnf("Cache store failed for key %s: %v", key, err)
			}
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*domain.LookupResult), nil
}

// lookup returns a fresh stored result or nil. Expired entries are removed.
func (a *Adapter) lookup(key string) *domain.LookupResult {
	if a.store == nil {
		return nil
	}

	entry, err := a.store.Get(key)
	if err != nil {
		logrus.Warnf("Cache read failed for key %s: %v", key, err)
		return nil
	}
	if entry == nil {
		return nil
	}
	if entry.Expired(a.now()) {
		if err := a.store.Delete(key); err != nil {
			logrus.Warnf("Cache expiry delete failed for key %s: %v", key, err)
		}
		return nil
	}

	result := entry.Result
	return &result
}

// Close releases the backing store.
func (a *Adapter) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
