package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"
)

func testDescriptor() domain.QueryDescriptor {
	return domain.QueryDescriptor{
		Appliance:   domain.ApplianceRefrigerator,
		ModelNumber: "WDT780SAEM1",
		Service:     domain.ServiceParts,
		Query:       "door shelf bin",
	}
}

func countingFetcher(counter *int32, result *domain.LookupResult, err error) output.CatalogFetcher {
	return output.FetchFunc(func(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error) {
		atomic.AddInt32(counter, 1)
		if err != nil {
			return nil, err
		}
		copied := *result
		return &copied, nil
	})
}

func TestGetOrFetchCachesSuccess(t *testing.T) {
	adapter := newAdapterWithStore(newMemoryStore(8), time.Hour, nil)

	var calls int32
	fetcher := countingFetcher(&calls, &domain.LookupResult{
		Kind:  domain.ResultPart,
		Parts: []domain.Part{{Name: "Door Shelf Bin", PartSelectNumber: "PS11752778"}},
	}, nil)

	for i := 0; i < 3; i++ {
		result, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher)
		if err != nil {
			t.Fatalf("GetOrFetch returned error: %v", err)
		}
		if len(result.Parts) != 1 || result.Parts[0].PartSelectNumber != "PS11752778" {
			t.Fatalf("unexpected result: %+v", result)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 fetch, got %d", calls)
	}
}

func TestGetOrFetchCachesNotFound(t *testing.T) {
	adapter := newAdapterWithStore(newMemoryStore(8), time.Hour, nil)

	var calls int32
	fetcher := countingFetcher(&calls, &domain.LookupResult{Kind: domain.ResultNotFound}, nil)

	for i := 0; i < 2; i++ {
		result, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher)
		if err != nil {
			t.Fatalf("GetOrFetch returned error: %v", err)
		}
		if result.Kind != domain.ResultNotFound {
			t.Fatalf("expected not-found result, got %v", result.Kind)
		}
	}

	if calls != 1 {
		t.Errorf("not-found outcome should be cached, got %d fetches", calls)
	}
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	adapter := newAdapterWithStore(newMemoryStore(8), time.Hour, nil)

	var calls int32
	fetchErr := errors.New("connection refused")
	fetcher := countingFetcher(&calls, nil, fetchErr)

	for i := 0; i < 3; i++ {
		if _, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher); !errors.Is(err, fetchErr) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	}

	if calls != 3 {
		t.Errorf("errors must not be cached, expected 3 fetches, got %d", calls)
	}
}

func TestGetOrFetchExpiresEntries(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	adapter := newAdapterWithStore(newMemoryStore(8), time.Minute, func() time.Time { return current })

	var calls int32
	fetcher := countingFetcher(&calls, &domain.LookupResult{Kind: domain.ResultNotFound}, nil)

	if _, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}

	current = current.Add(30 * time.Second)
	if _, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("entry expired too early, got %d fetches", calls)
	}

	current = current.Add(31 * time.Second)
	if _, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected refetch after ttl, got %d fetches", calls)
	}
}

func TestGetOrFetchCoalescesConcurrentCallers(t *testing.T) {
	adapter := newAdapterWithStore(newMemoryStore(8), time.Hour, nil)

	var calls int32
	release := make(chan struct{})
	fetcher := output.FetchFunc(func(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &domain.LookupResult{Kind: domain.ResultNotFound}, nil
	})

	const workers = 10
	var wg sync.WaitGroup
	results := make([]*domain.LookupResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher)
		}(i)
	}

	// Let every worker reach the fetch before the single flight completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d returned error: %v", i, errs[i])
		}
		if results[i].Kind != domain.ResultNotFound {
			t.Fatalf("worker %d got unexpected result: %+v", i, results[i])
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single coalesced fetch, got %d", got)
	}
}

func TestGetOrFetchNormalizesKeys(t *testing.T) {
	adapter := newAdapterWithStore(newMemoryStore(8), time.Hour, nil)

	var calls int32
	fetcher := countingFetcher(&calls, &domain.LookupResult{Kind: domain.ResultNotFound}, nil)

	first := domain.QueryDescriptor{
		Appliance:   domain.ApplianceDishwasher,
		ModelNumber: "wdt780saem1",
		Service:     domain.ServiceParts,
		Query:       "  Drain   Pump ",
	}
	second := domain.QueryDescriptor{
		Appliance:   domain.ApplianceDishwasher,
		ModelNumber: "WDT780SAEM1",
		Service:     domain.ServiceParts,
		Query:       "drain pump",
	}

	if _, err := adapter.GetOrFetch(context.Background(), first, fetcher); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}
	if _, err := adapter.GetOrFetch(context.Background(), second, fetcher); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}

	if calls != 1 {
		t.Errorf("descriptors differing only in case and spacing should share one entry, got %d fetches", calls)
	}
}

func TestGetOrFetchNoneModeAlwaysFetches(t *testing.T) {
	adapter := newAdapterWithStore(nil, time.Hour, nil)

	var calls int32
	fetcher := countingFetcher(&calls, &domain.LookupResult{Kind: domain.ResultNotFound}, nil)

	for i := 0; i < 2; i++ {
		if _, err := adapter.GetOrFetch(context.Background(), testDescriptor(), fetcher); err != nil {
			t.Fatalf("GetOrFetch returned error: %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("disabled cache must fetch every call, got %d fetches", calls)
	}
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := newMemoryStore(2)
	now := time.Now()

	put := func(key string) {
		if err := store.Put(domain.CacheEntry{Key: key, StoredAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("Put(%s) returned error: %v", key, err)
		}
	}

	put("a")
	put("b")

	// Touch "a" so "b" becomes the eviction candidate.
	if entry, _ := store.Get("a"); entry == nil {
		t.Fatal("expected entry a")
	}

	put("c")

	if entry, _ := store.Get("b"); entry != nil {
		t.Error("expected b to be evicted")
	}
	if entry, _ := store.Get("a"); entry == nil {
		t.Error("expected a to survive eviction")
	}
	if entry, _ := store.Get("c"); entry == nil {
		t.Error("expected c to be present")
	}
}
