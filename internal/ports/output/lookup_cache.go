package output

import (
	"context"

	"appliancebot/internal/domain"
)

// LookupCache interface - Output port
// Memoizes CatalogFetcher results keyed by the normalized descriptor.
//
// Contract:
//   - on a fresh hit the stored result is returned without fetching;
//   - on a miss or expiry the fetcher runs, and success or not-found
//     outcomes are stored before returning;
//   - fetch errors are returned to the caller and never stored, so the
//     next identical request retries;
//   - at most one fetch is in flight per key: concurrent callers for the
//     same key await the single in-progress fetch instead of issuing
//     duplicate catalog requests.
type LookupCache interface {
	GetOrFetch(ctx context.Context, descriptor domain.QueryDescriptor, fetcher CatalogFetcher) (*domain.LookupResult, error)
}
