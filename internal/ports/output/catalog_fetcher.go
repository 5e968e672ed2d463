package output

import (
	"context"

	"appliancebot/internal/domain"
)

// CatalogFetcher interface - Output port
// Performs one live lookup against the external parts catalog for a
// normalized query descriptor and parses the page into a LookupResult.
//
// A lookup that finds zero matching records returns a result with
// Kind=ResultNotFound and a nil error: that is a success outcome and is
// cacheable. Network, timeout and parse failures return a nil result and
// one of domain.ErrFetchFailed / ErrFetchTimeout / ErrParseFailed.
type CatalogFetcher interface {
	Fetch(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error)
}

// FetchFunc adapts a plain function to the CatalogFetcher contract,
// used by the cache layer and by test doubles.
type FetchFunc func(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error)

// Fetch implements CatalogFetcher
func (f FetchFunc) Fetch(ctx context.Context, descriptor domain.QueryDescriptor) (*domain.LookupResult, error) {
	return f(ctx, descriptor)
}
