package domain

import (
	"strings"
	"time"
)

// PriceUnavailable is the sentinel used when the catalog lists no price for
// a part. Missing optional fields never fail a fetch.
const PriceUnavailable = "unavailable"

// QueryDescriptor is the normalized key for fetching and caching a lookup.
// Two semantically equivalent descriptors must produce the identical Key()
// so the cache hits correctly.
type QueryDescriptor struct {
	Appliance   Appliance
	ModelNumber string
	Service     ServiceType
	Query       string
}

// Normalize returns a canonical copy of the descriptor: model numbers are
// upper-cased, the free-text fragment is lower-cased with whitespace
// collapsed to single spaces.
func (d QueryDescriptor) Normalize() QueryDescriptor {
	return QueryDescriptor{
		Appliance:   d.Appliance,
		ModelNumber: strings.ToUpper(strings.TrimSpace(d.ModelNumber)),
		Service:     d.Service,
		Query:       strings.Join(strings.Fields(strings.ToLower(d.Query)), " "),
	}
}

// Key returns the cache key for the normalized descriptor.
func (d QueryDescriptor) Key() string {
	n := d.Normalize()
	return strings.Join([]string{string(n.Appliance), n.ModelNumber, string(n.Service), n.Query}, "|")
}

// ResultKind tags what a completed lookup produced
type ResultKind string

const (
	// ResultPart - One or more part records
	ResultPart ResultKind = "part"
	// ResultManual - Manual/care-guide document links
	ResultManual ResultKind = "manual"
	// ResultSymptomList - Symptom to troubleshooting-section links
	ResultSymptomList ResultKind = "symptom-list"
	// ResultNotFound - Valid lookup with zero matching records. A success
	// outcome, cacheable, unlike a fetch failure which is returned as error.
	ResultNotFound ResultKind = "not-found"
)

// Part is one replacement-part record scraped from the catalog
type Part struct {
	Name               string
	PartSelectNumber   string
	ManufacturerNumber string
	Description        string
	Price              string // PriceUnavailable when the catalog lists none
	URL                string
}

// ManualDoc is one downloadable document for a model
type ManualDoc struct {
	Title   string
	DocType string
	URL     string
	Size    string
}

// SymptomLink maps a symptom description to its troubleshooting section
type SymptomLink struct {
	Symptom string
	URL     string
}

// LookupResult is the structured outcome of one catalog fetch. Handlers
// receive it read-only; it is owned by the cache once stored.
type LookupResult struct {
	Kind      ResultKind
	Parts     []Part
	Manuals   []ManualDoc
	Symptoms  []SymptomLink
	FetchedAt time.Time
}

// CacheEntry wraps a LookupResult with its descriptor key and timing.
// Entries are created only for success and not-found outcomes; fetch
// failures are never cached.
type CacheEntry struct {
	Key       string
	Result    LookupResult
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry has passed its TTL at the given time.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
