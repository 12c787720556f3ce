package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/timeutil"
)

// Resolver defaults.
const (
	DefaultLocationTTL     = time.Hour
	DefaultSearchPageSize  = 20
	DefaultListingPageSize = 500
	DefaultMaxListingPages = 200
	DefaultListingTimeout  = 2 * time.Minute
)

// ResolverConfig tunes caching and paging of the location resolver.
type ResolverConfig struct {
	// TTL is how long the full listing and resolved names stay cached
	TTL time.Duration

	// SearchPageSize is the page size of query-scoped lookups
	SearchPageSize int

	// ListingPageSize is the page size used when fetching the full listing
	ListingPageSize int

	// MaxListingPages caps the number of listing pages fetched
	MaxListingPages int

	// ListingTimeout bounds one shared listing fetch
	ListingTimeout time.Duration
}

// ResolverStats reports cache effectiveness.
type ResolverStats struct {
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
	ListingFetches int64 `json:"listingFetches"`
	CachedNames    int   `json:"cachedNames"`
	ListingSize    int   `json:"listingSize"`
}

type cachedLocation struct {
	location domain.Location
	storedAt time.Time
}

type listingEntry struct {
	location   domain.Location
	normalized string
}

// LocationResolver turns free-text place names into provider location codes.
// It is safe for concurrent use.
type LocationResolver struct {
	directory domain.LocationDirectory
	cfg       ResolverConfig
	clock     timeutil.Clock
	log       zerolog.Logger

	mu        sync.RWMutex
	resolved  map[string]cachedLocation
	listing   []listingEntry
	listingAt time.Time

	listingFlight singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	fetches atomic.Int64
}

// ResolverOption customizes a LocationResolver.
type ResolverOption func(*LocationResolver)

// WithResolverClock injects the clock used for cache expiry.
func WithResolverClock(c timeutil.Clock) ResolverOption {
	return func(r *LocationResolver) {
		r.clock = timeutil.OrReal(c)
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(log zerolog.Logger) ResolverOption {
	return func(r *LocationResolver) {
		r.log = log
	}
}

// NewLocationResolver creates a resolver over the provider directory.
// Zero config values fall back to the package defaults.
func NewLocationResolver(directory domain.LocationDirectory, cfg ResolverConfig, opts ...ResolverOption) *LocationResolver {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultLocationTTL
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = DefaultSearchPageSize
	}
	if cfg.ListingPageSize <= 0 {
		cfg.ListingPageSize = DefaultListingPageSize
	}
	if cfg.MaxListingPages <= 0 {
		cfg.MaxListingPages = DefaultMaxListingPages
	}
	if cfg.ListingTimeout <= 0 {
		cfg.ListingTimeout = DefaultListingTimeout
	}

	r := &LocationResolver{
		directory: directory,
		cfg:       cfg,
		clock:     timeutil.RealClock{},
		log:       zerolog.Nop(),
		resolved:  make(map[string]cachedLocation),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements domain.LocationResolver.
//
// Location codes pass through untouched. Names are normalized and looked up
// in the resolved-name cache, then with a query-scoped search, then in the
// cached full listing (exact match first, then substring in either
// direction, first hit in provider order).
func (r *LocationResolver) Resolve(ctx context.Context, name string) (domain.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Location{}, fmt.Errorf("%w: empty name", domain.ErrLocationNotFound)
	}
	if IsLocationCode(trimmed) {
		return domain.Location{ID: trimmed, Name: trimmed}, nil
	}

	key := NormalizeName(trimmed)
	if key == "" {
		return domain.Location{}, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, trimmed)
	}
	if loc, ok := r.cached(key); ok {
		r.hits.Add(1)
		return loc, nil
	}
	r.misses.Add(1)

	if loc, ok := r.search(ctx, key); ok {
		r.remember(key, loc)
		return loc, nil
	}

	entries, err := r.loadListing(ctx)
	if err != nil {
		return domain.Location{}, err
	}
	loc, ok := matchListing(entries, key)
	if !ok {
		r.log.Debug().Str("name", trimmed).Str("normalized", key).Msg("Location not found")
		return domain.Location{}, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, trimmed)
	}
	r.remember(key, loc)
	return loc, nil
}

func (r *LocationResolver) cached(key string) (domain.Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.resolved[key]
	if !ok || r.clock.Now().Sub(c.storedAt) >= r.cfg.TTL {
		return domain.Location{}, false
	}
	return c.location, true
}

func (r *LocationResolver) remember(key string, loc domain.Location) {
	r.mu.Lock()
	r.resolved[key] = cachedLocation{location: loc, storedAt: r.clock.Now()}
	r.mu.Unlock()
}

// search runs the query-scoped lookup. Errors are logged and reported as a miss.
func (r *LocationResolver) search(ctx context.Context, key string) (domain.Location, bool) {
	candidates, err := r.directory.SearchLocations(ctx, key, 1, r.cfg.SearchPageSize)
	if err != nil {
		r.log.Warn().Err(err).Str("query", key).Msg("Location search failed, falling back to listing")
		return domain.Location{}, false
	}
	if len(candidates) == 0 {
		return domain.Location{}, false
	}
	for _, c := range candidates {
		if NormalizeName(c.Name) == key {
			return c, true
		}
	}
	return candidates[0], true
}

// matchListing finds an exact normalized match, then a substring match in
// either direction. The first entry in provider order wins.
func matchListing(entries []listingEntry, key string) (domain.Location, bool) {
	for _, e := range entries {
		if e.normalized == key {
			return e.location, true
		}
	}
	for _, e := range entries {
		if strings.Contains(e.normalized, key) || strings.Contains(key, e.normalized) {
			return e.location, true
		}
	}
	return domain.Location{}, false
}

// loadListing returns the cached listing, refreshing it when expired.
// A failed refresh serves the stale listing when there is one.
//
// Concurrent callers share one fetch. The fetch is detached from the caller
// that started it and bounded by ListingTimeout; a caller whose ctx is done
// stops waiting without cancelling the fetch for the others.
func (r *LocationResolver) loadListing(ctx context.Context) ([]listingEntry, error) {
	r.mu.RLock()
	stale, fetchedAt := r.listing, r.listingAt
	r.mu.RUnlock()
	if stale != nil && r.clock.Now().Sub(fetchedAt) < r.cfg.TTL {
		return stale, nil
	}

	ch := r.listingFlight.DoChan("listing", func() (any, error) {
		r.mu.RLock()
		current, at := r.listing, r.listingAt
		r.mu.RUnlock()
		if current != nil && r.clock.Now().Sub(at) < r.cfg.TTL {
			return current, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.ListingTimeout)
		defer cancel()
		entries, err := r.fetchListing(fetchCtx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.listing = entries
		r.listingAt = r.clock.Now()
		r.mu.Unlock()
		return entries, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		if stale != nil {
			r.log.Warn().Err(res.Err).Int("entries", len(stale)).Msg("Listing refresh failed, serving stale listing")
			return stale, nil
		}
		return nil, res.Err
	}
	return res.Val.([]listingEntry), nil
}

// fetchListing pages through the full directory until a short or empty page.
func (r *LocationResolver) fetchListing(ctx context.Context) ([]listingEntry, error) {
	r.fetches.Add(1)
	start := time.Now()

	entries := make([]listingEntry, 0, r.cfg.ListingPageSize)
	var prevFirst string
	for page := 1; page <= r.cfg.MaxListingPages; page++ {
		locs, err := r.directory.SearchLocations(ctx, "", page, r.cfg.ListingPageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch location listing page %d: %w", page, err)
		}
		if len(locs) == 0 {
			break
		}
		// Providers that ignore paging return the same page forever.
		if page > 1 && locs[0].ID == prevFirst {
			break
		}
		prevFirst = locs[0].ID

		for _, l := range locs {
			if n := NormalizeName(l.Name); n != "" {
				entries = append(entries, listingEntry{location: l, normalized: n})
			}
		}
		if len(locs) < r.cfg.ListingPageSize {
			break
		}
	}

	r.log.Info().
		Int("entries", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Location listing loaded")
	return entries, nil
}

// Warm preloads the full listing.
func (r *LocationResolver) Warm(ctx context.Context) error {
	_, err := r.loadListing(ctx)
	return err
}

// Invalidate drops the resolved-name cache and the listing.
func (r *LocationResolver) Invalidate() {
	r.mu.Lock()
	r.resolved = make(map[string]cachedLocation)
	r.listing = nil
	r.listingAt = time.Time{}
	r.mu.Unlock()
}

// Stats returns cache counters.
func (r *LocationResolver) Stats() ResolverStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ResolverStats{
		Hits:           r.hits.Load(),
		Misses:         r.misses.Load(),
		ListingFetches: r.fetches.Load(),
		CachedNames:    len(r.resolved),
		ListingSize:    len(r.listing),
	}
}

var _ domain.LocationResolver = (*LocationResolver)(nil)
