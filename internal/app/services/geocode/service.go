// Package geocode aggregates external geocoding providers behind one search
// call: providers are tried in order, results are normalized, filtered by
// distance from the store, and memoized briefly.
package geocode

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brickoven/pos/internal/app/domain/geocode"
	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/cache"
	"github.com/brickoven/pos/internal/geo"
	"github.com/brickoven/pos/pkg/logger"
)

const (
	// resultTTL bounds how long a query's suggestion list is memoized.
	resultTTL = 10 * time.Minute

	// maxResults caps the suggestion list returned to the UI.
	maxResults = 6

	// maxRadiusMiles is the store's normal service radius.
	maxRadiusMiles = 6.0

	// boxLatDelta/boxLonDelta size the provider bounding box around the
	// store: about 3.5 mi north/south and 4 mi east/west at mid-latitudes.
	boxLatDelta = 0.05
	boxLonDelta = 0.07
)

// LocationProvider supplies the reference point for distance filtering.
type LocationProvider interface {
	Location(ctx context.Context) store.Location
}

// MetricsRecorder observes provider lookups and cache outcomes.
type MetricsRecorder interface {
	RecordGeocodeLookup(source string, duration time.Duration, err error)
	RecordCacheLookup(cache string, hit bool)
}

// Service fans a query out to an ordered provider chain and post-processes
// the first successful response.
type Service struct {
	providers []Provider
	storeInfo LocationProvider
	cache     *cache.TTL[[]geocode.Suggestion]
	metrics   MetricsRecorder
	log       *logger.Logger
}

// New constructs the aggregator. Providers are tried in order; a later
// provider is only consulted when every earlier one failed. A nil now func
// uses the wall clock.
func New(storeInfo LocationProvider, providers []Provider, now func() time.Time, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("geocode")
	}
	return &Service{
		providers: providers,
		storeInfo: storeInfo,
		cache:     cache.NewTTL[[]geocode.Suggestion](resultTTL, now),
		log:       log,
	}
}

// SetMetrics attaches a metrics recorder. Leaving it unset is fine.
func (s *Service) SetMetrics(rec MetricsRecorder) {
	s.metrics = rec
}

// Search returns up to maxResults address suggestions for the query, nearest
// first. A blank query short-circuits to an empty list without any network
// call. The only hard failure is every provider failing.
func (s *Service) Search(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []geocode.Suggestion{}, nil
	}

	loc := s.storeInfo.Location(ctx)
	ref := geo.Point{Lat: loc.Lat, Lon: loc.Lon}
	key := cacheKey(query, ref)

	cached, hit := s.cache.Get(key)
	if s.metrics != nil {
		s.metrics.RecordCacheLookup("geocode_results", hit)
	}
	if hit {
		return cached, nil
	}

	box := geo.BoxAround(ref, boxLatDelta, boxLonDelta)
	candidates, err := s.searchProviders(ctx, query, ref, box)
	if err != nil {
		return nil, err
	}

	result := rankByDistance(candidates, ref)
	s.cache.Set(key, result)
	return result, nil
}

// searchProviders walks the chain: attempt, on failure continue. Empty
// results from a responsive provider end the chain; only a failure moves on.
func (s *Service) searchProviders(ctx context.Context, query string, ref geo.Point, box geo.BoundingBox) ([]geocode.Suggestion, error) {
	var lastErr error
	for _, provider := range s.providers {
		start := time.Now()
		suggestions, err := provider.Search(ctx, query, ref, box)
		if s.metrics != nil {
			s.metrics.RecordGeocodeLookup(string(provider.Source()), time.Since(start), err)
		}
		if err == nil {
			return suggestions, nil
		}
		lastErr = err
		s.log.WithError(err).Warnf("%s provider failed; trying next", provider.Source())
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no geocoding providers configured")
	}
	return nil, fmt.Errorf("all geocoding providers failed: %w", lastErr)
}

// rankByDistance computes distances, drops items without valid coordinates,
// filters to the service radius, sorts nearest-first, and caps the list.
// When the radius filter would empty a non-empty candidate set, it is lifted
// so the caller still gets the closest available matches.
func rankByDistance(candidates []geocode.Suggestion, ref geo.Point) []geocode.Suggestion {
	valid := make([]geocode.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		p := geo.Point{Lat: c.Lat, Lon: c.Lon}
		if !p.Valid() {
			continue
		}
		c.DistanceMiles = geo.RoundMiles(geo.HaversineMiles(ref, p))
		valid = append(valid, c)
	}

	within := make([]geocode.Suggestion, 0, len(valid))
	for _, c := range valid {
		if c.DistanceMiles <= maxRadiusMiles {
			within = append(within, c)
		}
	}
	if len(within) == 0 && len(valid) > 0 {
		within = valid
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].DistanceMiles < within[j].DistanceMiles
	})
	if len(within) > maxResults {
		within = within[:maxResults]
	}
	return within
}

func cacheKey(query string, ref geo.Point) string {
	return fmt.Sprintf("%s|%f|%f", strings.ToLower(query), ref.Lat, ref.Lon)
}
