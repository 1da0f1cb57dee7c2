// Package storeinfo serves the restaurant's address and coordinates with a
// short-lived in-process cache in front of the settings row.
package storeinfo

import (
	"context"
	"math"
	"time"

	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/internal/cache"
	"github.com/brickoven/pos/pkg/logger"
)

// locationTTL bounds how stale the cached settings row may be. The cache is a
// performance shim, never a second source of truth.
const locationTTL = 5 * time.Minute

const cacheKey = "store-location"

// Service reads and writes the singleton store settings row.
type Service struct {
	store storage.SettingsStore
	cache *cache.TTL[store.Location]
	log   *logger.Logger
}

// New constructs the store settings service. A nil now func uses the wall
// clock.
func New(settings storage.SettingsStore, now func() time.Time, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("storeinfo")
	}
	return &Service{
		store: settings,
		cache: cache.NewTTL[store.Location](locationTTL, now),
		log:   log,
	}
}

// Location returns the store's location, from cache when fresh. Storage
// failures are downgraded to a warning plus the hard-coded default so
// geocoding never hard-fails because the settings row is unavailable.
func (s *Service) Location(ctx context.Context) store.Location {
	if loc, ok := s.cache.Get(cacheKey); ok {
		return loc
	}

	loc, err := s.store.GetStoreLocation(ctx)
	if err != nil {
		s.log.WithError(err).Warn("store settings unavailable; using default location")
		loc = store.DefaultLocation()
		s.cache.Set(cacheKey, loc)
		return loc
	}

	if !finite(loc.Lat) || !finite(loc.Lon) {
		def := store.DefaultLocation()
		s.log.Warnf("store settings hold non-finite coordinates; using defaults (%f, %f)", def.Lat, def.Lon)
		loc.Lat = def.Lat
		loc.Lon = def.Lon
	}

	s.cache.Set(cacheKey, loc)
	return loc
}

// Update upserts the settings row and re-primes the cache.
func (s *Service) Update(ctx context.Context, loc store.Location) (store.Location, error) {
	saved, err := s.store.PutStoreLocation(ctx, loc)
	if err != nil {
		return store.Location{}, err
	}
	s.cache.Set(cacheKey, saved)
	s.log.WithField("city", saved.City).Info("store settings updated")
	return saved, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
