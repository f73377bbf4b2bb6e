package pipeline

import (
	"strings"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves an event's location. A nil result with a nil error
// means the location is unknown; an error aborts the pipeline run.
type Geocoder func(evt *event.Event) (*Coordinates, error)

// CacheObserver is told about geocode cache lookups
type CacheObserver interface {
	GeocodeCacheHit()
	GeocodeCacheMiss()
}

// GeocodeCache memoizes coordinates by lookup key
type GeocodeCache struct {
	entries map[string]Coordinates // lookup key → coordinates
}

// NewGeocodeCache creates an empty cache
func NewGeocodeCache() *GeocodeCache {
	return &GeocodeCache{
		entries: make(map[string]Coordinates),
	}
}

// Get returns cached coordinates for key
func (c *GeocodeCache) Get(key string) (Coordinates, bool) {
	coords, ok := c.entries[key]
	return coords, ok
}

// Set stores coordinates for key
func (c *GeocodeCache) Set(key string, coords Coordinates) {
	c.entries[key] = coords
}

// Size returns the number of cached entries
func (c *GeocodeCache) Size() int {
	return len(c.entries)
}

// EnrichGeocode fills missing coordinates using a Geocoder. Events that
// already have both coordinates are never touched. Results are cached for
// the lifetime of the step; unknown locations are not cached so a later
// event with the same venue retries the lookup.
//
// The cache is not synchronized. Do not share one step between goroutines.
type EnrichGeocode struct {
	geocoder Geocoder
	cache    *GeocodeCache
	observer CacheObserver
}

// GeocodeOption configures an EnrichGeocode step
type GeocodeOption func(*EnrichGeocode)

// WithCache uses a caller-owned cache, e.g. to share results across steps
func WithCache(c *GeocodeCache) GeocodeOption {
	return func(s *EnrichGeocode) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithCacheObserver reports cache hits and misses to o
func WithCacheObserver(o CacheObserver) GeocodeOption {
	return func(s *EnrichGeocode) {
		s.observer = o
	}
}

// NewEnrichGeocode creates the step around geocoder
func NewEnrichGeocode(geocoder Geocoder, opts ...GeocodeOption) *EnrichGeocode {
	s := &EnrichGeocode{
		geocoder: geocoder,
		cache:    NewGeocodeCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name
func (s *EnrichGeocode) Name() string {
	return StepEnrichGeocode
}

// Cache returns the step's cache
func (s *EnrichGeocode) Cache() *GeocodeCache {
	return s.cache
}

// LookupKey returns the trimmed venue, else the trimmed address, else "".
func LookupKey(evt *event.Event) string {
	if venue := strings.TrimSpace(event.Value(evt.Venue)); venue != "" {
		return venue
	}
	return strings.TrimSpace(event.Value(evt.Address))
}

// Run enriches events in place. The first geocoder error is returned.
func (s *EnrichGeocode) Run(events []*event.Event) ([]*event.Event, error) {
	for _, evt := range events {
		if evt.HasCoordinates() {
			continue
		}

		key := LookupKey(evt)
		if key == "" {
			continue
		}

		coords, ok := s.cache.Get(key)
		if ok {
			s.hit()
		} else {
			s.miss()
			result, err := s.geocoder(evt)
			if err != nil {
				return nil, err
			}
			if result == nil {
				continue
			}
			coords = *result
			s.cache.Set(key, coords)
		}

		evt.SetCoordinates(coords.Latitude, coords.Longitude)
	}

	return events, nil
}

func (s *EnrichGeocode) hit() {
	if s.observer != nil {
		s.observer.GeocodeCacheHit()
	}
}

func (s *EnrichGeocode) miss() {
	if s.observer != nil {
		s.observer.GeocodeCacheMiss()
	}
}
