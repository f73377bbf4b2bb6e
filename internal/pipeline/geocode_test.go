package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/yeg-events/internal/event"
)

// countingGeocoder returns a different result on every call
type countingGeocoder struct {
	calls int
	keys  []string
}

func (g *countingGeocoder) geocode(evt *event.Event) (*Coordinates, error) {
	g.calls++
	g.keys = append(g.keys, LookupKey(evt))
	return &Coordinates{Latitude: 53.0 + float64(g.calls), Longitude: -113.0 - float64(g.calls)}, nil
}

type cacheCounter struct {
	hits, misses int
}

func (c *cacheCounter) GeocodeCacheHit()  { c.hits++ }
func (c *cacheCounter) GeocodeCacheMiss() { c.misses++ }

func TestEnrichGeocode_CachesByVenue(t *testing.T) {
	geo := &countingGeocoder{}
	step := NewEnrichGeocode(geo.geocode)

	a := newEvent("Opening", nil)
	a.Venue = str("Rogers Place")
	b := newEvent("Closing", nil)
	b.Venue = str("Rogers Place")

	_, err := step.Run([]*event.Event{a, b})
	require.NoError(t, err)

	assert.Equal(t, 1, geo.calls, "second event must be served from cache")
	require.True(t, b.HasCoordinates())
	assert.Equal(t, *a.Latitude, *b.Latitude)
	assert.Equal(t, *a.Longitude, *b.Longitude)
	assert.Equal(t, 1, step.Cache().Size())
}

func TestEnrichGeocode_CacheSpansRuns(t *testing.T) {
	geo := &countingGeocoder{}
	step := NewEnrichGeocode(geo.geocode)

	first := newEvent("a", nil)
	first.Venue = str("Citadel Theatre")
	second := newEvent("b", nil)
	second.Venue = str(" Citadel Theatre ")

	_, err := step.Run([]*event.Event{first})
	require.NoError(t, err)
	_, err = step.Run([]*event.Event{second})
	require.NoError(t, err)

	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, *first.Latitude, *second.Latitude)
}

func TestEnrichGeocode_NeverOverwrites(t *testing.T) {
	geo := &countingGeocoder{}
	step := NewEnrichGeocode(geo.geocode)

	evt := newEvent("Fixed", nil)
	evt.Venue = str("Commonwealth Stadium")
	evt.SetCoordinates(1, 2)

	_, err := step.Run([]*event.Event{evt})
	require.NoError(t, err)

	assert.Equal(t, 0, geo.calls)
	assert.Equal(t, 1.0, *evt.Latitude)
	assert.Equal(t, 2.0, *evt.Longitude)
}

func TestEnrichGeocode_PartialCoordinatesAreFilled(t *testing.T) {
	geo := &countingGeocoder{}
	evt := newEvent("Half", nil)
	evt.Venue = str("Muttart Conservatory")
	lat := 9.0
	evt.Latitude = &lat

	_, err := NewEnrichGeocode(geo.geocode).Run([]*event.Event{evt})
	require.NoError(t, err)

	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, 54.0, *evt.Latitude)
	assert.Equal(t, -114.0, *evt.Longitude)
}

func TestEnrichGeocode_SkipsWithoutKey(t *testing.T) {
	geo := &countingGeocoder{}
	step := NewEnrichGeocode(geo.geocode)

	noFields := newEvent("Nowhere", nil)
	blank := newEvent("Blank", nil)
	blank.Venue = str("   ")
	blank.Address = str("")

	_, err := step.Run([]*event.Event{noFields, blank})
	require.NoError(t, err)

	assert.Equal(t, 0, geo.calls)
	assert.False(t, noFields.HasCoordinates())
	assert.Nil(t, blank.Latitude)
	assert.Equal(t, 0, step.Cache().Size())
}

func TestEnrichGeocode_FallsBackToAddress(t *testing.T) {
	geo := &countingGeocoder{}
	evt := newEvent("Street Fair", nil)
	evt.Venue = str("  ")
	evt.Address = str(" 10425 Whyte Ave ")

	_, err := NewEnrichGeocode(geo.geocode).Run([]*event.Event{evt})
	require.NoError(t, err)

	assert.Equal(t, []string{"10425 Whyte Ave"}, geo.keys)
	assert.True(t, evt.HasCoordinates())
}

func TestEnrichGeocode_EmptyResultNotCached(t *testing.T) {
	calls := 0
	geocoder := func(evt *event.Event) (*Coordinates, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return &Coordinates{Latitude: 53.5, Longitude: -113.5}, nil
	}
	step := NewEnrichGeocode(geocoder)

	a := newEvent("a", nil)
	a.Venue = str("Fort Edmonton Park")
	b := newEvent("b", nil)
	b.Venue = str("Fort Edmonton Park")

	_, err := step.Run([]*event.Event{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "unknown result must not be cached")
	assert.False(t, a.HasCoordinates())
	assert.True(t, b.HasCoordinates())
	assert.Equal(t, 1, step.Cache().Size())
}

func TestEnrichGeocode_ErrorPropagates(t *testing.T) {
	boom := errors.New("geocoder down")
	calls := 0
	step := NewEnrichGeocode(func(evt *event.Event) (*Coordinates, error) {
		calls++
		return nil, boom
	})

	a := newEvent("a", nil)
	a.Venue = str("Venue A")
	b := newEvent("b", nil)
	b.Venue = str("Venue B")

	out, err := step.Run([]*event.Event{a, b})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Equal(t, 1, calls, "processing stops at the first error")
	assert.Equal(t, 0, step.Cache().Size())
}

func TestEnrichGeocode_SharedCacheAndObserver(t *testing.T) {
	cache := NewGeocodeCache()
	cache.Set("Rogers Place", Coordinates{Latitude: 53.5469, Longitude: -113.4979})
	counter := &cacheCounter{}
	geo := &countingGeocoder{}

	step := NewEnrichGeocode(geo.geocode, WithCache(cache), WithCacheObserver(counter))

	known := newEvent("Hockey", nil)
	known.Venue = str("Rogers Place")
	unknown := newEvent("Concert", nil)
	unknown.Venue = str("Winspear Centre")

	_, err := step.Run([]*event.Event{known, unknown})
	require.NoError(t, err)

	assert.Equal(t, 53.5469, *known.Latitude)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 1, counter.misses)
	assert.Same(t, cache, step.Cache())
	assert.Equal(t, 2, cache.Size())
}

func TestLookupKey(t *testing.T) {
	evt := newEvent("x", nil)
	assert.Equal(t, "", LookupKey(evt))

	evt.Address = str(" 9797 Jasper Ave ")
	assert.Equal(t, "9797 Jasper Ave", LookupKey(evt))

	evt.Venue = str(" Shaw Conference Centre ")
	assert.Equal(t, "Shaw Conference Centre", LookupKey(evt))
}
