package techdash

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLocations(now time.Time) []LocationRecord {
	return []LocationRecord{
		{WorkerID: "TECH-1", WorkerName: "Ali", Latitude: 31.5204, Longitude: 74.3587, CapturedAt: now.Add(-45 * time.Second)},
		{WorkerID: "TECH-2", WorkerName: "Sara", Latitude: 24.8607, Longitude: 67.0011, CapturedAt: now.Add(-2 * time.Hour)},
		{WorkerID: "TECH-3", WorkerName: "Bilal", Latitude: 33.6844, Longitude: 73.0479, CapturedAt: now.Add(-3 * 24 * time.Hour)},
	}
}

func TestMapRendererDefaults(t *testing.T) {
	view := NewMapRenderer().View()
	assert.Empty(t, view.Markers)
	assert.Equal(t, DefaultMapCenter, view.Viewport.Center)
	assert.Equal(t, 5, view.Viewport.Zoom)
	assert.Equal(t, [2]int{50, 50}, view.Viewport.Padding)
	assert.Nil(t, view.Viewport.Bounds)
	assert.False(t, view.Fallback)
}

func TestMapRendererUpdateFitsBounds(t *testing.T) {
	now := time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)
	renderer := NewMapRenderer()
	records := sampleLocations(now)

	view := renderer.Update(records, now)
	require.Len(t, view.Markers, len(records))
	require.NotNil(t, view.Viewport.Bounds)
	for _, marker := range view.Markers {
		assert.True(t, view.Viewport.Bounds.Contains(marker.Position), marker.WorkerID)
	}

	first := view.Markers[0]
	assert.Equal(t, "Ali", first.Tooltip.Title)
	assert.Equal(t, "45 sec ago", first.Tooltip.Subtitle)
	assert.True(t, first.Tooltip.Permanent)
	assert.Equal(t, "top", first.Tooltip.Direction)
	assert.Equal(t, "technician-marker", first.Icon.ClassName)
	assert.Equal(t, "2 hr ago", view.Markers[1].Tooltip.Subtitle)
	assert.Equal(t, "3 days ago", view.Markers[2].Tooltip.Subtitle)
}

func TestMapRendererReplacesMarkers(t *testing.T) {
	now := time.Now()
	renderer := NewMapRenderer()
	renderer.Update(sampleLocations(now), now)

	view := renderer.Update(sampleLocations(now)[:1], now)
	require.Len(t, view.Markers, 1)
	assert.Equal(t, "TECH-1", view.Markers[0].WorkerID)
}

func TestMapRendererEmptyKeepsViewport(t *testing.T) {
	now := time.Now()
	renderer := NewMapRenderer()
	before := renderer.Update(sampleLocations(now), now)

	after := renderer.Update(nil, now)
	assert.Empty(t, after.Markers)
	require.NotNil(t, after.Viewport.Bounds)
	assert.Equal(t, *before.Viewport.Bounds, *after.Viewport.Bounds)
}

func TestMapRendererSkipsInvalidCoordinates(t *testing.T) {
	now := time.Now()
	renderer := NewMapRenderer()
	view := renderer.Update([]LocationRecord{
		{WorkerID: "ok", Latitude: 10, Longitude: 10},
		{WorkerID: "nan", Latitude: math.NaN(), Longitude: 10},
		{WorkerID: "range", Latitude: 95, Longitude: 10},
	}, now)
	require.Len(t, view.Markers, 1)
	assert.Equal(t, 2, view.Skipped)
}

func TestMapRendererFallbackMessage(t *testing.T) {
	renderer := NewMapRenderer()
	renderer.SetFallback(true)
	view := renderer.View()
	assert.True(t, view.Fallback)
	assert.Equal(t, FallbackMessage, view.Message)

	renderer.SetFallback(false)
	view = renderer.View()
	assert.False(t, view.Fallback)
	assert.Empty(t, view.Message)
}

func TestMapRendererOptions(t *testing.T) {
	center := LatLng{Lat: 51.5, Lng: -0.12}
	view := NewMapRenderer(WithMapCenter(center, 9), WithMapPadding(20)).View()
	assert.Equal(t, center, view.Viewport.Center)
	assert.Equal(t, 9, view.Viewport.Zoom)
	assert.Equal(t, [2]int{20, 20}, view.Viewport.Padding)
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{SouthWest: LatLng{Lat: 10, Lng: 10}, NorthEast: LatLng{Lat: 20, Lng: 20}}
	assert.True(t, b.Contains(LatLng{Lat: 15, Lng: 15}))
	assert.True(t, b.Contains(LatLng{Lat: 10, Lng: 20}))
	assert.False(t, b.Contains(LatLng{Lat: 25, Lng: 15}))
}

func TestBoundsContainsEdgesAndAntimeridian(t *testing.T) {
	b := Bounds{SouthWest: LatLng{Lat: 24.8607, Lng: 67.0011}, NorthEast: LatLng{Lat: 33.6844, Lng: 73.0479}}
	assert.True(t, b.Contains(b.SouthWest))
	assert.True(t, b.Contains(b.NorthEast))
	assert.False(t, b.Contains(LatLng{Lat: 24.86, Lng: 67.0011}))

	wrapped := Bounds{SouthWest: LatLng{Lat: -10, Lng: 170}, NorthEast: LatLng{Lat: 10, Lng: -170}}
	assert.True(t, wrapped.Contains(LatLng{Lat: 0, Lng: 179.5}))
	assert.True(t, wrapped.Contains(LatLng{Lat: 0, Lng: -175}))
	assert.False(t, wrapped.Contains(LatLng{Lat: 0, Lng: 0}))
}
