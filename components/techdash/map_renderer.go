package techdash

import (
	"math"
	"time"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// FallbackMessage is shown over the map when only off-duty data is available.
	FallbackMessage = "No live data. Showing last known locations."

	defaultMapZoom    = 5
	defaultMapPadding = 50

	// degrees; absorbs rounding from the radians round trip
	boundsTolerance = 1e-9
)

// DefaultMapCenter is the initial map centre before any marker arrives.
var DefaultMapCenter = LatLng{Lat: 30.3753, Lng: 69.3451}

// LatLng is a coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangle the map view is fitted to.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// Contains reports whether the point lies inside the bounds. Bounds that cross
// the antimeridian have SouthWest.Lng > NorthEast.Lng.
func (b Bounds) Contains(p LatLng) bool {
	rect := s2.Rect{
		Lat: r1.Interval{Lo: degreesToRadians(b.SouthWest.Lat), Hi: degreesToRadians(b.NorthEast.Lat)},
		Lng: s1.Interval{Lo: degreesToRadians(b.SouthWest.Lng), Hi: degreesToRadians(b.NorthEast.Lng)},
	}
	margin := degreesToRadians(boundsTolerance)
	rect = s2.Rect{Lat: rect.Lat.Expanded(margin), Lng: rect.Lng.Expanded(margin)}
	return rect.ContainsLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng))
}

// MarkerIcon describes the div icon drawn for a technician.
type MarkerIcon struct {
	ClassName string `json:"class_name"`
	Glyph     string `json:"glyph"`
	Size      [2]int `json:"size"`
	Anchor    [2]int `json:"anchor"`
}

// Tooltip is the permanent label attached to a marker.
type Tooltip struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	ClassName string `json:"class_name"`
	Direction string `json:"direction"`
	Permanent bool   `json:"permanent"`
	Offset    [2]int `json:"offset"`
}

// Marker is a single technician position on the map.
type Marker struct {
	WorkerID string     `json:"worker_id"`
	Position LatLng     `json:"position"`
	Icon     MarkerIcon `json:"icon"`
	Tooltip  Tooltip    `json:"tooltip"`
}

// MapViewport is the current centre/zoom plus the fitted bounds, if any.
type MapViewport struct {
	Center  LatLng  `json:"center"`
	Zoom    int     `json:"zoom"`
	Bounds  *Bounds `json:"bounds,omitempty"`
	Padding [2]int  `json:"padding"`
}

// MapView is the rendered map region.
type MapView struct {
	Markers  []Marker    `json:"markers"`
	Viewport MapViewport `json:"viewport"`
	Fallback bool        `json:"fallback"`
	Message  string      `json:"message,omitempty"`
	Skipped  int         `json:"skipped,omitempty"`
}

// MapOption customizes a MapRenderer.
type MapOption func(*MapRenderer)

// WithMapCenter overrides the initial centre and zoom.
func WithMapCenter(center LatLng, zoom int) MapOption {
	return func(r *MapRenderer) {
		r.view.Viewport.Center = center
		r.view.Viewport.Zoom = zoom
	}
}

// WithMapPadding overrides the pixel padding used when fitting bounds.
func WithMapPadding(px int) MapOption {
	return func(r *MapRenderer) {
		r.view.Viewport.Padding = [2]int{px, px}
	}
}

// MapRenderer owns the live marker set and the viewport.
type MapRenderer struct {
	view MapView
}

// NewMapRenderer builds a renderer centred on DefaultMapCenter.
func NewMapRenderer(opts ...MapOption) *MapRenderer {
	r := &MapRenderer{
		view: MapView{
			Markers: []Marker{},
			Viewport: MapViewport{
				Center:  DefaultMapCenter,
				Zoom:    defaultMapZoom,
				Padding: [2]int{defaultMapPadding, defaultMapPadding},
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update clears every marker and rebuilds the set from records. The viewport
// is refitted to the new markers; an empty set keeps the previous viewport.
// Records with unusable coordinates are skipped.
func (r *MapRenderer) Update(records []LocationRecord, now time.Time) MapView {
	markers := make([]Marker, 0, len(records))
	rect := s2.EmptyRect()
	skipped := 0
	for _, rec := range records {
		if !validCoordinate(rec.Latitude, rec.Longitude) {
			skipped++
			continue
		}
		markers = append(markers, newMarker(rec, now))
		rect = rect.AddPoint(s2.LatLngFromDegrees(rec.Latitude, rec.Longitude))
	}
	r.view.Markers = markers
	r.view.Skipped = skipped
	if len(markers) > 0 {
		lo, hi := rect.Lo(), rect.Hi()
		r.view.Viewport.Bounds = &Bounds{
			SouthWest: LatLng{Lat: lo.Lat.Degrees(), Lng: lo.Lng.Degrees()},
			NorthEast: LatLng{Lat: hi.Lat.Degrees(), Lng: hi.Lng.Degrees()},
		}
	}
	return r.View()
}

// SetFallback toggles the stale-data overlay.
func (r *MapRenderer) SetFallback(shown bool) {
	r.view.Fallback = shown
	if shown {
		r.view.Message = FallbackMessage
		return
	}
	r.view.Message = ""
}

// View returns a snapshot of the current map region.
func (r *MapRenderer) View() MapView {
	view := r.view
	view.Markers = append([]Marker(nil), r.view.Markers...)
	if r.view.Viewport.Bounds != nil {
		bounds := *r.view.Viewport.Bounds
		view.Viewport.Bounds = &bounds
	}
	return view
}

func newMarker(rec LocationRecord, now time.Time) Marker {
	return Marker{
		WorkerID: rec.WorkerID,
		Position: LatLng{Lat: rec.Latitude, Lng: rec.Longitude},
		Icon: MarkerIcon{
			ClassName: "technician-marker",
			Glyph:     "🧑‍🔧",
			Size:      [2]int{30, 30},
			Anchor:    [2]int{15, 15},
		},
		Tooltip: Tooltip{
			Title:     rec.WorkerName,
			Subtitle:  RelativeTime(now, rec.CapturedAt),
			ClassName: "tech-tooltip-card",
			Direction: "top",
			Permanent: true,
			Offset:    [2]int{0, -15},
		},
	}
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func degreesToRadians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}
