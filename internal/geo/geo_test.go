package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineSymmetry(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"baltic leg", 55.6, 12.6, 59.3, 18.1},
		{"antimeridian crossing", 10.0, 179.5, 10.0, -179.5},
		{"identical point", 1.0, 1.0, 1.0, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ab := HaversineNM(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			ba := HaversineNM(tc.lat2, tc.lon2, tc.lat1, tc.lon1)
			assert.InDelta(t, ab, ba, 1e-9)
		})
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Equator, one degree of longitude apart ~60.04 nm.
	d := HaversineNM(0, 0, 0, 1)
	assert.InDelta(t, 60.04, d, 0.5)
}

func TestDestinationRoundTrip(t *testing.T) {
	lat, lon := 55.0, 12.0
	destLat, destLon := Destination(lat, lon, 90, 100)
	back := Bearing(destLat, destLon, lat, lon)
	// Travelling due east along a great circle from 55N, the initial bearing back is
	// not due west: meridian convergence over ~2.9 degrees of longitude puts it at ~272.38.
	assert.InDelta(t, 272.38, back, 0.05)

	dist := HaversineNM(lat, lon, destLat, destLon)
	assert.InDelta(t, 100.0, dist, 0.5)
}

func TestBearingRange(t *testing.T) {
	b := Bearing(10, 10, 5, -5)
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}

func TestParsePolygonBBox(t *testing.T) {
	wkt := "POLYGON((10.0 50.0, 12.0 50.0, 12.0 52.0, 10.0 52.0, 10.0 50.0))"
	bbox, ok := ParsePolygonBBox(wkt)
	require.True(t, ok)
	assert.Equal(t, 10.0, bbox.MinLon)
	assert.Equal(t, 50.0, bbox.MinLat)
	assert.Equal(t, 12.0, bbox.MaxLon)
	assert.Equal(t, 52.0, bbox.MaxLat)
}

func TestParsePolygonBBoxInvalid(t *testing.T) {
	_, ok := ParsePolygonBBox("not wkt at all")
	assert.False(t, ok)
}

func TestPointInBBoxTolerance(t *testing.T) {
	assert.True(t, PointInBBox(50.0, 10.0, 9.0, 49.0, 11.0, 51.0, 0))
	assert.False(t, PointInBBox(48.9, 10.0, 9.0, 49.0, 11.0, 51.0, 0))
	assert.True(t, PointInBBox(48.9, 10.0, 9.0, 49.0, 11.0, 51.0, 0.2))
}

func TestSegmentIntersectsBBoxTransitThrough(t *testing.T) {
	b := BBox{MinLon: 10, MinLat: 50, MaxLon: 12, MaxLat: 52}
	// Both endpoints outside the box, but the straight segment passes through it.
	got := SegmentIntersectsBBox(51, 5, 51, 17, b)
	assert.True(t, got)
}

func TestSegmentIntersectsBBoxNoIntersection(t *testing.T) {
	b := BBox{MinLon: 10, MinLat: 50, MaxLon: 12, MaxLat: 52}
	got := SegmentIntersectsBBox(0, 0, 1, 1, b)
	assert.False(t, got)
}

func TestSegmentIntersectsBBoxEndpointInside(t *testing.T) {
	b := BBox{MinLon: 10, MinLat: 50, MaxLon: 12, MaxLat: 52}
	got := SegmentIntersectsBBox(51, 11, 0, 0, b)
	assert.True(t, got)
}

func TestEarthRadiusConstantsMatchNMToMeters(t *testing.T) {
	nmInMeters := EarthRadiusM / EarthRadiusNM
	assert.True(t, math.Abs(nmInMeters-1852.0) < 2.0)
}
