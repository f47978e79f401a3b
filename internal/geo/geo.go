// Package geo holds the pure great-circle and WKT bounding-box math every detector
// package depends on. No I/O, no external types: every function takes and returns plain
// float64 so it composes cleanly across gapdetector, spoofing, sts, and loitering.
package geo

import "math"

// EarthRadiusNM and EarthRadiusM are the two unit conventions used across the codebase:
// nautical miles for speed/distance thresholds, metres for proximity clustering (STS,
// port-call radius).
const (
	EarthRadiusNM = 3440.065
	EarthRadiusM  = 6371000.0
)

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// HaversineNM returns the great-circle distance between two points in nautical miles.
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2, EarthRadiusNM)
}

// HaversineM returns the great-circle distance between two points in metres.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2, EarthRadiusM)
}

func haversine(lat1, lon1, lat2, lon2, radius float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}

// Bearing returns the initial great-circle bearing in degrees [0, 360) from point 1 to
// point 2.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dLambda := toRadians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)
	return math.Mod(toDegrees(theta)+360, 360)
}

// Destination returns the point reached from (lat, lon) travelling distanceNM nautical
// miles along bearingDeg.
func Destination(lat, lon, bearingDeg, distanceNM float64) (destLat, destLon float64) {
	angDist := distanceNM / EarthRadiusNM
	phi1 := toRadians(lat)
	lambda1 := toRadians(lon)
	theta := toRadians(bearingDeg)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(angDist) +
		math.Cos(phi1)*math.Sin(angDist)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(angDist)*math.Cos(phi1),
		math.Cos(angDist)-math.Sin(phi1)*math.Sin(phi2))

	return toDegrees(phi2), math.Mod(toDegrees(lambda2)+540, 360) - 180
}

// BBox is an axis-aligned bounding box in WGS84 degrees.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Contains reports whether (lat, lon) falls within the bbox, widened on every side by
// toleranceDeg.
func (b BBox) Contains(lat, lon, toleranceDeg float64) bool {
	return lon >= b.MinLon-toleranceDeg && lon <= b.MaxLon+toleranceDeg &&
		lat >= b.MinLat-toleranceDeg && lat <= b.MaxLat+toleranceDeg
}

// PointInBBox is a free function wrapper over BBox.Contains for call sites that only
// have the four bounds, not a constructed BBox.
func PointInBBox(lat, lon, minLon, minLat, maxLon, maxLat, toleranceDeg float64) bool {
	b := BBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
	return b.Contains(lat, lon, toleranceDeg)
}

// SegmentIntersectsBBox reports whether the straight line segment (lat1,lon1)-(lat2,lon2)
// intersects the bbox, including the case where both endpoints lie outside it but the
// segment passes through (the transit-through-a-corridor case corridor association
// requires — ST_Intersects semantics, not ST_Within on endpoints).
func SegmentIntersectsBBox(lat1, lon1, lat2, lon2 float64, b BBox) bool {
	if b.Contains(lat1, lon1, 0) || b.Contains(lat2, lon2, 0) {
		return true
	}
	// Liang-Barsky clipping: treat the segment as a parametric line and test whether
	// any portion of it falls inside the box's lon/lat ranges.
	dx := lon2 - lon1
	dy := lat2 - lat1

	tMin, tMax := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > tMax {
				return false
			}
			if r > tMin {
				tMin = r
			}
		} else {
			if r < tMin {
				return false
			}
			if r < tMax {
				tMax = r
			}
		}
		return true
	}

	if !clip(-dx, lon1-b.MinLon) {
		return false
	}
	if !clip(dx, b.MaxLon-lon1) {
		return false
	}
	if !clip(-dy, lat1-b.MinLat) {
		return false
	}
	if !clip(dy, b.MaxLat-lat1) {
		return false
	}
	return tMin <= tMax
}

// ParsePolygonBBox extracts the bounding box of a WKT "POLYGON((lon lat, lon lat, ...))"
// string. Only simple single-ring polygons are supported; holes and multipolygons are
// out of scope.
func ParsePolygonBBox(wkt string) (BBox, bool) {
	start := indexOfDoubleParen(wkt)
	if start < 0 {
		return BBox{}, false
	}
	end := lastIndexByte(wkt, ')')
	if end <= start {
		return BBox{}, false
	}
	body := wkt[start:end]

	var minLon, minLat, maxLon, maxLat float64
	first := true
	for _, pair := range splitComma(body) {
		lon, lat, ok := parseLonLat(pair)
		if !ok {
			continue
		}
		if first {
			minLon, maxLon, minLat, maxLat = lon, lon, lat, lat
			first = false
			continue
		}
		if lon < minLon {
			minLon = lon
		}
		if lon > maxLon {
			maxLon = lon
		}
		if lat < minLat {
			minLat = lat
		}
		if lat > maxLat {
			maxLat = lat
		}
	}
	if first {
		return BBox{}, false
	}
	return BBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}, true
}
