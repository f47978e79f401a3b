package gapdetector

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// envelopeLinearCeiling and envelopeSplineCeiling bound the three interpolation
// strategies spec.md §3 names by gap duration: <2h linear, 2-6h cubic Hermite, >6h
// multi-scenario convex hull.
const (
	envelopeLinearCeiling = 2 * time.Hour
	envelopeSplineCeiling = 6 * time.Hour
)

// speedFractions and bearingOffsetsDeg parameterize the >6h multi-scenario envelope:
// each combination is a candidate path from the last known position, and the convex
// hull of every candidate's endpoint is the confidence polygon.
var speedFractions = []float64{0.3, 0.5, 0.7, 1.0}
var bearingOffsetsDeg = []float64{-30, -15, 0, 15, 30}

// BuildEnvelope computes the MovementEnvelope for one gap. maxSpeedKn is the vessel's
// DWT-bracket speed ceiling (the same one used for max_plausible_distance_nm).
func BuildEnvelope(gapID string, prev, cur model.AISPoint, maxSpeedKn float64) model.MovementEnvelope {
	duration := cur.TimestampUTC.Sub(prev.TimestampUTC)
	hours := duration.Hours()
	actualNM := geo.HaversineNM(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
	maxPlausibleNM := maxSpeedKn * hours

	var ratio float64
	if maxPlausibleNM > 0 {
		ratio = actualNM / maxPlausibleNM
	}

	bearing := geo.Bearing(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

	env := model.MovementEnvelope{
		EnvelopeID:             uuid.NewString(),
		GapID:                  gapID,
		MaxPlausibleDistanceNM: maxPlausibleNM,
		ActualGapDistanceNM:    actualNM,
		Ratio:                  ratio,
		HeadingDegrees:         bearing,
	}

	switch {
	case duration < envelopeLinearCeiling:
		buildLinear(&env, prev, cur, actualNM)
	case duration <= envelopeSplineCeiling:
		buildSpline(&env, prev, cur, hours)
	default:
		buildMultiScenario(&env, prev, cur, maxSpeedKn, hours, bearing)
	}

	return env
}

func buildLinear(env *model.MovementEnvelope, prev, cur model.AISPoint, actualNM float64) {
	env.Method = model.EnvelopeLinear
	env.InterpolatedPositions = []model.Position{
		{Lat: prev.Lat, Lon: prev.Lon},
		{Lat: cur.Lat, Lon: cur.Lon},
	}
	env.SemiMajorAxisNM = actualNM / 2
	env.SemiMinorAxisNM = math.Max(actualNM/10, 0.1)
	env.ConfidencePolygonWKT = corridorStripWKT(prev, cur, env.SemiMinorAxisNM)
}

// buildSpline interpolates 2-6h gaps with a cubic Hermite curve anchored on each
// endpoint's reported SOG/COG, treating lat/lon as a flat local plane (adequate at
// gap-envelope scale; this is a plausibility aid for analysts, not a navigation tool).
func buildSpline(env *model.MovementEnvelope, prev, cur model.AISPoint, hours float64) {
	env.Method = model.EnvelopeSpline

	const n = 16
	p0 := [2]float64{prev.Lon, prev.Lat}
	p1 := [2]float64{cur.Lon, cur.Lat}
	m0 := tangentVector(prev, hours)
	m1 := tangentVector(cur, hours)

	positions := make([]model.Position, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		h00 := 2*t*t*t - 3*t*t + 1
		h10 := t*t*t - 2*t*t + t
		h01 := -2*t*t*t + 3*t*t
		h11 := t*t*t - t*t

		lon := h00*p0[0] + h10*m0[0] + h01*p1[0] + h11*m1[0]
		lat := h00*p0[1] + h10*m0[1] + h01*p1[1] + h11*m1[1]
		positions = append(positions, model.Position{Lat: lat, Lon: lon})
	}
	env.InterpolatedPositions = positions

	maxDist := 0.0
	for _, pos := range positions {
		d := geo.HaversineNM(prev.Lat, prev.Lon, pos.Lat, pos.Lon)
		if d > maxDist {
			maxDist = d
		}
	}
	env.SemiMajorAxisNM = maxDist
	env.SemiMinorAxisNM = math.Max(maxDist*0.2, 0.1)
	env.ConfidencePolygonWKT = polygonWKT(hullPositions(positions, env.SemiMinorAxisNM))
}

// tangentVector converts a point's SOG/COG into a Hermite tangent in (lon,lat)
// degree-space, scaled by the gap duration so the curve spans the right arc length.
func tangentVector(p model.AISPoint, hours float64) [2]float64 {
	if p.SOG == nil || p.COG == nil {
		return [2]float64{0, 0}
	}
	distanceNM := *p.SOG * hours
	cogRad := *p.COG * math.Pi / 180
	dLat := (distanceNM / 60) * math.Cos(cogRad)
	dLon := (distanceNM / 60) * math.Sin(cogRad) / math.Max(math.Cos(p.Lat*math.Pi/180), 0.01)
	return [2]float64{dLon, dLat}
}

// buildMultiScenario generates candidate paths at each (speed fraction, bearing
// offset) combination and takes their convex hull as the confidence polygon, per
// spec.md §3's ">6h multi-scenario envelope" rule.
func buildMultiScenario(env *model.MovementEnvelope, prev, cur model.AISPoint, maxSpeedKn, hours, bearing float64) {
	env.Method = model.EnvelopeKalman

	var candidates []model.Position
	for _, frac := range speedFractions {
		for _, offset := range bearingOffsetsDeg {
			distanceNM := maxSpeedKn * frac * hours
			lat, lon := geo.Destination(prev.Lat, prev.Lon, bearing+offset, distanceNM)
			candidates = append(candidates, model.Position{Lat: lat, Lon: lon})
		}
	}
	candidates = append(candidates, model.Position{Lat: cur.Lat, Lon: cur.Lon})
	env.InterpolatedPositions = candidates

	hull := convexHull(candidates)
	env.ConfidencePolygonWKT = polygonWKT(hull)

	maxDist := 0.0
	for _, c := range candidates {
		d := geo.HaversineNM(prev.Lat, prev.Lon, c.Lat, c.Lon)
		if d > maxDist {
			maxDist = d
		}
	}
	env.SemiMajorAxisNM = maxDist
	env.SemiMinorAxisNM = maxDist * 0.6
}

// corridorStripWKT builds a thin rectangular buffer around the direct prev->cur
// segment, used as the linear-method confidence polygon.
func corridorStripWKT(prev, cur model.AISPoint, halfWidthNM float64) string {
	bearing := geo.Bearing(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
	perpLeft := bearing - 90
	perpRight := bearing + 90

	p1Lat, p1Lon := geo.Destination(prev.Lat, prev.Lon, perpLeft, halfWidthNM)
	p2Lat, p2Lon := geo.Destination(cur.Lat, cur.Lon, perpLeft, halfWidthNM)
	p3Lat, p3Lon := geo.Destination(cur.Lat, cur.Lon, perpRight, halfWidthNM)
	p4Lat, p4Lon := geo.Destination(prev.Lat, prev.Lon, perpRight, halfWidthNM)

	return polygonWKT([]model.Position{
		{Lat: p1Lat, Lon: p1Lon},
		{Lat: p2Lat, Lon: p2Lon},
		{Lat: p3Lat, Lon: p3Lon},
		{Lat: p4Lat, Lon: p4Lon},
	})
}

// hullPositions buffers a spline polyline outward by halfWidthNM on each side to turn
// a line into a closed polygon, then takes the convex hull of the buffered points.
func hullPositions(line []model.Position, halfWidthNM float64) []model.Position {
	var buffered []model.Position
	for i, pos := range line {
		var bearing float64
		switch {
		case i == 0:
			bearing = geo.Bearing(pos.Lat, pos.Lon, line[i+1].Lat, line[i+1].Lon)
		case i == len(line)-1:
			bearing = geo.Bearing(line[i-1].Lat, line[i-1].Lon, pos.Lat, pos.Lon)
		default:
			bearing = geo.Bearing(line[i-1].Lat, line[i-1].Lon, line[i+1].Lat, line[i+1].Lon)
		}
		for _, side := range []float64{-90, 90} {
			lat, lon := geo.Destination(pos.Lat, pos.Lon, bearing+side, halfWidthNM)
			buffered = append(buffered, model.Position{Lat: lat, Lon: lon})
		}
	}
	return convexHull(buffered)
}

// polygonWKT renders a closed ring of positions as a WKT POLYGON, matching the format
// internal/geo.ParsePolygonBBox expects to read back.
func polygonWKT(ring []model.Position) string {
	if len(ring) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, p := range ring {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%f %f", p.Lon, p.Lat)
	}
	fmt.Fprintf(&b, ", %f %f", ring[0].Lon, ring[0].Lat)
	b.WriteString("))")
	return b.String()
}
