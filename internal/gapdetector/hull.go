package gapdetector

import (
	"sort"

	"github.com/radiancefleet/core/internal/model"
)

// convexHull returns the convex hull of a set of (lon=X, lat=Y) positions using
// Andrew's monotone chain algorithm. Points are treated as lying on a flat 2D plane,
// adequate at the local scale a gap envelope spans.
func convexHull(points []model.Position) []model.Position {
	uniq := dedupePositions(points)
	if len(uniq) < 3 {
		return uniq
	}

	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].Lon != uniq[j].Lon {
			return uniq[i].Lon < uniq[j].Lon
		}
		return uniq[i].Lat < uniq[j].Lat
	})

	cross := func(o, a, b model.Position) float64 {
		return (a.Lon-o.Lon)*(b.Lat-o.Lat) - (a.Lat-o.Lat)*(b.Lon-o.Lon)
	}

	lower := make([]model.Position, 0, len(uniq))
	for _, p := range uniq {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]model.Position, 0, len(uniq))
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func dedupePositions(points []model.Position) []model.Position {
	seen := make(map[model.Position]bool, len(points))
	out := make([]model.Position, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
