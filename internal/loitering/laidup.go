package loitering

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

type dailyPosition struct {
	date time.Time
	lat  float64
	lon  float64
}

// dailyMedians folds points into one calendar-day median lat/lon each, UTC, in
// ascending date order. Days without any points are simply absent — a run of
// consecutive days requires actual AIS coverage every day, not just bounded movement.
func dailyMedians(points []model.AISPoint) []dailyPosition {
	type acc struct {
		lats []float64
		lons []float64
	}
	byDay := make(map[time.Time]*acc)
	var order []time.Time

	for _, p := range points {
		day := p.TimestampUTC.Truncate(24 * time.Hour)
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
			order = append(order, day)
		}
		a.lats = append(a.lats, p.Lat)
		a.lons = append(a.lons, p.Lon)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]dailyPosition, 0, len(order))
	for _, day := range order {
		a := byDay[day]
		out = append(out, dailyPosition{date: day, lat: medianFloat(a.lats), lon: medianFloat(a.lons)})
	}
	return out
}

// longestLaidUpRun finds the longest run of consecutive calendar days whose median
// positions all fit within a bboxDeg-wide box — the vessel has gone nowhere.
func longestLaidUpRun(days []dailyPosition, bboxDeg float64) int {
	best := 0
	for start := 0; start < len(days); start++ {
		minLat, maxLat := days[start].lat, days[start].lat
		minLon, maxLon := days[start].lon, days[start].lon
		runLen := 1

		for end := start + 1; end < len(days); end++ {
			if !days[end].date.Equal(days[end-1].date.AddDate(0, 0, 1)) {
				break
			}
			newMinLat, newMaxLat := minFloat(minLat, days[end].lat), maxFloat(maxLat, days[end].lat)
			newMinLon, newMaxLon := minFloat(minLon, days[end].lon), maxFloat(maxLon, days[end].lon)
			if newMaxLat-newMinLat > bboxDeg || newMaxLon-newMinLon > bboxDeg {
				break
			}
			minLat, maxLat, minLon, maxLon = newMinLat, newMaxLat, newMinLon, newMaxLon
			runLen++
		}
		if runLen > best {
			best = runLen
		}
	}
	return best
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// updateLaidUpFlags recomputes both laid-up flags from the daily-median positions of the
// given points (the caller's scan window) and persists them if changed.
func (d *Detector) updateLaidUpFlags(ctx context.Context, vesselID string, points []model.AISPoint) (bool, bool, error) {
	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return false, false, fmt.Errorf("loitering: get vessel: %w", err)
	}
	if v == nil {
		return false, false, fmt.Errorf("loitering: vessel %s not found", vesselID)
	}

	bboxDeg := d.cfg.LaidUpBBoxDeg
	if bboxDeg <= 0 {
		bboxDeg = 0.033
	}
	days30 := d.cfg.LaidUp30dDays
	if days30 <= 0 {
		days30 = 30
	}
	days60 := d.cfg.LaidUp60dDays
	if days60 <= 0 {
		days60 = 60
	}

	run := longestLaidUpRun(dailyMedians(points), bboxDeg)
	set30 := run >= days30
	set60 := run >= days60

	if v.VesselLaidUp30d != set30 || v.VesselLaidUp60d != set60 {
		v.VesselLaidUp30d = set30
		v.VesselLaidUp60d = set60
		if err := d.store.UpdateVessel(ctx, v); err != nil {
			return set30, set60, fmt.Errorf("loitering: update vessel: %w", err)
		}
	}

	return set30, set60, nil
}
