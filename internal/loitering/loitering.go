// Package loitering folds a vessel's AIS track into hourly-bucket median-SOG runs
// (LoiteringEvent) and daily-median-position runs (the laid-up flags), the two
// Polars-style group-bys spec.md §4.5 calls for — implemented here as streaming
// window folds over a single ascending pass, per Design Note §9, in the style of
// internal/reputation's decay sweep: a bounded accumulator walked forward once.
package loitering

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

const (
	qualifyingMedianSOGKn = 0.5
	minRunBuckets         = 4
	sustainedRunBuckets   = 12
	baselineScore         = 8
	sustainedScore        = 20
)

// Detector folds AIS tracks into loitering runs and laid-up flags.
type Detector struct {
	store     store.Store
	cfg       config.DetectorsConfig
	corridors []model.Corridor
}

// New returns a Detector. corridors should be loaded once per run via
// store.ListCorridors, same convention as internal/gapdetector and internal/sts.
func New(s store.Store, cfg config.DetectorsConfig, corridors []model.Corridor) *Detector {
	return &Detector{store: s, cfg: cfg, corridors: corridors}
}

// Result tallies one vessel's run.
type Result struct {
	LoiteringEventsCreated int
	LaidUp30dSet           bool
	LaidUp60dSet           bool
	Errors                 []string
}

// DetectForVessel scans one vessel's AIS history in [from, to] for loitering runs and
// re-evaluates its laid-up flags.
func (d *Detector) DetectForVessel(ctx context.Context, vesselID string, from, to time.Time) (Result, error) {
	var res Result

	points, err := d.store.ListAISPoints(ctx, vesselID, from, to)
	if err != nil {
		return res, fmt.Errorf("loitering: list points: %w", err)
	}
	if len(points) == 0 {
		return res, nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TimestampUTC.Before(points[j].TimestampUTC) })

	n, err := d.detectLoiteringRuns(ctx, vesselID, points)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	res.LoiteringEventsCreated = n

	set30, set60, err := d.updateLaidUpFlags(ctx, vesselID, points)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	res.LaidUp30dSet, res.LaidUp60dSet = set30, set60

	return res, nil
}

type hourBucket struct {
	idx    int
	start  time.Time
	end    time.Time
	median float64
	lat    float64
	lon    float64
}

// bucketHourly folds points into one-hour buckets and returns each bucket's median SOG
// and mean position, in ascending bucket-index order. Points without an SOG reading are
// excluded from the median but still contribute to mean position.
func bucketHourly(points []model.AISPoint) []hourBucket {
	epoch := points[0].TimestampUTC.Truncate(time.Hour)
	type acc struct {
		sogs     []float64
		latSum   float64
		lonSum   float64
		n        int
	}
	buckets := make(map[int]*acc)
	var order []int

	for _, p := range points {
		idx := int(p.TimestampUTC.Sub(epoch) / time.Hour)
		a, ok := buckets[idx]
		if !ok {
			a = &acc{}
			buckets[idx] = a
			order = append(order, idx)
		}
		if p.SOG != nil {
			a.sogs = append(a.sogs, *p.SOG)
		}
		a.latSum += p.Lat
		a.lonSum += p.Lon
		a.n++
	}
	sort.Ints(order)

	out := make([]hourBucket, 0, len(order))
	for _, idx := range order {
		a := buckets[idx]
		out = append(out, hourBucket{
			idx:    idx,
			start:  epoch.Add(time.Duration(idx) * time.Hour),
			end:    epoch.Add(time.Duration(idx+1) * time.Hour),
			median: medianFloat(a.sogs),
			lat:    a.latSum / float64(a.n),
			lon:    a.lonSum / float64(a.n),
		})
	}
	return out
}

func medianFloat(vs []float64) float64 {
	if len(vs) == 0 {
		return -1
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func (d *Detector) detectLoiteringRuns(ctx context.Context, vesselID string, points []model.AISPoint) (int, error) {
	buckets := bucketHourly(points)

	created := 0
	var run []hourBucket
	prevIdx := -2

	flush := func() error {
		defer func() { run = nil }()
		if len(run) < minRunBuckets {
			return nil
		}
		n, err := d.emitLoiteringEvent(ctx, vesselID, run)
		if err != nil {
			return err
		}
		created += n
		return nil
	}

	for _, b := range buckets {
		if b.median < 0 || b.median >= qualifyingMedianSOGKn {
			if err := flush(); err != nil {
				return created, err
			}
			prevIdx = -2
			continue
		}
		if b.idx != prevIdx+1 {
			if err := flush(); err != nil {
				return created, err
			}
		}
		run = append(run, b)
		prevIdx = b.idx
	}
	if err := flush(); err != nil {
		return created, err
	}

	return created, nil
}

func (d *Detector) emitLoiteringEvent(ctx context.Context, vesselID string, run []hourBucket) (int, error) {
	start, end := run[0].start, run[len(run)-1].end

	existing, err := d.store.ListLoiteringEventsByVessel(ctx, vesselID, start.Add(-24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("loitering: list existing: %w", err)
	}
	for _, e := range existing {
		if e.StartUTC.Before(end) && start.Before(e.EndUTC) {
			return 0, nil
		}
	}

	var latSum, lonSum, medianSum float64
	for _, b := range run {
		latSum += b.lat
		lonSum += b.lon
		medianSum += b.median
	}
	n := float64(len(run))
	meanLat, meanLon := latSum/n, lonSum/n

	score := baselineScore
	sustained := false
	corridorID, inCorridor := d.associateCorridor(meanLat, meanLon)
	if len(run) >= sustainedRunBuckets && inCorridor {
		score = sustainedScore
		sustained = true
	}

	e := &model.LoiteringEvent{
		LoiteringID:        uuid.NewString(),
		VesselID:           vesselID,
		StartUTC:           start,
		EndUTC:             end,
		DurationHours:      end.Sub(start).Hours(),
		MedianSOG:          medianSum / n,
		MeanLat:            meanLat,
		MeanLon:            meanLon,
		Sustained:          sustained,
		RiskScoreComponent: score,
	}
	if inCorridor {
		e.CorridorID = &corridorID
	}

	if err := d.store.CreateLoiteringEvent(ctx, e); err != nil {
		return 0, fmt.Errorf("loitering: create event: %w", err)
	}
	return 1, nil
}

func (d *Detector) associateCorridor(lat, lon float64) (string, bool) {
	for _, c := range d.corridors {
		bbox, ok := geo.ParsePolygonBBox(c.WKT)
		if !ok {
			continue
		}
		if bbox.Contains(lat, lon, 0) {
			return c.CorridorID, true
		}
	}
	return "", false
}
