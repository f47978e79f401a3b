// Package sts detects ship-to-ship transfer encounters: sustained close-proximity
// tracks between two vessels, with or without an AIS broadcast on one or both sides.
// Scanning is pairwise over the full vessel set because no store query returns AIS
// points across more than one vessel at a time (the same per-vessel shape
// internal/gapdetector scans, squared).
package sts

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

// Per-detection-type risk contributions. spec.md leaves StsTransferEvent's point value
// unspecified by detection type (unlike the spoofing suite, which has literal scores
// per anomaly from its test scenarios); these are this package's own ordering,
// increasing with how much surveillance evasion each pattern implies, recorded as an
// Open Question decision in DESIGN.md.
const (
	scoreVisibleVisible = 15
	scoreVisibleDark    = 30
	scoreDarkDark        = 45
	scoreApproaching    = 10
	scoreGFWEncounter   = 20
)

// approachingConvergenceHours is the closing-ETA ceiling below which two vessels on
// converging courses are flagged APPROACHING rather than waited on until they actually
// close within the proximity threshold.
const approachingConvergenceHours = 1.0

// darkVesselMatchWindow bounds how far apart in time a visible point and a
// DarkVesselDetection may be and still be considered the same encounter.
const darkVesselMatchWindow = 30 * time.Minute

// Detector runs proximity clustering across every non-absorbed, non-bunkering vessel
// pair plus dark-vessel matching.
type Detector struct {
	store     store.Store
	cfg       config.DetectorsConfig
	corridors []model.Corridor
	bunkering map[string]bool
}

// New returns a Detector. corridors should be loaded once per run via
// store.ListCorridors, same convention as internal/gapdetector.
func New(s store.Store, cfg config.DetectorsConfig, corridors []model.Corridor) *Detector {
	bunkering := make(map[string]bool, len(cfg.BunkeringMMSI))
	for _, m := range cfg.BunkeringMMSI {
		bunkering[m] = true
	}
	return &Detector{store: s, cfg: cfg, corridors: corridors, bunkering: bunkering}
}

// Result tallies one run.
type Result struct {
	EventsCreated int
	Errors        []string
}

type vesselTrack struct {
	vessel model.Vessel
	points []model.AISPoint
}

// DetectAll scans [from, to] for every vessel pair and every unmatched dark-vessel
// detection, creating StsTransferEvents for qualifying encounters.
func (d *Detector) DetectAll(ctx context.Context, from, to time.Time) (Result, error) {
	var res Result

	vessels, err := d.store.ListVessels(ctx, false)
	if err != nil {
		return res, fmt.Errorf("sts: list vessels: %w", err)
	}

	tracks := make([]vesselTrack, 0, len(vessels))
	for _, v := range vessels {
		if d.bunkering[v.MMSI] {
			continue
		}
		points, err := d.store.ListAISPoints(ctx, v.VesselID, from, to)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("vessel %s: list points: %v", v.VesselID, err))
			continue
		}
		if len(points) == 0 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].TimestampUTC.Before(points[j].TimestampUTC) })
		tracks = append(tracks, vesselTrack{vessel: v, points: points})
	}

	for i := 0; i < len(tracks); i++ {
		for j := i + 1; j < len(tracks); j++ {
			n, err := d.detectPair(ctx, tracks[i], tracks[j])
			if err != nil {
				res.Errors = append(res.Errors, err.Error())
				continue
			}
			res.EventsCreated += n

			n, err = d.detectApproaching(ctx, tracks[i], tracks[j])
			if err != nil {
				res.Errors = append(res.Errors, err.Error())
				continue
			}
			res.EventsCreated += n
		}
	}

	n, err := d.detectDarkVesselMatches(ctx, tracks, from, to)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	res.EventsCreated += n

	return res, nil
}

// windowDuration returns the configured STS bucket width, falling back to the
// documented default when unset.
func (d *Detector) windowDuration() time.Duration {
	if d.cfg.STSWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(d.cfg.STSWindowMinutes) * time.Minute
}

func (d *Detector) minWindows() int {
	if d.cfg.STSMinWindows <= 0 {
		return 8
	}
	return d.cfg.STSMinWindows
}

func (d *Detector) proximityMeters() float64 {
	if d.cfg.STSProximityMeters <= 0 {
		return 200
	}
	return d.cfg.STSProximityMeters
}

// bucketPoints folds a vessel's track into one representative point per window
// (Design Note §9: a streaming window fold rather than a full in-memory group-by),
// keyed by window index relative to epoch. The first point seen in a window wins;
// points is expected pre-sorted ascending.
func bucketPoints(points []model.AISPoint, epoch time.Time, windowDur time.Duration) map[int]model.AISPoint {
	out := make(map[int]model.AISPoint)
	for _, p := range points {
		idx := int(p.TimestampUTC.Sub(epoch) / windowDur)
		if _, ok := out[idx]; !ok {
			out[idx] = p
		}
	}
	return out
}

// detectPair looks for a VISIBLE_VISIBLE encounter: a run of consecutive windows in
// which both vessels have a point and those points lie within the proximity threshold.
func (d *Detector) detectPair(ctx context.Context, t1, t2 vesselTrack) (int, error) {
	windowDur := d.windowDuration()
	epoch := t1.points[0].TimestampUTC
	if t2.points[0].TimestampUTC.Before(epoch) {
		epoch = t2.points[0].TimestampUTC
	}

	b1 := bucketPoints(t1.points, epoch, windowDur)
	b2 := bucketPoints(t2.points, epoch, windowDur)

	var shared []int
	for idx := range b1 {
		if _, ok := b2[idx]; ok {
			shared = append(shared, idx)
		}
	}
	sort.Ints(shared)

	proximity := d.proximityMeters()
	minWindows := d.minWindows()

	created := 0
	var run []int
	prevIdx := -2

	flush := func() error {
		defer func() { run = nil }()
		if len(run) < minWindows {
			return nil
		}
		n, err := d.emitPairEvent(ctx, t1.vessel, t2.vessel, model.StsVisibleVisible, b1, b2, run, scoreVisibleVisible)
		if err != nil {
			return err
		}
		created += n
		return nil
	}

	for _, idx := range shared {
		a, b := b1[idx], b2[idx]
		if geo.HaversineM(a.Lat, a.Lon, b.Lat, b.Lon) > proximity {
			if err := flush(); err != nil {
				return created, err
			}
			prevIdx = -2
			continue
		}
		if idx != prevIdx+1 {
			if err := flush(); err != nil {
				return created, err
			}
		}
		run = append(run, idx)
		prevIdx = idx
	}
	if err := flush(); err != nil {
		return created, err
	}

	return created, nil
}

// emitPairEvent persists the StsTransferEvent for a qualifying window run, skipping if
// an overlapping event for the same pair already exists.
func (d *Detector) emitPairEvent(ctx context.Context, v1, v2 model.Vessel, detType model.StsDetectionType, b1, b2 map[int]model.AISPoint, run []int, score int) (int, error) {
	start := minTime(b1[run[0]].TimestampUTC, b2[run[0]].TimestampUTC)
	end := maxTime(b1[run[len(run)-1]].TimestampUTC, b2[run[len(run)-1]].TimestampUTC)

	exists, err := d.overlappingEventExists(ctx, v1.VesselID, v2.VesselID, start, end)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	var proxSum, latSum, lonSum float64
	for _, idx := range run {
		a, b := b1[idx], b2[idx]
		proxSum += geo.HaversineM(a.Lat, a.Lon, b.Lat, b.Lon)
		latSum += (a.Lat + b.Lat) / 2
		lonSum += (a.Lon + b.Lon) / 2
	}
	n := float64(len(run))

	e := &model.StsTransferEvent{
		StsID:              uuid.NewString(),
		Vessel1ID:          v1.VesselID,
		Vessel2ID:          v2.VesselID,
		DetectionType:      detType,
		StartUTC:           start,
		EndUTC:             end,
		DurationMinutes:    int(end.Sub(start).Minutes()),
		MeanProximityM:     proxSum / n,
		MeanLat:            latSum / n,
		MeanLon:            lonSum / n,
		RiskScoreComponent: score,
	}
	if corridorID, ok := d.associateCorridor(e.MeanLat, e.MeanLon); ok {
		e.CorridorID = &corridorID
	}

	if err := d.store.CreateSTSEvent(ctx, e); err != nil {
		return 0, fmt.Errorf("sts: create event %s/%s: %w", v1.VesselID, v2.VesselID, err)
	}
	return 1, nil
}

func (d *Detector) overlappingEventExists(ctx context.Context, v1ID, v2ID string, start, end time.Time) (bool, error) {
	existing, err := d.store.ListSTSEventsByVessel(ctx, v1ID, start.Add(-24*time.Hour))
	if err != nil {
		return false, fmt.Errorf("sts: list existing events: %w", err)
	}
	for _, e := range existing {
		if e.Vessel2ID != v2ID && e.Vessel1ID != v2ID {
			continue
		}
		if e.StartUTC.Before(end) && start.Before(e.EndUTC) {
			return true, nil
		}
	}
	return false, nil
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

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
