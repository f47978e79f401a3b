// Package gapdetector walks each non-absorbed vessel's AIS track in ascending
// timestamp order and emits an AISGapEvent for every consecutive pair of points whose
// separation is at least the configured minimum, scored not for risk (that is a separate
// phase) but for physical plausibility: implied speed against the vessel's DWT-bracket
// maximum, and corridor association along the straight-line path between endpoints.
package gapdetector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// velocityPlausibilityRatioThreshold is the ratio above which a gap is flagged
// impossible-speed: the vessel would have needed to exceed its class ceiling.
const velocityPlausibilityRatioThreshold = 1.1

// Detector walks vessel AIS tracks and persists AISGapEvents.
type Detector struct {
	store     store.Store
	detectors config.DetectorsConfig
	corridors []model.Corridor

	// BuildEnvelopes controls whether a MovementEnvelope is computed and persisted for
	// every emitted gap. Envelope construction is optional per spec.md §4.3; callers
	// that only need gap existence (e.g. a quick re-scan) can disable it.
	BuildEnvelopes bool
}

// New returns a Detector with envelope construction enabled. corridors should be
// loaded once per run via store.ListCorridors; passing them in keeps this type free
// of its own cache-refresh policy.
func New(s store.Store, detectors config.DetectorsConfig, corridors []model.Corridor) *Detector {
	return &Detector{store: s, detectors: detectors, corridors: corridors, BuildEnvelopes: true}
}

// Result tallies one run.
type Result struct {
	GapsCreated int
	Errors      []string
}

// DetectForVessel scans one vessel's AIS points in [from, to] and creates a gap event
// for every qualifying consecutive pair. It does not check for gap events already
// recorded: re-running over the same point set creates the same events again, so the
// caller scopes each call to points it has not yet processed.
func (d *Detector) DetectForVessel(ctx context.Context, vesselID string, from, to time.Time) (Result, error) {
	var res Result

	points, err := d.store.ListAISPoints(ctx, vesselID, from, to)
	if err != nil {
		return res, fmt.Errorf("gapdetector: list points: %w", err)
	}
	if len(points) < 2 {
		return res, nil
	}

	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return res, fmt.Errorf("gapdetector: get vessel: %w", err)
	}
	if v == nil {
		return res, fmt.Errorf("gapdetector: vessel %s not found", vesselID)
	}
	bracket := model.ClassifyDWT(v.Deadweight)
	speedCeiling := model.MaxSpeedKn(bracket)

	gapMin := time.Duration(d.detectors.GapMinHours * float64(time.Hour))
	if gapMin <= 0 {
		gapMin = 6 * time.Hour
	}

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		duration := cur.TimestampUTC.Sub(prev.TimestampUTC)
		if duration < gapMin {
			continue
		}

		gap := d.buildGap(v, prev, cur, duration, speedCeiling)
		if err := d.store.CreateGap(ctx, gap); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("vessel %s gap at %s: %v", vesselID, cur.TimestampUTC, err))
			continue
		}
		res.GapsCreated++

		if d.BuildEnvelopes {
			envelope := BuildEnvelope(gap.GapID, prev, cur, speedCeiling)
			if err := d.store.CreateEnvelope(ctx, &envelope); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("vessel %s envelope for gap %s: %v", vesselID, gap.GapID, err))
			}
		}
	}

	return res, nil
}

func (d *Detector) buildGap(v *model.Vessel, prev, cur model.AISPoint, duration time.Duration, speedCeiling float64) *model.AISGapEvent {
	hours := duration.Hours()
	maxPlausibleNM := speedCeiling * hours
	actualNM := geo.HaversineNM(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

	var ratio float64
	if maxPlausibleNM > 0 {
		ratio = actualNM / maxPlausibleNM
	}

	gap := &model.AISGapEvent{
		GapID:                     uuid.NewString(),
		VesselID:                  v.VesselID,
		OriginalVesselID:          v.VesselID,
		GapStartUTC:               prev.TimestampUTC,
		GapEndUTC:                 cur.TimestampUTC,
		DurationMinutes:           int(duration.Minutes()),
		RiskScore:                 0,
		Status:                    model.GapStatusNew,
		VelocityPlausibilityRatio: ratio,
		ImpossibleSpeedFlag:       ratio > velocityPlausibilityRatioThreshold,
		PreGapSOG:                 prev.SOG,
		Source:                    "local",
		CreatedAt:                 time.Now().UTC(),
	}

	if corridorID, ok := d.associateCorridor(prev.Lat, prev.Lon, cur.Lat, cur.Lon); ok {
		gap.CorridorID = &corridorID
	}

	return gap
}

// associateCorridor returns the first corridor whose bbox the gap's straight-line path
// intersects — segment-intersects-bbox semantics, not endpoint-in-bbox, so a transit
// through a corridor where neither endpoint lies inside is still associated.
func (d *Detector) associateCorridor(lat1, lon1, lat2, lon2 float64) (string, bool) {
	for _, c := range d.corridors {
		bbox, ok := geo.ParsePolygonBBox(c.WKT)
		if !ok {
			continue
		}
		if geo.SegmentIntersectsBBox(lat1, lon1, lat2, lon2, bbox) {
			return c.CorridorID, true
		}
	}
	return "", false
}
