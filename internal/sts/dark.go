package sts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// detectDarkVesselMatches pairs unmatched non-AIS sightings against visible tracks
// (VISIBLE_DARK) and against each other (DARK_DARK), within darkVesselMatchWindow and
// the configured proximity threshold. A match links the DarkVesselDetection to the
// StsTransferEvent it produced so it is not re-offered on the next run.
func (d *Detector) detectDarkVesselMatches(ctx context.Context, tracks []vesselTrack, from, to time.Time) (int, error) {
	darks, err := d.store.ListUnmatchedDarkVesselDetections(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("sts: list unmatched dark vessels: %w", err)
	}
	if len(darks) == 0 {
		return 0, nil
	}

	proximity := d.proximityMeters()
	created := 0
	matched := make(map[int]bool)

	for i := range darks {
		dark := &darks[i]
		for _, t := range tracks {
			pt, ok := nearestInWindow(t.points, dark.ObservedAt, darkVesselMatchWindow)
			if !ok {
				continue
			}
			if geo.HaversineM(pt.Lat, pt.Lon, dark.Lat, dark.Lon) > proximity {
				continue
			}

			stsID := uuid.NewString()
			e := &model.StsTransferEvent{
				StsID:              stsID,
				Vessel1ID:          t.vessel.VesselID,
				Vessel2ID:          "",
				DetectionType:      model.StsVisibleDark,
				StartUTC:           dark.ObservedAt,
				EndUTC:             dark.ObservedAt,
				MeanProximityM:     geo.HaversineM(pt.Lat, pt.Lon, dark.Lat, dark.Lon),
				MeanLat:            (pt.Lat + dark.Lat) / 2,
				MeanLon:            (pt.Lon + dark.Lon) / 2,
				RiskScoreComponent: scoreVisibleDark,
			}
			if err := d.store.CreateSTSEvent(ctx, e); err != nil {
				return created, fmt.Errorf("sts: create visible_dark event: %w", err)
			}
			dark.LinkedVesselID = &t.vessel.VesselID
			dark.LinkedStsID = &stsID
			if err := d.store.UpdateDarkVesselDetection(ctx, dark); err != nil {
				return created, fmt.Errorf("sts: link dark vessel detection: %w", err)
			}
			created++
			matched[i] = true
			break
		}
	}

	for i := range darks {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(darks); j++ {
			if matched[j] {
				continue
			}
			a, b := &darks[i], &darks[j]
			if absDuration(a.ObservedAt.Sub(b.ObservedAt)) > darkVesselMatchWindow {
				continue
			}
			if geo.HaversineM(a.Lat, a.Lon, b.Lat, b.Lon) > proximity {
				continue
			}

			stsID := uuid.NewString()
			e := &model.StsTransferEvent{
				StsID:              stsID,
				Vessel1ID:          "",
				Vessel2ID:          "",
				DetectionType:      model.StsDarkDark,
				StartUTC:           minTime(a.ObservedAt, b.ObservedAt),
				EndUTC:             maxTime(a.ObservedAt, b.ObservedAt),
				MeanProximityM:     geo.HaversineM(a.Lat, a.Lon, b.Lat, b.Lon),
				MeanLat:            (a.Lat + b.Lat) / 2,
				MeanLon:            (a.Lon + b.Lon) / 2,
				RiskScoreComponent: scoreDarkDark,
			}
			if err := d.store.CreateSTSEvent(ctx, e); err != nil {
				return created, fmt.Errorf("sts: create dark_dark event: %w", err)
			}
			a.LinkedStsID, b.LinkedStsID = &stsID, &stsID
			if err := d.store.UpdateDarkVesselDetection(ctx, a); err != nil {
				return created, fmt.Errorf("sts: link dark vessel detection: %w", err)
			}
			if err := d.store.UpdateDarkVesselDetection(ctx, b); err != nil {
				return created, fmt.Errorf("sts: link dark vessel detection: %w", err)
			}
			created++
			matched[i], matched[j] = true, true
			break
		}
	}

	return created, nil
}

// nearestInWindow returns the track point closest in time to at, provided the gap is
// within window.
func nearestInWindow(points []model.AISPoint, at time.Time, window time.Duration) (model.AISPoint, bool) {
	var best model.AISPoint
	bestDelta := window + 1
	found := false
	for _, p := range points {
		delta := absDuration(p.TimestampUTC.Sub(at))
		if delta > window {
			continue
		}
		if !found || delta < bestDelta {
			best, bestDelta, found = p, delta, true
		}
	}
	return best, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
