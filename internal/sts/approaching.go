package sts

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// detectApproaching flags two vessels whose latest tracked positions are on a closing
// course and whose time-to-close at current speed is under approachingConvergenceHours,
// ahead of them ever actually falling inside the proximity threshold.
func (d *Detector) detectApproaching(ctx context.Context, t1, t2 vesselTrack) (int, error) {
	p1 := t1.points[len(t1.points)-1]
	p2 := t2.points[len(t2.points)-1]

	if p1.SOG == nil || p2.SOG == nil || p1.COG == nil || p2.COG == nil {
		return 0, nil
	}

	distM := geo.HaversineM(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	if distM <= d.proximityMeters() {
		return 0, nil
	}

	closingSpeedKn := closingSpeed(p1.Lat, p1.Lon, *p1.SOG, *p1.COG, p2.Lat, p2.Lon, *p2.SOG, *p2.COG)
	if closingSpeedKn <= 0 {
		return 0, nil
	}

	distNM := distM / 1852
	etaHours := distNM / closingSpeedKn
	if etaHours > approachingConvergenceHours {
		return 0, nil
	}

	start := maxTime(p1.TimestampUTC, p2.TimestampUTC)
	exists, err := d.overlappingEventExists(ctx, t1.vessel.VesselID, t2.vessel.VesselID, start, start)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	eta := start.Add(time.Duration(etaHours * float64(time.Hour)))
	e := &model.StsTransferEvent{
		StsID:              uuid.NewString(),
		Vessel1ID:          t1.vessel.VesselID,
		Vessel2ID:          t2.vessel.VesselID,
		DetectionType:      model.StsApproaching,
		StartUTC:           start,
		EndUTC:             start,
		MeanProximityM:     distM,
		MeanLat:            (p1.Lat + p2.Lat) / 2,
		MeanLon:            (p1.Lon + p2.Lon) / 2,
		ETA:                &eta,
		RiskScoreComponent: scoreApproaching,
	}
	if corridorID, ok := d.associateCorridor(e.MeanLat, e.MeanLon); ok {
		e.CorridorID = &corridorID
	}

	if err := d.store.CreateSTSEvent(ctx, e); err != nil {
		return 0, fmt.Errorf("sts: create approaching event: %w", err)
	}
	return 1, nil
}

// closingSpeed projects each vessel's velocity onto the bearing line between them and
// returns the combined rate of closure in knots; negative or zero means they are not
// converging.
func closingSpeed(lat1, lon1, sog1, cog1, lat2, lon2, sog2, cog2 float64) float64 {
	bearing12 := geo.Bearing(lat1, lon1, lat2, lon2)
	bearing21 := geo.Bearing(lat2, lon2, lat1, lon1)

	approach1 := sog1 * cosDeg(cog1-bearing12)
	approach2 := sog2 * cosDeg(cog2-bearing21)
	return approach1 + approach2
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}
