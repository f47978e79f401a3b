package spoofing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// DetectIMOFraud checks two independent IMO-fraud patterns against the rest of the
// fleet: simultaneous use of one checksum-valid IMO by two vessels moving far apart
// within the same window, and a one-digit-off IMO shared with a vessel already carrying
// other risk indicators.
func (d *Detector) DetectIMOFraud(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyIMOFraud)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: imo_fraud get vessel: %w", err)
	}
	if v == nil || v.IMO == nil || !validIMO(*v.IMO) {
		return 0, nil
	}

	others, err := d.store.ListVessels(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("spoofing: imo_fraud list vessels: %w", err)
	}

	if created, err := d.imoFraudSimultaneous(ctx, v, others); created || err != nil {
		return boolToInt(created), err
	}
	if created, err := d.imoFraudNearMiss(ctx, v, others); created || err != nil {
		return boolToInt(created), err
	}
	return 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d *Detector) imoFraudSimultaneous(ctx context.Context, v *model.Vessel, others []model.Vessel) (bool, error) {
	window := time.Duration(d.cfg.IMOFraudWindowHours * float64(time.Hour))
	now := time.Now().UTC()

	myPoints, err := d.store.ListAISPoints(ctx, v.VesselID, now.Add(-window), now)
	if err != nil {
		return false, fmt.Errorf("spoofing: imo_fraud list points: %w", err)
	}
	if len(myPoints) == 0 {
		return false, nil
	}
	myLast := myPoints[len(myPoints)-1]

	for _, other := range others {
		if other.VesselID == v.VesselID || other.IMO == nil || *other.IMO != *v.IMO {
			continue
		}
		theirPoints, err := d.store.ListAISPoints(ctx, other.VesselID, now.Add(-window), now)
		if err != nil {
			return false, fmt.Errorf("spoofing: imo_fraud list points: %w", err)
		}
		if len(theirPoints) == 0 {
			continue
		}
		theirLast := theirPoints[len(theirPoints)-1]

		distanceNM := geo.HaversineNM(myLast.Lat, myLast.Lon, theirLast.Lat, theirLast.Lon)
		if distanceNM <= d.cfg.IMOFraudMinDistanceNM {
			continue
		}

		evidence := map[string]any{
			"imo":            *v.IMO,
			"other_vessel_id": other.VesselID,
			"distance_nm":     distanceNM,
			"pattern":         "simultaneous",
		}
		if err := d.create(ctx, v.VesselID, model.AnomalyIMOFraud, myLast.TimestampUTC, myLast.TimestampUTC, 45, evidence); err != nil {
			return false, fmt.Errorf("spoofing: imo_fraud create: %w", err)
		}
		return true, nil
	}
	return false, nil
}

func (d *Detector) imoFraudNearMiss(ctx context.Context, v *model.Vessel, others []model.Vessel) (bool, error) {
	lookback := 90 * 24 * time.Hour
	since := time.Now().UTC().Add(-lookback)

	for _, other := range others {
		if other.VesselID == v.VesselID || other.IMO == nil || !validIMO(*other.IMO) {
			continue
		}
		if !oneDigitApart(*v.IMO, *other.IMO) {
			continue
		}

		anomalies, err := d.store.ListAnomaliesByVesselWindow(ctx, other.VesselID, since, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("spoofing: imo_fraud list anomalies: %w", err)
		}
		watchlist, err := d.store.ListActiveWatchlist(ctx, other.VesselID)
		if err != nil {
			return false, fmt.Errorf("spoofing: imo_fraud list watchlist: %w", err)
		}
		if len(anomalies) == 0 && len(watchlist) == 0 {
			continue
		}

		indicators := 0
		if v.VesselType == other.VesselType {
			indicators++
		}
		if v.Deadweight != nil && other.Deadweight != nil && dwtWithinTolerance(*v.Deadweight, *other.Deadweight, d.cfg.IMOFraudDWTTolerancePct) {
			indicators++
		}
		if len(anomalies) > 0 || len(watchlist) > 0 {
			indicators++
		}
		if indicators < 2 {
			continue
		}

		now := time.Now().UTC()
		evidence := map[string]any{
			"imo":             *v.IMO,
			"other_imo":       *other.IMO,
			"other_vessel_id": other.VesselID,
			"pattern":         "near_miss",
			"indicators":      indicators,
		}
		if err := d.create(ctx, v.VesselID, model.AnomalyIMOFraud, now, now, 20, evidence); err != nil {
			return false, fmt.Errorf("spoofing: imo_fraud create: %w", err)
		}
		return true, nil
	}
	return false, nil
}

func dwtWithinTolerance(a, b int, pct float64) bool {
	if a == 0 || b == 0 {
		return false
	}
	ratio := math.Abs(float64(a-b)) / float64(a)
	return ratio <= pct
}
