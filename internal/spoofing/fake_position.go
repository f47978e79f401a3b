package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// DetectFakePosition flags a consecutive AISPoint pair implying a speed the vessel
// cannot plausibly have made: more than FakePositionMinSpeedKn over more than
// FakePositionMinNM and more than FakePositionMinSeconds — ruling out the GPS-jitter
// false positives a pure speed threshold alone would catch.
func (d *Detector) DetectFakePosition(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyFakePortCall)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	points, err := d.store.ListAISPoints(ctx, vesselID, time.Time{}, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("spoofing: fake_position list points: %w", err)
	}

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		duration := cur.TimestampUTC.Sub(prev.TimestampUTC)
		if duration.Seconds() <= d.cfg.FakePositionMinSeconds {
			continue
		}
		distanceNM := geo.HaversineNM(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		if distanceNM <= d.cfg.FakePositionMinNM {
			continue
		}
		impliedSpeed := distanceNM / duration.Hours()
		if impliedSpeed <= d.cfg.FakePositionMinSpeedKn {
			continue
		}

		evidence := map[string]any{
			"implied_speed_kn": impliedSpeed,
			"distance_nm":      distanceNM,
			"duration_seconds": duration.Seconds(),
		}
		if err := d.create(ctx, vesselID, model.AnomalyFakePortCall, prev.TimestampUTC, cur.TimestampUTC, 40, evidence); err != nil {
			return 0, fmt.Errorf("spoofing: fake_position create: %w", err)
		}
		return 1, nil
	}

	return 0, nil
}
