package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
)

// DetectMMSIReuse flags consecutive AIS points of one vessel, no more than
// MMSIReuseWindowHours apart, whose implied speed exceeds 50kn — a strong signal that
// the MMSI was briefly reused by a physically different ship rather than a single vessel
// transiting abnormally fast. This runs independently of the gap detector: a reused-MMSI
// jump is often well under GAP_MIN_HOURS apart and would never surface as a silence gap.
func (d *Detector) DetectMMSIReuse(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyMMSIReuse)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	window := time.Duration(d.cfg.MMSIReuseWindowHours * float64(time.Hour))
	points, err := d.store.ListAISPoints(ctx, vesselID, time.Time{}, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("spoofing: mmsi_reuse list points: %w", err)
	}

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		duration := cur.TimestampUTC.Sub(prev.TimestampUTC)
		if duration <= 0 || duration > window {
			continue
		}

		distanceNM := geo.HaversineNM(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		impliedSpeed := distanceNM / duration.Hours()
		if impliedSpeed <= 50 {
			continue
		}

		score := mmsiReuseScore(impliedSpeed)
		evidence := map[string]any{
			"implied_speed_kn": impliedSpeed,
			"prev_timestamp":   prev.TimestampUTC,
			"cur_timestamp":    cur.TimestampUTC,
			"distance_nm":      distanceNM,
		}
		if err := d.create(ctx, vesselID, model.AnomalyMMSIReuse, prev.TimestampUTC, cur.TimestampUTC, score, evidence); err != nil {
			return 0, fmt.Errorf("spoofing: mmsi_reuse create: %w", err)
		}
		return 1, nil
	}

	return 0, nil
}

// mmsiReuseScore bands the implied speed per spec: >=100kn=55, >=30kn=40, else 25. The
// else branch is unreachable from this detector alone — DetectMMSIReuse only calls this
// once impliedSpeed already exceeds the 50kn gate, which is itself above the 30kn
// threshold — but is kept for literal fidelity to the documented score table.
func mmsiReuseScore(impliedSpeedKn float64) int {
	switch {
	case impliedSpeedKn >= 100:
		return 55
	case impliedSpeedKn >= 30:
		return 40
	default:
		return 25
	}
}
