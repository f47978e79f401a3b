package spoofing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/model"
)

// circleSpoofFallbackScore is used when risk_scoring.yaml has no points_by_type entry
// for CIRCLE_SPOOF — an addition this module makes to the spec's enumerated detector
// list (see DESIGN.md), so it has no spec-literal constant of its own.
const circleSpoofFallbackScore = 20

// DetectCircleSpoof looks for a tight position cluster held at low, steady speed while
// reported heading scatters widely — the signature of a GPS spoofing device replaying a
// near-fixed position with randomized course, rather than a vessel genuinely loitering.
func (d *Detector) DetectCircleSpoof(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyCircleSpoof)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	points, err := d.store.ListAISPoints(ctx, vesselID, time.Time{}, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("spoofing: circle_spoof list points: %w", err)
	}
	cfg := d.cfg.CircleSpoof
	if len(points) < cfg.MinPoints {
		return 0, nil
	}

	for start := 0; start+cfg.MinPoints <= len(points); start++ {
		window := points[start : start+cfg.MinPoints]
		if window[len(window)-1].TimestampUTC.Sub(window[0].TimestampUTC).Hours() < cfg.MinDurationHours {
			continue
		}
		if !isCircleSpoofPattern(window, cfg) {
			continue
		}

		score := circleSpoofFallbackScore
		if d.scoringCfg != nil {
			if pts, ok := d.scoringCfg.Spoofing.PointsByType[string(model.AnomalyCircleSpoof)]; ok {
				score = pts
			}
		}

		evidence := map[string]any{"point_count": len(window)}
		if err := d.create(ctx, vesselID, model.AnomalyCircleSpoof, window[0].TimestampUTC, window[len(window)-1].TimestampUTC, score, evidence); err != nil {
			return 0, fmt.Errorf("spoofing: circle_spoof create: %w", err)
		}
		return 1, nil
	}

	return 0, nil
}

func isCircleSpoofPattern(window []model.AISPoint, cfg config.CircleSpoofConfig) bool {
	minLat, maxLat := window[0].Lat, window[0].Lat
	minLon, maxLon := window[0].Lon, window[0].Lon
	var sogSum float64
	var sogN int
	cogs := make([]float64, 0, len(window))

	for _, p := range window {
		minLat, maxLat = math.Min(minLat, p.Lat), math.Max(maxLat, p.Lat)
		minLon, maxLon = math.Min(minLon, p.Lon), math.Max(maxLon, p.Lon)
		if p.SOG != nil {
			sogSum += *p.SOG
			sogN++
		}
		if p.COG != nil {
			cogs = append(cogs, *p.COG)
		}
	}

	if maxLat-minLat > cfg.MaxSpreadDeg || maxLon-minLon > cfg.MaxSpreadDeg {
		return false
	}
	if sogN == 0 || sogSum/float64(sogN) > cfg.MaxMeanSOGKn {
		return false
	}
	if len(cogs) < 2 || stdDev(cogs) < cfg.MinCOGStdDevDeg {
		return false
	}
	return true
}

func stdDev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(len(values)))
}
