package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// DetectSparseTransmission restricts the vessel's most recent window to underway points
// (SOG above the configured threshold) and flags a broadcast rate that is too low to be
// plausible transponder behavior while moving.
func (d *Detector) DetectSparseTransmission(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalySparseTransmission)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	window := time.Duration(d.cfg.SparseTransmissionWindowHours * float64(time.Hour))
	now := time.Now().UTC()
	points, err := d.store.ListAISPoints(ctx, vesselID, now.Add(-window), now)
	if err != nil {
		return 0, fmt.Errorf("spoofing: sparse_transmission list points: %w", err)
	}

	var underway []model.AISPoint
	for _, p := range points {
		if p.SOG != nil && *p.SOG > d.cfg.SparseTransmissionUnderwaySOGKn {
			underway = append(underway, p)
		}
	}
	if len(underway) < 2 {
		return 0, nil
	}

	underwayHours := underway[len(underway)-1].TimestampUTC.Sub(underway[0].TimestampUTC).Hours()
	if underwayHours <= 0 {
		return 0, nil
	}
	pointsPerHour := float64(len(underway)) / underwayHours

	score := 0
	switch {
	case underwayHours >= d.cfg.SparseTransmissionMinUnderwayHours && pointsPerHour < d.cfg.SparseTransmissionSevereMaxPerHour:
		score = 25
	case underwayHours >= d.cfg.SparseTransmissionMinUnderwayHours && pointsPerHour <= d.cfg.SparseTransmissionModerateMaxPerHour:
		score = 15
	default:
		return 0, nil
	}

	evidence := map[string]any{
		"underway_hours":   underwayHours,
		"underway_points":  len(underway),
		"points_per_hour":  pointsPerHour,
	}
	if err := d.create(ctx, vesselID, model.AnomalySparseTransmission, underway[0].TimestampUTC, underway[len(underway)-1].TimestampUTC, score, evidence); err != nil {
		return 0, fmt.Errorf("spoofing: sparse_transmission create: %w", err)
	}
	return 1, nil
}
