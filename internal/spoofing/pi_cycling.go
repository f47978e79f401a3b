package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// DetectPICycling counts P&I club changes in the configured lookback window and adds a
// bonus when the vessel's current club is outside the International Group pool.
func (d *Detector) DetectPICycling(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyPICycling)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	history, err := d.store.ListVesselHistory(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: pi_cycling list history: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -d.cfg.PICyclingWindowDays)
	var changes []model.VesselHistory
	for _, h := range history {
		if h.FieldChanged == "pi_club" && h.ChangedAt.After(cutoff) {
			changes = append(changes, h)
		}
	}
	if len(changes) < 2 {
		return 0, nil
	}

	score := 20

	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: pi_cycling get vessel: %w", err)
	}
	nonIG := v != nil && v.PIClub != "" && !isIGClub(v.PIClub, d.cfg.IGPIClubs)
	if nonIG {
		score += 30
	}

	evidence := map[string]any{
		"changes_in_window": len(changes),
		"current_club":      v.PIClub,
		"non_ig":            nonIG,
	}
	if err := d.create(ctx, vesselID, model.AnomalyPICycling, changes[0].ChangedAt, changes[len(changes)-1].ChangedAt, score, evidence); err != nil {
		return 0, fmt.Errorf("spoofing: pi_cycling create: %w", err)
	}
	return 1, nil
}

func isIGClub(club string, igClubs []string) bool {
	for _, c := range igClubs {
		if c == club {
			return true
		}
	}
	return false
}
