package spoofing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// DetectTypeDWTMismatch flags a large vessel (DWT above the configured floor) declared
// under a non-commercial AIS type — a common way to depress scrutiny on a cargo-carrying
// hull — with an additional contribution when the type itself changed recently.
func (d *Detector) DetectTypeDWTMismatch(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyTypeDWTMismatch)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: type_dwt_mismatch get vessel: %w", err)
	}
	if v == nil || v.Deadweight == nil || *v.Deadweight <= d.cfg.TypeDWTMismatchMinDWT {
		return 0, nil
	}
	if !isNonCommercialType(v.VesselType, d.cfg.NonCommercialVesselTypes) {
		return 0, nil
	}

	score := 25
	recentTypeChange := false

	history, err := d.store.ListVesselHistory(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: type_dwt_mismatch list history: %w", err)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -d.cfg.TypeDWTMismatchChangeWindowDays)
	for _, h := range history {
		if h.FieldChanged == "vessel_type" && h.ChangedAt.After(cutoff) {
			recentTypeChange = true
			score += 15
			break
		}
	}

	evidence := map[string]any{
		"vessel_type":         v.VesselType,
		"deadweight":          *v.Deadweight,
		"recent_type_change":  recentTypeChange,
	}
	now := time.Now().UTC()
	if err := d.create(ctx, vesselID, model.AnomalyTypeDWTMismatch, now, now, score, evidence); err != nil {
		return 0, fmt.Errorf("spoofing: type_dwt_mismatch create: %w", err)
	}
	return 1, nil
}

func isNonCommercialType(vesselType string, nonCommercial []string) bool {
	lower := strings.ToLower(vesselType)
	for _, t := range nonCommercial {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
