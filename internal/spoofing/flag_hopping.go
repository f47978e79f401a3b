package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

const (
	flagHoppingWindow90d  = 90 * 24 * time.Hour
	flagHoppingWindow365d = 365 * 24 * time.Hour
)

// DetectFlagHopping counts flag changes in VesselHistory over 90d and 365d windows,
// bands the base score, halves it when a flag change coincides with an ownership
// handoff (benign), and doubles/halves it per the vessel's current flag-risk category.
// A flag change that overlaps an AIS gap additionally emits a DARK_PERIOD_FLAG_CHANGE
// sub-anomaly.
func (d *Detector) DetectFlagHopping(ctx context.Context, vesselID string) (int, error) {
	history, err := d.store.ListVesselHistory(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: flag_hopping list history: %w", err)
	}

	now := time.Now().UTC()
	var flagChanges, ownerChanges []model.VesselHistory
	for _, h := range history {
		switch h.FieldChanged {
		case "flag":
			flagChanges = append(flagChanges, h)
		case "owner":
			ownerChanges = append(ownerChanges, h)
		}
	}

	count90d := countSince(flagChanges, now.Add(-flagHoppingWindow90d))
	count365d := countSince(flagChanges, now.Add(-flagHoppingWindow365d))

	base, fired := flagHoppingBaseScore(count90d, count365d)

	created := 0
	if fired {
		active, err := d.alreadyActive(ctx, vesselID, model.AnomalyFlagHopping)
		if err != nil {
			return 0, err
		}
		if !active {
			score := base
			handoff := anyWithinDays(flagChanges, ownerChanges, d.cfg.FlagHoppingOwnerChangeWindowDays)
			if handoff {
				score = score / 2
			}

			v, err := d.store.GetVessel(ctx, vesselID)
			if err != nil {
				return 0, fmt.Errorf("spoofing: flag_hopping get vessel: %w", err)
			}
			if v != nil {
				switch v.FlagRiskCategory {
				case model.FlagRiskHigh:
					score *= 2
				case model.FlagRiskLow:
					score /= 2
				}
			}

			evidence := map[string]any{
				"flag_changes_90d":  count90d,
				"flag_changes_365d": count365d,
				"ownership_handoff": handoff,
			}
			oldest := flagChanges[0].ChangedAt
			newest := flagChanges[len(flagChanges)-1].ChangedAt
			if err := d.create(ctx, vesselID, model.AnomalyFlagHopping, oldest, newest, score, evidence); err != nil {
				return 0, fmt.Errorf("spoofing: flag_hopping create: %w", err)
			}
			created++
		}
	}

	n, err := d.detectDarkPeriodFlagChange(ctx, vesselID, flagChanges)
	if err != nil {
		return created, err
	}
	return created + n, nil
}

func flagHoppingBaseScore(count90d, count365d int) (int, bool) {
	switch {
	case count365d >= 5:
		return 50, true
	case count90d >= 3:
		return 40, true
	case count90d >= 2:
		return 20, true
	default:
		return 0, false
	}
}

func countSince(history []model.VesselHistory, since time.Time) int {
	n := 0
	for _, h := range history {
		if h.ChangedAt.After(since) {
			n++
		}
	}
	return n
}

func anyWithinDays(flagChanges, ownerChanges []model.VesselHistory, days int) bool {
	window := time.Duration(days) * 24 * time.Hour
	for _, f := range flagChanges {
		for _, o := range ownerChanges {
			delta := f.ChangedAt.Sub(o.ChangedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta <= window {
				return true
			}
		}
	}
	return false
}

// detectDarkPeriodFlagChange emits a dark_period_flag_change sub-anomaly for a flag
// change that falls within FlagHoppingGapOverlapHours of an AIS gap's [start,end] window.
func (d *Detector) detectDarkPeriodFlagChange(ctx context.Context, vesselID string, flagChanges []model.VesselHistory) (int, error) {
	if len(flagChanges) == 0 {
		return 0, nil
	}
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyDarkPeriodFlagChange)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	gaps, err := d.store.ListGapsByVessel(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: dark_period_flag_change list gaps: %w", err)
	}
	overlap := time.Duration(d.cfg.FlagHoppingGapOverlapHours * float64(time.Hour))

	for _, fc := range flagChanges {
		for _, g := range gaps {
			if fc.ChangedAt.After(g.GapStartUTC.Add(-overlap)) && fc.ChangedAt.Before(g.GapEndUTC.Add(overlap)) {
				evidence := map[string]any{"flag_changed_at": fc.ChangedAt, "gap_id": g.GapID}
				if err := d.create(ctx, vesselID, model.AnomalyDarkPeriodFlagChange, fc.ChangedAt, fc.ChangedAt, 20, evidence); err != nil {
					return 0, fmt.Errorf("spoofing: dark_period_flag_change create: %w", err)
				}
				return 1, nil
			}
		}
	}
	return 0, nil
}
