package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// historyDedupWindow is how long an identical (field, old, new) VesselHistory change is
// suppressed: a flapping AIS class or name field re-reporting the same transition every
// few minutes should not produce a row per broadcast.
const historyDedupWindow = 24 * time.Hour

// classSOGLimit gives the per-DWT-bracket warning threshold used for data-quality SOG
// warnings (never rejections): VLCC <= 18, Suezmax <= 19, Aframax/Panamax <= 20.
func classSOGLimit(bracket model.DWTBracket) (float64, bool) {
	switch bracket {
	case model.DWTBracketVLCC:
		return 18, true
	case model.DWTBracketSuezmax:
		return 19, true
	case model.DWTBracketAframax:
		return 20, true
	default:
		return 0, false
	}
}

// UpsertVessel finds or creates the canonical Vessel for an MMSI, deriving its flag
// from the MID table on first sight, and records any identity-field drift as
// VesselHistory (deduplicated within historyDedupWindow).
func UpsertVessel(ctx context.Context, s store.VesselStore, mmsi string, observed Validated) (*model.Vessel, []string, error) {
	var warnings []string

	v, err := s.GetVesselByMMSI(ctx, mmsi)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: lookup vessel by mmsi: %w", err)
	}

	if v == nil {
		flag, _ := DeriveFlag(mmsi)
		if observed.Flag != "" {
			flag = observed.Flag
		}
		now := time.Now().UTC()
		v = &model.Vessel{
			VesselID:         uuid.NewString(),
			MMSI:             mmsi,
			Name:             observed.Name,
			Flag:             flag,
			VesselType:       observed.VesselType,
			AISClass:         model.AISClassUnknown,
			FlagRiskCategory: model.FlagRiskUnknown,
			PICoverageStatus: model.PICoverageUnknown,
			MMSIFirstSeenUTC: now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if observed.IMO != "" {
			v.IMO = &observed.IMO
		}
		if err := s.CreateVessel(ctx, v); err != nil {
			return nil, nil, fmt.Errorf("ingest: create vessel: %w", err)
		}
		return v, warnings, nil
	}

	changed := false
	if observed.Name != "" && observed.Name != v.Name {
		if err := recordHistory(ctx, s, v.VesselID, "name", v.Name, observed.Name); err != nil {
			return nil, nil, err
		}
		v.Name = observed.Name
		changed = true
	}
	if observed.Flag != "" && observed.Flag != v.Flag {
		if err := recordHistory(ctx, s, v.VesselID, "flag", v.Flag, observed.Flag); err != nil {
			return nil, nil, err
		}
		v.Flag = observed.Flag
		changed = true
	}
	if observed.VesselType != "" && observed.VesselType != v.VesselType {
		if err := recordHistory(ctx, s, v.VesselID, "vessel_type", v.VesselType, observed.VesselType); err != nil {
			return nil, nil, err
		}
		v.VesselType = observed.VesselType
		changed = true
	}

	if changed {
		v.UpdatedAt = time.Now().UTC()
		if err := s.UpdateVessel(ctx, v); err != nil {
			return nil, nil, fmt.Errorf("ingest: update vessel: %w", err)
		}
	}

	if limit, ok := classSOGLimit(model.ClassifyDWT(v.Deadweight)); ok && observed.SOG != nil && *observed.SOG > limit {
		warnings = append(warnings, fmt.Sprintf("sog %.1f exceeds %s class limit of %.0f kn", *observed.SOG, model.ClassifyDWT(v.Deadweight), limit))
	}

	return v, warnings, nil
}

// recordHistory appends a VesselHistory row unless an identical (field, old, new)
// change was already recorded within historyDedupWindow.
func recordHistory(ctx context.Context, s store.VesselStore, vesselID, field, oldVal, newVal string) error {
	existing, err := s.ListVesselHistory(ctx, vesselID)
	if err != nil {
		return fmt.Errorf("ingest: list vessel history: %w", err)
	}
	cutoff := time.Now().UTC().Add(-historyDedupWindow)
	for _, h := range existing {
		if h.FieldChanged == field && h.OldValue == oldVal && h.NewValue == newVal && h.ChangedAt.After(cutoff) {
			return nil
		}
	}
	return s.AddVesselHistory(ctx, &model.VesselHistory{
		HistoryID:    uuid.NewString(),
		VesselID:     vesselID,
		FieldChanged: field,
		OldValue:     oldVal,
		NewValue:     newVal,
		ChangedAt:    time.Now().UTC(),
	})
}
