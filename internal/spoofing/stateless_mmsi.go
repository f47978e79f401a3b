package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/ingest"
	"github.com/radiancefleet/core/internal/model"
)

// DetectStatelessMMSI classifies a vessel's MID against the ITU allocation table: an
// unallocated MID, a landlocked flag declared on a tanker, or a micro-territory flag
// each evidence a fabricated or borrowed identity. Reuses internal/ingest's MID
// classification so the ingest-time tier and this detector's tier can never disagree.
func (d *Detector) DetectStatelessMMSI(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyStatelessMMSI)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	v, err := d.store.GetVessel(ctx, vesselID)
	if err != nil {
		return 0, fmt.Errorf("spoofing: stateless_mmsi get vessel: %w", err)
	}
	if v == nil {
		return 0, nil
	}

	tier := ingest.ClassifyMID(v.MMSI, v.VesselType)
	score, ok := statelessMMSIScore(tier)
	if !ok {
		return 0, nil
	}

	now := time.Now().UTC()
	evidence := map[string]any{"mmsi": v.MMSI, "tier": int(tier), "vessel_type": v.VesselType}
	if err := d.create(ctx, vesselID, model.AnomalyStatelessMMSI, now, now, score, evidence); err != nil {
		return 0, fmt.Errorf("spoofing: stateless_mmsi create: %w", err)
	}
	return 1, nil
}

func statelessMMSIScore(tier ingest.MIDTier) (int, bool) {
	switch tier {
	case ingest.MIDTierUnallocated:
		return 35, true
	case ingest.MIDTierLandlockedTanker:
		return 20, true
	case ingest.MIDTierMicroTerritory:
		return 10, true
	default:
		return 0, false
	}
}
