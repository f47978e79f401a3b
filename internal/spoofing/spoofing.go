// Package spoofing implements the identity-fraud detector suite: ten independent
// analyzers (the nine spec.md §4.4 names plus the CIRCLE_SPOOF addition) that each take
// a read-only view of one vessel's history and evidence a distinct spoofing pattern as a
// SpoofingAnomaly. Every detector is idempotent per
// (vessel, anomaly_type): it checks for an already-active anomaly of its kind before
// writing a new one, per spec.md §4.4.
package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/scoring"
	"github.com/radiancefleet/core/internal/store"
)

// Detector runs the full spoofing/identity suite against one vessel at a time.
type Detector struct {
	store      store.Store
	cfg        config.SpoofingDetectorsConfig
	scoringCfg *scoring.Config
}

// New returns a Detector configured with the structural thresholds and classification
// lists spec.md §4.4 calls out as analyst-maintained (YAML-configured). scoringCfg may
// be nil; only CIRCLE_SPOOF reads it (its contribution is a configured weight rather
// than a literal constant, since it is an addition this module makes to the suite the
// distilled spec enumerates).
func New(s store.Store, cfg config.SpoofingDetectorsConfig, scoringCfg *scoring.Config) *Detector {
	return &Detector{store: s, cfg: cfg, scoringCfg: scoringCfg}
}

// Result tallies one suite run across all ten detectors.
type Result struct {
	AnomaliesCreated int
	Errors           []string
}

// DetectAll runs every detector for one vessel and returns the combined tally. A
// failure in one detector does not prevent the others from running.
func (d *Detector) DetectAll(ctx context.Context, vesselID string) (Result, error) {
	var res Result

	runners := []func(context.Context, string) (int, error){
		d.DetectMMSIReuse,
		d.DetectStatelessMMSI,
		d.DetectFlagHopping,
		d.DetectIMOFraud,
		d.DetectFakePosition,
		d.DetectSparseTransmission,
		d.DetectTypeDWTMismatch,
		d.DetectPICycling,
		d.DetectRouteLaundering,
		d.DetectCircleSpoof,
	}

	for _, run := range runners {
		n, err := run(ctx, vesselID)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.AnomaliesCreated += n
	}

	return res, nil
}

// alreadyActive reports whether vesselID already carries an active anomaly of the given
// type — the idempotency guard every detector must check before writing a new one.
func (d *Detector) alreadyActive(ctx context.Context, vesselID string, anomalyType model.SpoofingAnomalyType) (bool, error) {
	active, err := d.store.ListActiveAnomaliesByVessel(ctx, vesselID, anomalyType)
	if err != nil {
		return false, fmt.Errorf("spoofing: check active %s: %w", anomalyType, err)
	}
	return len(active) > 0, nil
}

// create persists a new anomaly, stamping the fields common to every detector.
func (d *Detector) create(ctx context.Context, vesselID string, anomalyType model.SpoofingAnomalyType, start, end time.Time, score int, evidence map[string]any) error {
	a := &model.SpoofingAnomaly{
		AnomalyID:          uuid.NewString(),
		VesselID:           vesselID,
		AnomalyType:        anomalyType,
		StartUTC:           start,
		EndUTC:             end,
		EvidenceJSON:       evidence,
		PlausibilityScore:  1.0,
		RiskScoreComponent: score,
		IsActive:           true,
	}
	return d.store.CreateSpoofingAnomaly(ctx, a)
}
