// Package ingest normalizes, validates, and persists raw AIS broadcast rows: column
// alias folding, row-validation (spec's REJECT_INVALID taxonomy), MID-derived flag
// assignment on vessel creation, VesselHistory diffing, and AISPoint dedupe by
// source-quality ranking (the actual dedupe/replace decision lives in the store layer;
// this package is the caller that decides what to upsert).
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/audit"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Result tallies one ingest run's outcome, mirroring the teacher's per-step Counts
// convention used in orchestrator StepResults.
type Result struct {
	Accepted        int
	Rejected        int
	PointsInserted  int
	PointsReplaced  int
	PointsIgnored   int
	Warnings        []string
	RejectedReasons []string
}

// Ingester validates and persists rows against a Store.
type Ingester struct {
	store store.Store
	audit *audit.Logger
}

// New returns an Ingester backed by the given store. audit may be nil.
func New(s store.Store, a *audit.Logger) *Ingester {
	return &Ingester{store: s, audit: a}
}

// IngestRows validates each row, upserts its vessel, and writes a deduplicated
// AISPoint. A single row failing validation never aborts the batch: it is counted as
// Rejected and the run continues, per spec's "detectors never propagate out of
// per-vessel loops" error-handling design.
func (ig *Ingester) IngestRows(ctx context.Context, rows []Raw) (Result, error) {
	var res Result
	now := time.Now().UTC()

	for _, raw := range rows {
		validated, err := Validate(raw, now)
		if err != nil {
			res.Rejected++
			res.RejectedReasons = append(res.RejectedReasons, err.Error())
			continue
		}

		v, warnings, err := UpsertVessel(ctx, ig.store, validated.MMSI, *validated)
		if err != nil {
			res.Rejected++
			res.RejectedReasons = append(res.RejectedReasons, err.Error())
			continue
		}
		res.Warnings = append(res.Warnings, warnings...)

		point := &model.AISPoint{
			VesselID:        v.VesselID,
			TimestampUTC:    validated.Timestamp,
			Lat:             validated.Lat,
			Lon:             validated.Lon,
			SOG:             validated.SOG,
			COG:             validated.COG,
			Heading:         validated.Heading,
			NavStatus:       validated.NavStatus,
			Source:          validated.Source,
			SuspiciousSOG:   validated.SuspiciousSOG,
			AnchoredHighSOG: validated.AnchoredHighSOG,
		}

		existingBefore, err := ig.store.ListAISPoints(ctx, v.VesselID, validated.Timestamp, validated.Timestamp)
		if err != nil {
			res.Rejected++
			res.RejectedReasons = append(res.RejectedReasons, fmt.Errorf("ingest: check existing point: %w", err).Error())
			continue
		}

		inserted, err := ig.store.UpsertAISPoint(ctx, point)
		if err != nil {
			res.Rejected++
			res.RejectedReasons = append(res.RejectedReasons, fmt.Errorf("ingest: upsert ais point: %w", err).Error())
			continue
		}

		switch {
		case !inserted:
			res.PointsIgnored++
		case len(existingBefore) > 0:
			res.PointsReplaced++
		default:
			res.PointsInserted++
		}

		res.Accepted++
	}

	if ig.audit != nil {
		ig.audit.Log("system:ingest", "batch_ingested", "ais_point_batch", uuid.NewString(), map[string]any{
			"accepted":        res.Accepted,
			"rejected":        res.Rejected,
			"points_inserted": res.PointsInserted,
			"points_replaced": res.PointsReplaced,
			"points_ignored":  res.PointsIgnored,
		})
	}

	return res, nil
}
