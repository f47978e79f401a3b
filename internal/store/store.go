// Package store defines the repository interface every detector, scoring, and
// identity-resolution component reads and writes through. Two implementations exist:
// internal/store/supabasestore (backed by github.com/supabase-community/supabase-go,
// the persistence library the teacher depends on) and internal/store/memstore (an
// in-memory fake for unit tests), grounded on the teacher's SupabaseClient
// method-per-entity convention.
package store

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// Store is the full repository surface the pipeline depends on.
type Store interface {
	VesselStore
	AISStore
	GapStore
	EnvelopeStore
	CorridorStore
	STSStore
	LoiteringStore
	SpoofingStore
	PortStore
	IdentityStore
	OutageStore
	ConfidenceStore
	AuditStore
}

// VesselStore covers Vessel, VesselHistory, and VesselWatchlist.
type VesselStore interface {
	GetVessel(ctx context.Context, vesselID string) (*model.Vessel, error)
	GetVesselByMMSI(ctx context.Context, mmsi string) (*model.Vessel, error)
	CreateVessel(ctx context.Context, v *model.Vessel) error
	UpdateVessel(ctx context.Context, v *model.Vessel) error
	ListVessels(ctx context.Context, includeAbsorbed bool) ([]model.Vessel, error)

	AddVesselHistory(ctx context.Context, h *model.VesselHistory) error
	ListVesselHistory(ctx context.Context, vesselID string) ([]model.VesselHistory, error)

	AddWatchlistEntry(ctx context.Context, w *model.VesselWatchlist) error
	ListActiveWatchlist(ctx context.Context, vesselID string) ([]model.VesselWatchlist, error)
}

// AISStore covers AISPoint (deduplicated) and AISObservation (raw, rolling window).
type AISStore interface {
	UpsertAISPoint(ctx context.Context, p *model.AISPoint) (inserted bool, err error)
	ListAISPoints(ctx context.Context, vesselID string, from, to time.Time) ([]model.AISPoint, error)

	AddAISObservation(ctx context.Context, o *model.AISObservation) error
	ListAISObservations(ctx context.Context, vesselID string, since time.Time) ([]model.AISObservation, error)
	PruneAISObservations(ctx context.Context, olderThan time.Time) (int, error)
}

// GapStore covers AISGapEvent.
type GapStore interface {
	CreateGap(ctx context.Context, g *model.AISGapEvent) error
	UpdateGap(ctx context.Context, g *model.AISGapEvent) error
	GetGap(ctx context.Context, gapID string) (*model.AISGapEvent, error)
	ListGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error)
	ListGapsByOriginalVessel(ctx context.Context, originalVesselID string, since time.Time) ([]model.AISGapEvent, error)
	ListUnscoredGaps(ctx context.Context) ([]model.AISGapEvent, error)
	// ListGapsInWindow returns every gap (any score/outage status) starting in
	// [from, to], used by the corridor baseline maintenance pass, which must count
	// every gap a corridor saw, not only the ones still awaiting scoring.
	ListGapsInWindow(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error)
}

// EnvelopeStore covers MovementEnvelope.
type EnvelopeStore interface {
	CreateEnvelope(ctx context.Context, e *model.MovementEnvelope) error
	GetEnvelopeForGap(ctx context.Context, gapID string) (*model.MovementEnvelope, error)
}

// CorridorStore covers Corridor and CorridorGapBaseline.
type CorridorStore interface {
	ListCorridors(ctx context.Context) ([]model.Corridor, error)
	GetCorridor(ctx context.Context, corridorID string) (*model.Corridor, error)

	UpsertBaseline(ctx context.Context, b *model.CorridorGapBaseline) error
	GetBaseline(ctx context.Context, corridorID string) (*model.CorridorGapBaseline, error)
}

// STSStore covers StsTransferEvent and DarkVesselDetection.
type STSStore interface {
	CreateSTSEvent(ctx context.Context, e *model.StsTransferEvent) error
	ListSTSEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.StsTransferEvent, error)

	AddDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error
	ListUnmatchedDarkVesselDetections(ctx context.Context, from, to time.Time) ([]model.DarkVesselDetection, error)
	UpdateDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error
}

// LoiteringStore covers LoiteringEvent.
type LoiteringStore interface {
	CreateLoiteringEvent(ctx context.Context, e *model.LoiteringEvent) error
	ListLoiteringEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.LoiteringEvent, error)
}

// SpoofingStore covers SpoofingAnomaly and DraughtChangeEvent.
type SpoofingStore interface {
	CreateSpoofingAnomaly(ctx context.Context, a *model.SpoofingAnomaly) error
	ListActiveAnomaliesByVessel(ctx context.Context, vesselID string, anomalyType model.SpoofingAnomalyType) ([]model.SpoofingAnomaly, error)
	ListAnomaliesByVesselWindow(ctx context.Context, vesselID string, from, to time.Time) ([]model.SpoofingAnomaly, error)

	AddDraughtChangeEvent(ctx context.Context, d *model.DraughtChangeEvent) error
	ListDraughtChangeEvents(ctx context.Context, vesselID string) ([]model.DraughtChangeEvent, error)
}

// PortStore covers Port and PortCall.
type PortStore interface {
	ListPorts(ctx context.Context) ([]model.Port, error)
	CreatePortCall(ctx context.Context, p *model.PortCall) error
	UpdatePortCall(ctx context.Context, p *model.PortCall) error
	ListOpenPortCall(ctx context.Context, vesselID string) (*model.PortCall, error)
	ListPortCallsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.PortCall, error)
}

// IdentityStore covers MergeCandidate, MergeOperation, VesselFingerprint.
type IdentityStore interface {
	CreateMergeCandidate(ctx context.Context, c *model.MergeCandidate) error
	ListPendingMergeCandidates(ctx context.Context) ([]model.MergeCandidate, error)
	UpdateMergeCandidate(ctx context.Context, c *model.MergeCandidate) error

	CreateMergeOperation(ctx context.Context, op *model.MergeOperation) error
	UpdateMergeOperation(ctx context.Context, op *model.MergeOperation) error
	GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error)

	GetFingerprint(ctx context.Context, vesselID string) (*model.VesselFingerprint, error)

	// RewriteOwnedRows reassigns every row owned by fromVesselID to toVesselID across
	// every FK-bearing table, returning the row count and primary keys touched per
	// table. Implementations must do this within a single transaction/savepoint.
	RewriteOwnedRows(ctx context.Context, fromVesselID, toVesselID string) ([]model.MergeTableRewrite, error)

	// RestoreOwnedRows reassigns only the rows named in rewrites (by primary key) to
	// toVesselID — the reverse-merge path. Rows the survivor owned before the merge are
	// never touched, since they were never recorded in the snapshot.
	RestoreOwnedRows(ctx context.Context, rewrites []model.MergeTableRewrite, toVesselID string) error
}

// OutageStore covers feed-outage clustering and CoverageQuality tagging.
type OutageStore interface {
	ListGapsForOutageClustering(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error)
	MarkFeedOutage(ctx context.Context, gapIDs []string) error
	TagCoverageQuality(ctx context.Context, gapID string, quality model.CoverageQuality) error
}

// ConfidenceStore covers confidence classification and FleetAlert.
type ConfidenceStore interface {
	ListScoredGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error)
	CreateFleetAlert(ctx context.Context, a *model.FleetAlert) error
	GetOpenFleetAlert(ctx context.Context, dedupKey string) (*model.FleetAlert, error)
}

// AuditStore covers AuditLog and PipelineRun. Writes are best-effort: a failure here
// must never abort the operation it describes (see internal/audit).
type AuditStore interface {
	WriteAuditLog(ctx context.Context, a *model.AuditLog) error
	CreatePipelineRun(ctx context.Context, r *model.PipelineRun) error
	UpdatePipelineRun(ctx context.Context, r *model.PipelineRun) error
}

// ErrNotFound is returned by Get* methods when no row matches.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "store: not found" }
