package model

import "time"

// MergeCandidate is a scored hypothesis that two vessel identities are the same physical
// ship, awaiting auto-merge or analyst disposition.
type MergeCandidate struct {
	CandidateID string `json:"candidate_id"`
	VesselAID   string `json:"vessel_a_id"`
	VesselBID   string `json:"vessel_b_id"`

	ProximityScore      float64 `json:"proximity_score"`
	IdentityAnchorScore float64 `json:"identity_anchor_score"`
	NameSimilarityScore float64 `json:"name_similarity_score"`
	FingerprintScore    *float64 `json:"fingerprint_score,omitempty"`

	CompositeScore float64               `json:"composite_score"`
	Status         MergeCandidateStatus  `json:"status"`

	DiscoveredAt time.Time  `json:"discovered_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
}

// MergeOperation is the audit record of a completed (or reversed) identity merge: which
// identity absorbed which, and every foreign key rewritten in the process.
type MergeOperation struct {
	MergeOperationID string   `json:"merge_operation_id"`
	SurvivorVesselID string   `json:"survivor_vessel_id"`
	AbsorbedVesselID string   `json:"absorbed_vessel_id"`
	CandidateID      *string  `json:"candidate_id,omitempty"`

	// RewrittenTables lists the tables whose rows were FK-rewritten from AbsorbedVesselID
	// to SurvivorVesselID, with the row count touched, in execution order — required to
	// replay a reverse-merge deterministically.
	RewrittenTables []MergeTableRewrite `json:"rewritten_tables"`

	// SnapshotJSON records the absorbed vessel's id and the survivor it now points to.
	// Reverse-merge does not read it; it works from RewrittenTables instead.
	SnapshotJSON map[string]any `json:"snapshot_json"`

	PerformedBy string     `json:"performed_by"`
	PerformedAt time.Time  `json:"performed_at"`
	ReversedAt  *time.Time `json:"reversed_at,omitempty"`
}

// MergeTableRewrite records one table's FK rewrite for a MergeOperation: the row
// count touched and the primary key of every rewritten row, so a reverse-merge can
// restore exactly these rows and no others (the survivor's native rows must stay put).
type MergeTableRewrite struct {
	Table    string   `json:"table"`
	RowCount int      `json:"row_count"`
	RowKeys  []string `json:"row_keys,omitempty"`
}

// VesselFingerprint is an optional, pluggable physical-characteristics fingerprint used
// as a tie-breaking signal in merge-candidate scoring. The scorer implementation is not
// specified; absence of a fingerprint for either vessel simply omits this term.
type VesselFingerprint struct {
	VesselID string         `json:"vessel_id"`
	Features map[string]any `json:"features"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DarkVesselDetection is a vessel inferred to exist from non-AIS evidence (satellite,
// third-party event feed) with no corresponding AIS broadcast history.
type DarkVesselDetection struct {
	DetectionID string    `json:"detection_id"`
	Source      string    `json:"source"`
	ObservedAt  time.Time `json:"observed_at"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	EstimatedLengthM *float64 `json:"estimated_length_m,omitempty"`
	LinkedVesselID   *string  `json:"linked_vessel_id,omitempty"`
	LinkedStsID      *string  `json:"linked_sts_id,omitempty"`
}

// SatelliteCheck is an analyst-requested verification tasking for a gap, recording
// whether satellite imagery confirmed or refuted the vessel's claimed position.
type SatelliteCheck struct {
	CheckID     string     `json:"check_id"`
	GapID       string     `json:"gap_id"`
	RequestedAt time.Time  `json:"requested_at"`
	RequestedBy string     `json:"requested_by"`
	Provider    string     `json:"provider"`
	ResultAt    *time.Time `json:"result_at,omitempty"`
	// Result is "confirmed_present", "confirmed_absent", "inconclusive", or "" (pending).
	Result string `json:"result,omitempty"`
	ImageryURL string `json:"imagery_url,omitempty"`
}

// SatelliteTaskingCandidate is a gap flagged as a priority candidate for a
// SatelliteCheck, ranked by the confidence classifier output.
type SatelliteTaskingCandidate struct {
	GapID          string  `json:"gap_id"`
	VesselID       string  `json:"vessel_id"`
	PriorityScore  float64 `json:"priority_score"`
	Reason         string  `json:"reason"`
}
