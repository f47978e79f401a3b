package model

import "time"

// AISGapEvent is a detected silence in a vessel's AIS broadcasts.
type AISGapEvent struct {
	GapID string `json:"gap_id"`

	// VesselID is the current (possibly canonical, post-merge) owner of this event.
	VesselID string `json:"vessel_id"`
	// OriginalVesselID is preserved through merges: it identifies the identity that
	// generated the gap, independent of later FK rewrites.
	OriginalVesselID string `json:"original_vessel_id"`

	GapStartUTC     time.Time `json:"gap_start_utc"`
	GapEndUTC       time.Time `json:"gap_end_utc"`
	DurationMinutes int       `json:"duration_minutes"`

	CorridorID *string `json:"corridor_id,omitempty"`

	RiskScore         int        `json:"risk_score"`
	RiskBreakdownJSON *Breakdown `json:"risk_breakdown_json,omitempty"`
	Status            GapStatus  `json:"status"`

	ImpossibleSpeedFlag      bool    `json:"impossible_speed_flag"`
	VelocityPlausibilityRatio float64 `json:"velocity_plausibility_ratio"`
	PreGapSOG                *float64 `json:"pre_gap_sog,omitempty"`

	InDarkZone bool `json:"in_dark_zone"`

	// Source is "gfw" when imported from Global Fishing Watch, else the local detector.
	Source string `json:"source"`

	IsFeedOutage bool `json:"is_feed_outage"`

	CoverageQuality CoverageQuality `json:"coverage_quality"`

	CreatedAt time.Time `json:"created_at"`
}

// DurationMatchesEndpoints checks the invariant duration_minutes ==
// floor((gap_end_utc - gap_start_utc)/60s).
func (g *AISGapEvent) DurationMatchesEndpoints() bool {
	return g.DurationMinutes == int(g.GapEndUTC.Sub(g.GapStartUTC).Seconds())/60
}

// MovementEnvelope is the plausible-position polygon computed for a gap when envelope
// interpolation runs (see internal/gapdetector).
type MovementEnvelope struct {
	EnvelopeID string `json:"envelope_id"`
	GapID      string `json:"gap_id"`

	MaxPlausibleDistanceNM float64 `json:"max_plausible_distance_nm"`
	ActualGapDistanceNM    float64 `json:"actual_gap_distance_nm"`
	Ratio                  float64 `json:"ratio"`

	SemiMajorAxisNM float64 `json:"semi_major_axis_nm"`
	SemiMinorAxisNM float64 `json:"semi_minor_axis_nm"`
	HeadingDegrees  float64 `json:"heading_degrees"`

	ConfidencePolygonWKT string `json:"confidence_polygon_wkt"`

	InterpolatedPositions []Position `json:"interpolated_positions"`

	Method MovementEnvelopeMethod `json:"method"`
}

// Position is a single lat/lon pair, used for envelope interpolation output.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Corridor is a named analyst-defined polygon used for gap/event geographic context.
type Corridor struct {
	CorridorID   string       `json:"corridor_id"`
	Name         string       `json:"name"`
	CorridorType CorridorType `json:"corridor_type"`
	WKT          string       `json:"wkt"`
	RiskWeight   float64      `json:"risk_weight"`
	IsJammingZone bool        `json:"is_jamming_zone"`
}

// CorridorGapBaseline stores a rolling 7-day gap-count baseline used by the feed-outage
// detector's adaptive threshold.
type CorridorGapBaseline struct {
	CorridorID    string    `json:"corridor_id"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	MeanCount     float64   `json:"mean_count"`
	P95Count      float64   `json:"p95_count"`
	SampleBuckets int       `json:"sample_buckets"`
}

// StsTransferEvent is a detected ship-to-ship proximity encounter between two vessels.
// Uniqueness: (Vessel1ID, Vessel2ID, StartUTC).
type StsTransferEvent struct {
	StsID            string           `json:"sts_id"`
	Vessel1ID        string           `json:"vessel_1_id"`
	Vessel2ID        string           `json:"vessel_2_id"`
	DetectionType    StsDetectionType `json:"detection_type"`
	StartUTC         time.Time        `json:"start_utc"`
	EndUTC           time.Time        `json:"end_utc"`
	DurationMinutes  int              `json:"duration_minutes"`
	MeanProximityM   float64          `json:"mean_proximity_m"`
	MeanLat          float64          `json:"mean_lat"`
	MeanLon          float64          `json:"mean_lon"`
	CorridorID       *string          `json:"corridor_id,omitempty"`
	ETA              *time.Time       `json:"eta,omitempty"` // only set for APPROACHING
	RiskScoreComponent int            `json:"risk_score_component"`
}

// LoiteringEvent is a vessel stationary run.
type LoiteringEvent struct {
	LoiteringID     string     `json:"loitering_id"`
	VesselID        string     `json:"vessel_id"`
	StartUTC        time.Time  `json:"start_utc"`
	EndUTC          time.Time  `json:"end_utc"`
	DurationHours   float64    `json:"duration_hours"`
	MedianSOG       float64    `json:"median_sog"`
	MeanLat         float64    `json:"mean_lat"`
	MeanLon         float64    `json:"mean_lon"`
	CorridorID      *string    `json:"corridor_id,omitempty"`
	PrecedingGapID  *string    `json:"preceding_gap_id,omitempty"`
	FollowingGapID  *string    `json:"following_gap_id,omitempty"`
	Sustained       bool       `json:"sustained"`
	RiskScoreComponent int     `json:"risk_score_component"`
}

// SpoofingAnomaly is a detected identity-fraud event.
type SpoofingAnomaly struct {
	AnomalyID   string              `json:"anomaly_id"`
	VesselID    string              `json:"vessel_id"`
	AnomalyType SpoofingAnomalyType `json:"anomaly_type"`
	StartUTC    time.Time           `json:"start_utc"`
	EndUTC      time.Time           `json:"end_utc"`
	EvidenceJSON map[string]any     `json:"evidence_json"`
	ImpliedSpeedKn *float64         `json:"implied_speed_kn,omitempty"`
	PlausibilityScore float64       `json:"plausibility_score"`
	RiskScoreComponent int          `json:"risk_score_component"`
	// LinkedGapID prevents double counting: when set, the gap's breakdown already
	// carries this anomaly's points and the confidence classifier must not add it twice.
	LinkedGapID *string `json:"linked_gap_id,omitempty"`
	IsActive    bool    `json:"is_active"`
}
