package model

import "time"

// Sentinel values AIS broadcasts use to signal "no data" for a field.
const (
	SOGAbsentSentinel     = 102.3
	COGAbsentSentinel     = 360.0
	HeadingAbsentSentinel = 511
)

// AISPoint is a single, deduplicated broadcast. (VesselID, TimestampUTC) is unique.
type AISPoint struct {
	VesselID     string    `json:"vessel_id"`
	TimestampUTC time.Time `json:"timestamp_utc"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`

	// SOG, COG, Heading are nil when the broadcast carried the sentinel "absent" value.
	SOG     *float64 `json:"sog,omitempty"`
	COG     *float64 `json:"cog,omitempty"`
	Heading *int     `json:"heading,omitempty"`

	NavStatus *int   `json:"nav_status,omitempty"`
	Source    string `json:"source"`

	SuspiciousSOG   bool `json:"suspicious_sog"`
	AnchoredHighSOG bool `json:"anchored_high_sog"`
}

// SourceQuality ranks AIS feed provenance for dedup-replacement decisions: a duplicate
// point from a higher-ranked source replaces the stored one; a lower-or-equal-ranked
// duplicate is ignored.
var sourceQualityRank = map[string]int{
	"csv_import":  0,
	"terrestrial": 1,
	"aisstream":   2,
	"satellite":   3,
	"exactearth":  4,
	"spire":       4,
}

// SourceQuality returns the relative rank of a feed source name; unknown sources rank
// below every known source.
func SourceQuality(source string) int {
	if r, ok := sourceQualityRank[source]; ok {
		return r
	}
	return -1
}

// AISObservation is a raw, non-deduplicated multi-source observation kept on a 72h
// rolling window for cross-receiver comparison.
type AISObservation struct {
	ObservationID string    `json:"observation_id"`
	VesselID      string    `json:"vessel_id"`
	MMSI          string    `json:"mmsi"`
	TimestampUTC  time.Time `json:"timestamp_utc"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	Source        string    `json:"source"`
	ReceivedAt    time.Time `json:"received_at"`
}

// ObservationRetentionWindow is the rolling retention period for AISObservation rows.
const ObservationRetentionWindow = 72 * time.Hour
