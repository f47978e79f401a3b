package model

import "time"

// Vessel is the canonical vessel identity keyed by VesselID. An absorbed identity
// (MergedIntoVesselID non-nil) is never deleted — it remains the provenance anchor for
// every event it generated before the merge.
type Vessel struct {
	VesselID   string  `json:"vessel_id"`
	MMSI       string  `json:"mmsi"`
	IMO        *string `json:"imo,omitempty"`
	CallSign   *string `json:"call_sign,omitempty"`
	Name       string  `json:"name"`
	Flag       string  `json:"flag"`
	VesselType string  `json:"vessel_type"`
	Deadweight *int    `json:"deadweight,omitempty"`
	YearBuilt  *int    `json:"year_built,omitempty"`

	// Owner is the reported beneficial owner/operator name, used by the fleet analyzer's
	// owner clustering (fuzzy + exact match) and by the flag-hopping detector to tell an
	// ownership handoff apart from an unexplained flag change.
	Owner string `json:"owner,omitempty"`

	// Manager is the reported technical/commercial ship manager, a role distinct from
	// Owner in registry data (IMO company register lists both separately). The fleet
	// analyzer's shared-manager pattern flags a manager common to vessels with
	// otherwise-distinct Owner values, a known shadow-fleet obfuscation technique.
	Manager string `json:"manager,omitempty"`

	AISClass          AISClass         `json:"ais_class"`
	FlagRiskCategory  FlagRiskCategory `json:"flag_risk_category"`
	PICoverageStatus  PICoverageStatus `json:"pi_coverage_status"`
	PIClub            string           `json:"pi_club,omitempty"`

	PSCDetentionCount int        `json:"psc_detention_count"`
	LastPSCDetention  *time.Time `json:"last_psc_detention,omitempty"`

	MMSIFirstSeenUTC time.Time `json:"mmsi_first_seen_utc"`

	VesselLaidUp30d bool `json:"vessel_laid_up_30d"`
	VesselLaidUp60d bool `json:"vessel_laid_up_60d"`

	// MergedIntoVesselID is non-nil once this identity has been absorbed into a
	// canonical vessel by the identity resolver. Invariant: never equal to VesselID.
	MergedIntoVesselID *string `json:"merged_into_vessel_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAbsorbed reports whether this identity has been merged into another vessel.
func (v *Vessel) IsAbsorbed() bool {
	return v.MergedIntoVesselID != nil
}

// DWTBracket classifies a vessel by deadweight tonnage into the size classes the gap
// detector and risk engine use for speed limits and size multipliers.
type DWTBracket string

const (
	DWTBracketVLCC      DWTBracket = "VLCC"
	DWTBracketSuezmax   DWTBracket = "SUEZMAX"
	DWTBracketAframax   DWTBracket = "AFRAMAX" // also covers Panamax, same speed/mult bracket
	DWTBracketGeneral   DWTBracket = "GENERAL"
	DWTBracketUnknown   DWTBracket = "UNKNOWN"
)

// MaxSpeedKn returns the DWT-bracket speed ceiling (knots) used for
// max_plausible_distance computations: the gap detector's impossible-speed check and
// the identity resolver's proximity-score drift envelope both derive from this ceiling.
func MaxSpeedKn(bracket DWTBracket) float64 {
	switch bracket {
	case DWTBracketVLCC:
		return 14
	case DWTBracketSuezmax:
		return 15
	case DWTBracketAframax:
		return 15
	case DWTBracketGeneral:
		return 16
	default:
		return 14
	}
}

// ClassifyDWT buckets a deadweight tonnage figure into the size classes used throughout
// the gap detector and risk-scoring engine. Thresholds follow common tanker-class
// conventions: VLCC >= 200,000 DWT, Suezmax 120,000-199,999, Aframax/Panamax
// 55,000-119,999, general cargo below that.
func ClassifyDWT(dwt *int) DWTBracket {
	if dwt == nil {
		return DWTBracketUnknown
	}
	switch {
	case *dwt >= 200000:
		return DWTBracketVLCC
	case *dwt >= 120000:
		return DWTBracketSuezmax
	case *dwt >= 55000:
		return DWTBracketAframax
	default:
		return DWTBracketGeneral
	}
}

// VesselHistory records a detected change to an identity-relevant field
// (name/flag/ais_class/vessel_type/pi_club/owner). Entries within 24h of a prior
// identical (field, old, new) tuple are deduplicated at write time by the ingest layer.
type VesselHistory struct {
	HistoryID    string    `json:"history_id"`
	VesselID     string    `json:"vessel_id"`
	FieldChanged string    `json:"field_changed"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	ChangedAt    time.Time `json:"changed_at"`
}

// VesselWatchlist is a soft-deleted (IsActive) entry placing a vessel on an external
// sanctions/monitoring list.
type VesselWatchlist struct {
	WatchlistID string    `json:"watchlist_id"`
	VesselID    string    `json:"vessel_id"`
	Source      string    `json:"source"` // e.g. "OFAC", "EU", "KSE"
	Reason      string    `json:"reason"`
	AddedAt     time.Time `json:"added_at"`
	IsActive    bool      `json:"is_active"`
}
