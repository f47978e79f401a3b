// Package scoring implements the risk-scoring engine: the central evaluator that turns
// a single AISGapEvent, its cross-signal context, and a loaded coefficient file into a
// risk_score and an ordered risk_breakdown_json.
package scoring

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the risk_scoring.yaml document. Every numeric scoring coefficient lives
// here and nowhere else — the engine never re-embeds a default value for a section
// that is present in the file; a missing section simply contributes nothing (see each
// Engine step's handling, documented at the call site).
type Config struct {
	GapDuration      GapDurationConfig      `yaml:"gap_duration"`
	DarkVessel       DarkVesselConfig       `yaml:"dark_vessel"`
	GapFrequency     GapFrequencyConfig     `yaml:"gap_frequency"`
	SpeedAnomaly     SpeedAnomalyConfig     `yaml:"speed_anomaly"`
	MovementEnvelope MovementEnvelopeConfig `yaml:"movement_envelope"`
	Spoofing         SpoofingConfig         `yaml:"spoofing"`
	Metadata         MetadataConfig         `yaml:"metadata"`
	VesselAge        VesselAgeConfig        `yaml:"vessel_age"`
	FlagState        FlagStateConfig        `yaml:"flag_state"`
	VesselSizeMultiplier VesselSizeMultiplierConfig `yaml:"vessel_size_multiplier"`
	Watchlist        WatchlistConfig        `yaml:"watchlist"`
	DarkZone         DarkZoneConfig         `yaml:"dark_zone"`
	STS              STSScoringConfig       `yaml:"sts"`
	Behavioral       BehavioralConfig       `yaml:"behavioral"`
	Legitimacy       LegitimacyConfig       `yaml:"legitimacy"`
	Corridor         CorridorScoringConfig  `yaml:"corridor"`
	ScoreBands       ScoreBandsConfig       `yaml:"score_bands"`
	AISClass         AISClassConfig         `yaml:"ais_class"`
	PIInsurance      PIInsuranceConfig      `yaml:"pi_insurance"`
	PSCDetention     PSCDetentionConfig     `yaml:"psc_detention"`
	IdentityMerge    IdentityMergeConfig    `yaml:"identity_merge"`
	HuntScoring      HuntScoringConfig      `yaml:"hunt_scoring"`
	FleetAnalysis    FleetAnalysisConfig    `yaml:"fleet_analysis"`
}

// GapDurationConfig bands gap duration into additive points, with a spike bonus when
// pre_gap_sog exceeds a class-dependent threshold just before the vessel went dark.
type GapDurationConfig struct {
	Bands []DurationBand `yaml:"bands"`
	// PreGapSpikeBonusPct is applied multiplicatively to the matched band's points
	// (e.g. 0.40 for +40%) when pre_gap_sog exceeds SpikeThresholdKnots for the
	// vessel's AIS class.
	PreGapSpikeBonusPct   float64            `yaml:"pre_gap_spike_bonus_pct"`
	SpikeThresholdKnots   map[string]float64 `yaml:"spike_threshold_knots"` // keyed by AISClass
}

// DurationBand is one (min,max] hour range and its point contribution.
type DurationBand struct {
	MinHours float64 `yaml:"min_hours"`
	MaxHours float64 `yaml:"max_hours"` // 0 means unbounded (the "24h+" band)
	Points   int     `yaml:"points"`
	Key      string  `yaml:"key"`
}

type DarkVesselConfig struct {
	RadiusNM          float64 `yaml:"radius_nm"`
	PointsInCorridor  int     `yaml:"points_in_corridor"`
	PointsOutside     int     `yaml:"points_outside"`
}

type GapFrequencyConfig struct {
	WindowDays int `yaml:"window_days"`
	// PointsPerGap and MaxPoints bound the per-identity inflation the spec calls out
	// for merged vessels: contribution is min(count * PointsPerGap, MaxPoints).
	PointsPerGap int `yaml:"points_per_gap"`
	MaxPoints    int `yaml:"max_points"`
}

type SpeedAnomalyConfig struct {
	// Thresholds is an ascending list of (ratio, points) pairs; the highest threshold
	// the gap's velocity_plausibility_ratio meets or exceeds applies.
	Thresholds []RatioThreshold `yaml:"thresholds"`
	ImpossibleSpeedBonus int      `yaml:"impossible_speed_bonus"`
}

type RatioThreshold struct {
	Ratio  float64 `yaml:"ratio"`
	Points int     `yaml:"points"`
}

type MovementEnvelopeConfig struct {
	// Penalty thresholds reuse RatioThreshold against velocity_plausibility_ratio,
	// applied independently of SpeedAnomalyConfig's own bands per spec.md §4.6 step 3.
	Thresholds []RatioThreshold `yaml:"thresholds"`
}

type SpoofingConfig struct {
	// PointsByType maps a SpoofingAnomalyType string to its one-shot point value.
	PointsByType map[string]int `yaml:"points_by_type"`
	MaxTotalPoints int          `yaml:"max_total_points"`
}

type MetadataConfig struct {
	NewMMSIWithinDays int `yaml:"new_mmsi_within_days"`
	NewMMSIPoints     int `yaml:"new_mmsi_points"`
	// MMSIChangeMappedSamePosition scores the merge-dark-zone evasion pattern: the
	// surviving MMSI's first broadcast sits where the absorbed identity last
	// broadcast before the silence. MMSIChangeDifferentPosition is the weaker
	// contribution for a reappearance elsewhere — and the only one a failed
	// position check is allowed to produce.
	MMSIChangeMappedSamePosition int `yaml:"mmsi_change_mapped_same_position"`
	MMSIChangeDifferentPosition  int `yaml:"mmsi_change_different_position"`
}

type VesselAgeConfig struct {
	Brackets []AgeBracket `yaml:"brackets"`
}

type AgeBracket struct {
	MinYears int    `yaml:"min_years"`
	MaxYears int    `yaml:"max_years"` // 0 means unbounded
	Points   int    `yaml:"points"`
	Key      string `yaml:"key"`
}

type FlagStateConfig struct {
	PointsByCategory map[string]int `yaml:"points_by_category"` // keyed by FlagRiskCategory
}

type VesselSizeMultiplierConfig struct {
	MultiplierByBracket map[string]float64 `yaml:"multiplier_by_bracket"` // keyed by DWTBracket
}

type WatchlistConfig struct {
	Points int `yaml:"points"`
}

type DarkZoneConfig struct {
	Deduction int `yaml:"deduction"`
}

type STSScoringConfig struct {
	SanctionsNetworkPoints int `yaml:"sanctions_network_points"`
}

type BehavioralConfig struct {
	RussianPortCallSimplePoints     int `yaml:"russian_port_call_simple_points"`
	RussianPortCallCompositePoints  int `yaml:"russian_port_call_composite_points"`
	VoyageWindowDays                int `yaml:"voyage_window_days"`
}

type LegitimacyConfig struct {
	NoGapsDaysThreshold   int `yaml:"no_gaps_days_threshold"`
	NoGapsDeduction       int `yaml:"no_gaps_deduction"`
	EUPortCallDeduction   int `yaml:"eu_port_call_deduction"`
	IGPIClubDeduction     int `yaml:"ig_pi_club_deduction"`
}

type CorridorScoringConfig struct {
	MultiplierByType map[string]float64 `yaml:"multiplier_by_type"` // keyed by CorridorType
}

type ScoreBandsConfig struct {
	LowMax      int `yaml:"low_max"`
	MediumMax   int `yaml:"medium_max"`
	HighMax     int `yaml:"high_max"`
	// CriticalMin is implied to be HighMax+1 but kept explicit for clarity when tuned.
	CriticalMin int `yaml:"critical_min"`
}

type AISClassConfig struct {
	SpikeKnotsByClass map[string]float64 `yaml:"spike_knots_by_class"`
}

type PIInsuranceConfig struct {
	LapsedPoints int `yaml:"lapsed_points"`
}

type PSCDetentionConfig struct {
	PointsPerDetention int `yaml:"points_per_detention"`
	MaxPoints          int `yaml:"max_points"`
}

type IdentityMergeConfig struct {
	AutoMergeThreshold   float64 `yaml:"auto_merge_threshold"`
	HumanReviewThreshold float64 `yaml:"human_review_threshold"`
	Weights              MergeScoreWeights `yaml:"weights"`
}

type MergeScoreWeights struct {
	Proximity       float64 `yaml:"proximity"`
	IdentityAnchor  float64 `yaml:"identity_anchor"`
	NameSimilarity  float64 `yaml:"name_similarity"`
	Fingerprint     float64 `yaml:"fingerprint"`
}

type HuntScoringConfig struct {
	MultiGapBonusThreshold int `yaml:"multi_gap_bonus_threshold"`
	MultiGapBonusPoints    int `yaml:"multi_gap_bonus_points"`
}

type FleetAnalysisConfig struct {
	OwnerFuzzyMinSimilarity float64 `yaml:"owner_fuzzy_min_similarity"`
}

// Band returns the risk band name for a final score, per the score_bands config.
// A zero-valued ScoreBandsConfig (section absent from risk_scoring.yaml) always
// resolves to "low" until tuned, matching the "never elevate on missing config"
// fallback rule in spec.md §4.6 step 7.
func (c *ScoreBandsConfig) Band(score int) string {
	if c.LowMax == 0 && c.MediumMax == 0 && c.HighMax == 0 && c.CriticalMin == 0 {
		return "low"
	}
	switch {
	case score >= c.CriticalMin && c.CriticalMin > 0:
		return "critical"
	case score > c.MediumMax:
		return "high"
	case score > c.LowMax:
		return "medium"
	default:
		return "low"
	}
}

// LoadConfig reads and decodes a risk_scoring.yaml document from path. Every call site
// downstream (internal/scoring, internal/confidence) must load the same file rather
// than constructing a Config from hardcoded values, per spec.md §8's determinism
// requirement.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
