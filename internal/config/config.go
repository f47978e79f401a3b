// Package config loads RadianceFleet's application configuration: server/database
// wiring and the detector thresholds spec.md pins outside the scoring-coefficient file
// (GAP_MIN_HOURS, STS proximity/window sizes, provider retry delay vectors, and so on).
// The risk-scoring coefficient file itself (risk_scoring.yaml) is a separate,
// independently loaded document owned by internal/scoring — see that package's Config.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Config is the whole-process configuration document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Detectors DetectorsConfig `yaml:"detectors"`
	Retry     RetryConfig     `yaml:"retry"`
	Budget    BudgetConfig    `yaml:"budget"`
}

// ServerConfig controls the HTTP surface the orchestrator is triggered through.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	Env                string   `yaml:"env"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	IdleTimeoutSec     int      `yaml:"idle_timeout_sec"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_sec"`
	CORSAllowOrigins   []string `yaml:"cors_allow_origins"`
}

// DatabaseConfig holds the Supabase project connection the store layer targets.
type DatabaseConfig struct {
	Supabase SupabaseConfig `yaml:"supabase"`
	// PoolSize bounds concurrent DB sessions a single orchestrator run may hold open.
	PoolSize int `yaml:"pool_size"`
}

type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
}

// DetectorsConfig holds the structural thresholds spec.md pins by name rather than
// leaving to the scoring coefficient file: these gate detection, not scoring weight.
type DetectorsConfig struct {
	GapMinHours float64 `yaml:"gap_min_hours"`

	STSProximityMeters float64  `yaml:"sts_proximity_meters"`
	STSMinWindows      int      `yaml:"sts_min_windows"`
	STSWindowMinutes   int      `yaml:"sts_window_minutes"`
	BunkeringMMSI      []string `yaml:"bunkering_mmsi"`

	LaidUp30dDays int     `yaml:"laid_up_30d_days"`
	LaidUp60dDays int     `yaml:"laid_up_60d_days"`
	LaidUpBBoxDeg float64 `yaml:"laid_up_bbox_deg"`

	PortCallRadiusNM float64 `yaml:"port_call_radius_nm"`
	PortCallMinHours float64 `yaml:"port_call_min_hours"`
	PortCallMaxSOGKn float64 `yaml:"port_call_max_sog_kn"`

	PortNearestNM     float64 `yaml:"port_nearest_nm"`
	PortFuzzyMinRatio float64 `yaml:"port_fuzzy_min_ratio"`

	// MergeAutoThreshold and MergeReviewThreshold are NOT here: the composite merge
	// score they gate is computed from scoring.Config.IdentityMerge's weights, so the
	// thresholds live alongside those weights in risk_scoring.yaml rather than being
	// re-embedded in this structural config.
	MergeCandidateWindowDays int     `yaml:"merge_candidate_window_days"`
	MergeCanonicalMaxDepth   int     `yaml:"merge_canonical_max_depth"`
	MergeFuzzyNameMinRatio   float64 `yaml:"merge_fuzzy_name_min_ratio"`
	// RequireIdentityAnchor, when true, discards any candidate pair lacking at least
	// one of: same IMO, same call sign, or fuzzy-name similarity >= MergeFuzzyNameMinRatio.
	RequireIdentityAnchor bool `yaml:"require_identity_anchor"`

	FleetFuzzyMinSimilarity float64 `yaml:"fleet_fuzzy_min_similarity"`

	OutageBucketHours        float64 `yaml:"outage_bucket_hours"`
	OutageFloorVessels       int     `yaml:"outage_floor_vessels"`
	OutageMinWithBaseline    int     `yaml:"outage_min_vessels_with_baseline"`
	OutageDecoyRatio         float64 `yaml:"outage_decoy_ratio"`
	OutageDecoyScoreMin      int     `yaml:"outage_decoy_score_min"`
	OutageEvasionWindowHours float64 `yaml:"outage_evasion_window_hours"`
	BaselineWindowDays       int     `yaml:"baseline_window_days"`

	Spoofing SpoofingDetectorsConfig `yaml:"spoofing"`
}

// SpoofingDetectorsConfig holds the structural thresholds and analyst-maintained
// classification lists the spoofing/identity detector suite gates on. Per-anomaly point
// values are spec-literal constants in internal/spoofing itself (mirroring the gap
// detector's DWT-bracket speed ceilings); only the lists and windows analysts actually
// need to retune live here.
type SpoofingDetectorsConfig struct {
	MMSIReuseWindowHours float64 `yaml:"mmsi_reuse_window_hours"`

	FlagHoppingOwnerChangeWindowDays int     `yaml:"flag_hopping_owner_change_window_days"`
	FlagHoppingGapOverlapHours       float64 `yaml:"flag_hopping_gap_overlap_hours"`

	IMOFraudWindowHours    float64 `yaml:"imo_fraud_window_hours"`
	IMOFraudMinDistanceNM  float64 `yaml:"imo_fraud_min_distance_nm"`
	IMOFraudDWTTolerancePct float64 `yaml:"imo_fraud_dwt_tolerance_pct"`

	FakePositionMinSpeedKn float64 `yaml:"fake_position_min_speed_kn"`
	FakePositionMinNM      float64 `yaml:"fake_position_min_nm"`
	FakePositionMinSeconds float64 `yaml:"fake_position_min_seconds"`

	SparseTransmissionWindowHours     float64 `yaml:"sparse_transmission_window_hours"`
	SparseTransmissionUnderwaySOGKn   float64 `yaml:"sparse_transmission_underway_sog_kn"`
	SparseTransmissionModerateMaxPerHour float64 `yaml:"sparse_transmission_moderate_max_per_hour"`
	SparseTransmissionMinUnderwayHours   float64 `yaml:"sparse_transmission_min_underway_hours"`
	SparseTransmissionSevereMaxPerHour   float64 `yaml:"sparse_transmission_severe_max_per_hour"`

	TypeDWTMismatchMinDWT        int `yaml:"type_dwt_mismatch_min_dwt"`
	TypeDWTMismatchChangeWindowDays int `yaml:"type_dwt_mismatch_change_window_days"`
	NonCommercialVesselTypes     []string `yaml:"non_commercial_vessel_types"`

	PICyclingWindowDays int      `yaml:"pi_cycling_window_days"`
	IGPIClubs           []string `yaml:"ig_pi_clubs"`

	RouteLaundering RouteLaunderingConfig `yaml:"route_laundering"`

	CircleSpoof CircleSpoofConfig `yaml:"circle_spoof"`
}

// CircleSpoofConfig parameterizes the tight-cluster/scattered-heading spoofing pattern:
// a vessel orbiting a small area at low speed with randomized reported course, a known
// GPS-spoofing signature carried over from original_source/ (see DESIGN.md).
type CircleSpoofConfig struct {
	MinPoints         int     `yaml:"min_points"`
	MinDurationHours  float64 `yaml:"min_duration_hours"`
	MaxSpreadDeg      float64 `yaml:"max_spread_deg"`
	MaxMeanSOGKn      float64 `yaml:"max_mean_sog_kn"`
	MinCOGStdDevDeg   float64 `yaml:"min_cog_stddev_deg"`
}

// RouteLaunderingConfig classifies PortCall countries into the three roles the
// route-laundering detector pattern-matches against.
type RouteLaunderingConfig struct {
	LookbackDays           int      `yaml:"lookback_days"`
	RussianOriginCountries []string `yaml:"russian_origin_countries"`
	IntermediaryCountries  []string `yaml:"intermediary_countries"`
	SanctionedDestinationCountries []string `yaml:"sanctioned_destination_countries"`
}

// RetryConfig drives internal/retry's external-collaborator backoff policy.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	// ProviderDelaysSec maps a provider key (e.g. "aishub") to its explicit delay
	// vector in seconds; a provider not listed falls back to DefaultDelaysSec.
	ProviderDelaysSec map[string][]int `yaml:"provider_delays_sec"`
	DefaultDelaysSec  []int            `yaml:"default_delays_sec"`
}

// BudgetConfig bounds the paid-verification subsystem's monthly spend.
type BudgetConfig struct {
	MonthlySpendLimitUSD float64 `yaml:"monthly_spend_limit_usd"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the process-wide singleton, loading it from CONFIG_PATH (default
// "config.yaml") on first call. A missing or unparsable file logs a warning and falls
// back to a zero-valued Config — callers needing a threshold always present must check
// it explicitly, per the spec's graceful-degradation requirement.
func Get() *Config {
	once.Do(func() {
		cfg, err := LoadConfig(getEnv("CONFIG_PATH", "config.yaml"))
		if err != nil {
			slog.Warn("config: failed to load config file, using defaults", "error", err)
		}
		if cfg == nil {
			cfg = &Config{}
		}
		cfg.applyEnvOverrides()
		instance = cfg
	})
	return instance
}

// LoadConfig reads and decodes a YAML config document from path.
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

func (c *Config) applyEnvOverrides() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Env = getEnv("RADIANCEFLEET_ENV", c.Server.Env)
	if origins := getEnv("CORS_ALLOW_ORIGINS", ""); origins != "" {
		c.Server.CORSAllowOrigins = splitCSV(origins)
	}

	c.Database.Supabase.URL = getEnv("SUPABASE_URL", c.Database.Supabase.URL)
	c.Database.Supabase.ServiceKey = getEnv("SUPABASE_SERVICE_KEY", c.Database.Supabase.ServiceKey)

	if v := getEnvFloat("GAP_MIN_HOURS", 0); v > 0 {
		c.Detectors.GapMinHours = v
	}
	if v := getEnvFloat("STS_PROXIMITY_METERS", 0); v > 0 {
		c.Detectors.STSProximityMeters = v
	}
	if v := getEnvInt("STS_MIN_WINDOWS", 0); v > 0 {
		c.Detectors.STSMinWindows = v
	}
	if v := getEnvFloat("BUDGET_MONTHLY_SPEND_LIMIT_USD", 0); v > 0 {
		c.Budget.MonthlySpendLimitUSD = v
	}

	c.applyDefaults()
}

// applyDefaults fills structural thresholds spec.md pins to a specific value, never the
// risk-scoring coefficients (those live only in risk_scoring.yaml, per spec.md §8's
// "any target must load the same file, not re-embed defaults").
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 15
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 15
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = 60
	}
	if c.Server.ShutdownTimeoutSec == 0 {
		c.Server.ShutdownTimeoutSec = 30
	}
	if len(c.Server.CORSAllowOrigins) == 0 {
		c.Server.CORSAllowOrigins = []string{"*"}
	}
	if c.Database.PoolSize == 0 {
		c.Database.PoolSize = 10
	}
	if c.Detectors.GapMinHours == 0 {
		c.Detectors.GapMinHours = 6
	}
	if c.Detectors.STSProximityMeters == 0 {
		c.Detectors.STSProximityMeters = 200
	}
	if c.Detectors.STSMinWindows == 0 {
		c.Detectors.STSMinWindows = 8
	}
	if c.Detectors.STSWindowMinutes == 0 {
		c.Detectors.STSWindowMinutes = 15
	}
	if c.Detectors.LaidUp30dDays == 0 {
		c.Detectors.LaidUp30dDays = 30
	}
	if c.Detectors.LaidUp60dDays == 0 {
		c.Detectors.LaidUp60dDays = 60
	}
	if c.Detectors.LaidUpBBoxDeg == 0 {
		c.Detectors.LaidUpBBoxDeg = 0.033
	}
	if c.Detectors.PortCallRadiusNM == 0 {
		c.Detectors.PortCallRadiusNM = 3
	}
	if c.Detectors.PortCallMinHours == 0 {
		c.Detectors.PortCallMinHours = 2
	}
	if c.Detectors.PortCallMaxSOGKn == 0 {
		c.Detectors.PortCallMaxSOGKn = 1
	}
	if c.Detectors.PortNearestNM == 0 {
		c.Detectors.PortNearestNM = 10
	}
	if c.Detectors.PortFuzzyMinRatio == 0 {
		c.Detectors.PortFuzzyMinRatio = 80
	}
	if c.Detectors.MergeCandidateWindowDays == 0 {
		c.Detectors.MergeCandidateWindowDays = 180
	}
	if c.Detectors.MergeCanonicalMaxDepth == 0 {
		c.Detectors.MergeCanonicalMaxDepth = 10
	}
	if c.Detectors.MergeFuzzyNameMinRatio == 0 {
		c.Detectors.MergeFuzzyNameMinRatio = 85
	}
	if c.Detectors.FleetFuzzyMinSimilarity == 0 {
		c.Detectors.FleetFuzzyMinSimilarity = 85
	}
	if c.Detectors.OutageBucketHours == 0 {
		c.Detectors.OutageBucketHours = 2
	}
	if c.Detectors.OutageFloorVessels == 0 {
		c.Detectors.OutageFloorVessels = 5
	}
	if c.Detectors.OutageMinWithBaseline == 0 {
		c.Detectors.OutageMinWithBaseline = 3
	}
	if c.Detectors.OutageDecoyRatio == 0 {
		c.Detectors.OutageDecoyRatio = 0.3
	}
	if c.Detectors.OutageDecoyScoreMin == 0 {
		c.Detectors.OutageDecoyScoreMin = 50
	}
	if c.Detectors.OutageEvasionWindowHours == 0 {
		c.Detectors.OutageEvasionWindowHours = 6
	}
	if c.Detectors.BaselineWindowDays == 0 {
		c.Detectors.BaselineWindowDays = 7
	}
	c.applySpoofingDefaults()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if len(c.Retry.DefaultDelaysSec) == 0 {
		c.Retry.DefaultDelaysSec = []int{5, 15, 30}
	}
	if c.Retry.ProviderDelaysSec == nil {
		c.Retry.ProviderDelaysSec = map[string][]int{
			"aishub": {60, 120, 180},
		}
	}
}

func (c *Config) applySpoofingDefaults() {
	s := &c.Detectors.Spoofing
	if s.MMSIReuseWindowHours == 0 {
		s.MMSIReuseWindowHours = 1
	}
	if s.FlagHoppingOwnerChangeWindowDays == 0 {
		s.FlagHoppingOwnerChangeWindowDays = 7
	}
	if s.FlagHoppingGapOverlapHours == 0 {
		s.FlagHoppingGapOverlapHours = 6
	}
	if s.IMOFraudWindowHours == 0 {
		s.IMOFraudWindowHours = 48
	}
	if s.IMOFraudMinDistanceNM == 0 {
		s.IMOFraudMinDistanceNM = 500
	}
	if s.IMOFraudDWTTolerancePct == 0 {
		s.IMOFraudDWTTolerancePct = 0.2
	}
	if s.FakePositionMinSpeedKn == 0 {
		s.FakePositionMinSpeedKn = 25
	}
	if s.FakePositionMinNM == 0 {
		s.FakePositionMinNM = 1
	}
	if s.FakePositionMinSeconds == 0 {
		s.FakePositionMinSeconds = 36
	}
	if s.SparseTransmissionWindowHours == 0 {
		s.SparseTransmissionWindowHours = 24
	}
	if s.SparseTransmissionUnderwaySOGKn == 0 {
		s.SparseTransmissionUnderwaySOGKn = 3
	}
	if s.SparseTransmissionModerateMaxPerHour == 0 {
		s.SparseTransmissionModerateMaxPerHour = 2
	}
	if s.SparseTransmissionMinUnderwayHours == 0 {
		s.SparseTransmissionMinUnderwayHours = 4
	}
	if s.SparseTransmissionSevereMaxPerHour == 0 {
		s.SparseTransmissionSevereMaxPerHour = 1
	}
	if s.TypeDWTMismatchMinDWT == 0 {
		s.TypeDWTMismatchMinDWT = 5000
	}
	if s.TypeDWTMismatchChangeWindowDays == 0 {
		s.TypeDWTMismatchChangeWindowDays = 90
	}
	if len(s.NonCommercialVesselTypes) == 0 {
		s.NonCommercialVesselTypes = []string{
			"fishing", "pleasure", "tug", "pilot", "sar", "dredger", "military", "wig",
		}
	}
	if s.PICyclingWindowDays == 0 {
		s.PICyclingWindowDays = 90
	}
	if len(s.IGPIClubs) == 0 {
		s.IGPIClubs = []string{
			"Gard", "Britannia", "North of England", "Skuld", "Standard Club",
			"Steamship Mutual", "Swedish Club", "UK P&I Club", "West of England", "London P&I Club",
		}
	}
	if s.CircleSpoof.MinPoints == 0 {
		s.CircleSpoof.MinPoints = 8
	}
	if s.CircleSpoof.MinDurationHours == 0 {
		s.CircleSpoof.MinDurationHours = 4
	}
	if s.CircleSpoof.MaxSpreadDeg == 0 {
		s.CircleSpoof.MaxSpreadDeg = 0.015
	}
	if s.CircleSpoof.MaxMeanSOGKn == 0 {
		s.CircleSpoof.MaxMeanSOGKn = 6
	}
	if s.CircleSpoof.MinCOGStdDevDeg == 0 {
		s.CircleSpoof.MinCOGStdDevDeg = 60
	}
	if s.RouteLaundering.LookbackDays == 0 {
		s.RouteLaundering.LookbackDays = 180
	}
	if len(s.RouteLaundering.RussianOriginCountries) == 0 {
		s.RouteLaundering.RussianOriginCountries = []string{"RU"}
	}
	if len(s.RouteLaundering.IntermediaryCountries) == 0 {
		s.RouteLaundering.IntermediaryCountries = []string{"TR", "AE", "IN", "CN", "MY", "SG", "EG"}
	}
	if len(s.RouteLaundering.SanctionedDestinationCountries) == 0 {
		s.RouteLaundering.SanctionedDestinationCountries = []string{"KP", "SY", "CU", "IR"}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitCSV(s string) []string {
	parts := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetSupabaseURL returns the Supabase project URL.
func (c *Config) GetSupabaseURL() string {
	return c.Database.Supabase.URL
}

// GetSupabaseKey returns the Supabase service-role key.
func (c *Config) GetSupabaseKey() string {
	return c.Database.Supabase.ServiceKey
}

// DelaysForProvider returns the explicit retry delay vector (seconds) for a named
// external collaborator, falling back to DefaultDelaysSec when unconfigured.
func (c *RetryConfig) DelaysForProvider(provider string) []int {
	if d, ok := c.ProviderDelaysSec[provider]; ok {
		return d
	}
	return c.DefaultDelaysSec
}
