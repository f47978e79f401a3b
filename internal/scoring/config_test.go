package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesNestedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk_scoring.yaml")
	err := os.WriteFile(path, []byte(`
gap_duration:
  pre_gap_spike_bonus_pct: 0.40
  bands:
    - {min_hours: 0, max_hours: 4, points: 5, key: gap_duration_0_4h}
    - {min_hours: 24, max_hours: 0, points: 50, key: gap_duration_24h_plus}
score_bands:
  low_max: 20
  medium_max: 50
  high_max: 75
  critical_min: 76
corridor:
  multiplier_by_type:
    STS_ZONE: 2.0
    LEGITIMATE_TRADE_ROUTE: 0.5
vessel_size_multiplier:
  multiplier_by_bracket:
    VLCC: 1.5
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.40, cfg.GapDuration.PreGapSpikeBonusPct)
	require.Len(t, cfg.GapDuration.Bands, 2)
	assert.Equal(t, "gap_duration_24h_plus", cfg.GapDuration.Bands[1].Key)
	assert.Equal(t, 2.0, cfg.Corridor.MultiplierByType["STS_ZONE"])
	assert.Equal(t, 1.5, cfg.VesselSizeMultiplier.MultiplierByBracket["VLCC"])
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScoreBandsBand(t *testing.T) {
	bands := ScoreBandsConfig{LowMax: 20, MediumMax: 50, HighMax: 75, CriticalMin: 76}
	assert.Equal(t, "low", bands.Band(0))
	assert.Equal(t, "low", bands.Band(20))
	assert.Equal(t, "medium", bands.Band(21))
	assert.Equal(t, "medium", bands.Band(50))
	assert.Equal(t, "high", bands.Band(51))
	assert.Equal(t, "high", bands.Band(75))
	assert.Equal(t, "critical", bands.Band(76))
	assert.Equal(t, "critical", bands.Band(100))
}

func TestScoreBandsZeroValueNeverElevates(t *testing.T) {
	var bands ScoreBandsConfig
	assert.Equal(t, "low", bands.Band(999))
}
