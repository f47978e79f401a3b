package spoofing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func TestFlagHoppingBaseScoreBands(t *testing.T) {
	score, fired := flagHoppingBaseScore(1, 1)
	assert.False(t, fired)
	assert.Equal(t, 0, score)

	score, fired = flagHoppingBaseScore(2, 2)
	assert.True(t, fired)
	assert.Equal(t, 20, score)

	score, fired = flagHoppingBaseScore(3, 3)
	assert.True(t, fired)
	assert.Equal(t, 40, score)

	score, fired = flagHoppingBaseScore(0, 5)
	assert.True(t, fired)
	assert.Equal(t, 50, score)
}

func TestDetectFlagHoppingFiresOnRepeatedChanges(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000"})
	now := time.Now().UTC()
	seedHistory(t, s, "v1", "flag", "PA", "LR", now.AddDate(0, 0, -10))
	seedHistory(t, s, "v1", "flag", "LR", "KM", now.AddDate(0, 0, -20))
	seedHistory(t, s, "v1", "flag", "KM", "TG", now.AddDate(0, 0, -30))

	d := New(s, testCfg(), nil)
	n, err := d.DetectFlagHopping(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyFlagHopping)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 40, active[0].RiskScoreComponent)
}

func TestDetectFlagHoppingHalvesScoreOnOwnershipHandoff(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000"})
	now := time.Now().UTC()
	flagChange := now.AddDate(0, 0, -10)
	seedHistory(t, s, "v1", "flag", "PA", "LR", flagChange)
	seedHistory(t, s, "v1", "flag", "LR", "KM", now.AddDate(0, 0, -20))
	seedHistory(t, s, "v1", "flag", "KM", "TG", now.AddDate(0, 0, -30))
	seedHistory(t, s, "v1", "owner", "Acme Shipping", "Beta Shipping", flagChange.Add(2*24*time.Hour))

	d := New(s, testCfg(), nil)
	n, err := d.DetectFlagHopping(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyFlagHopping)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 20, active[0].RiskScoreComponent)
}

func TestDetectFlagHoppingEmitsDarkPeriodSubAnomaly(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000"})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	flagChange := now.AddDate(0, 0, -10)
	seedHistory(t, s, "v1", "flag", "PA", "LR", flagChange)
	require.NoError(t, s.CreateGap(context.Background(), &model.AISGapEvent{
		GapID: "g1", VesselID: "v1", OriginalVesselID: "v1",
		GapStartUTC: flagChange.Add(-time.Hour), GapEndUTC: flagChange.Add(2 * time.Hour),
	}))

	d := New(s, testCfg(), nil)
	_, err := d.DetectFlagHopping(context.Background(), "v1")
	require.NoError(t, err)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyDarkPeriodFlagChange)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 20, active[0].RiskScoreComponent)
}
