package spoofing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

// testCfg returns the documented default spoofing thresholds (see
// config.Config.applySpoofingDefaults) without reading any file from disk.
func testCfg() config.SpoofingDetectorsConfig {
	return config.SpoofingDetectorsConfig{
		MMSIReuseWindowHours:                 1,
		FlagHoppingOwnerChangeWindowDays:      7,
		FlagHoppingGapOverlapHours:            6,
		IMOFraudWindowHours:                   48,
		IMOFraudMinDistanceNM:                 500,
		IMOFraudDWTTolerancePct:               0.2,
		FakePositionMinSpeedKn:                25,
		FakePositionMinNM:                     1,
		FakePositionMinSeconds:                36,
		SparseTransmissionWindowHours:         24,
		SparseTransmissionUnderwaySOGKn:       3,
		SparseTransmissionModerateMaxPerHour:  2,
		SparseTransmissionMinUnderwayHours:    4,
		SparseTransmissionSevereMaxPerHour:    1,
		TypeDWTMismatchMinDWT:                 5000,
		TypeDWTMismatchChangeWindowDays:       90,
		NonCommercialVesselTypes:              []string{"fishing", "pleasure", "tug", "pilot", "sar", "dredger", "military", "wig"},
		PICyclingWindowDays:                   90,
		IGPIClubs:                             []string{"Gard", "Britannia", "North of England", "Skuld", "Standard Club", "Steamship Mutual", "Swedish Club", "UK P&I Club", "West of England", "London P&I Club"},
		RouteLaundering: config.RouteLaunderingConfig{
			LookbackDays:                   180,
			RussianOriginCountries:         []string{"RU"},
			IntermediaryCountries:          []string{"TR", "AE", "IN", "CN", "MY", "SG", "EG"},
			SanctionedDestinationCountries: []string{"KP", "SY", "CU", "IR"},
		},
		CircleSpoof: config.CircleSpoofConfig{
			MinPoints:       8,
			MinDurationHours: 4,
			MaxSpreadDeg:    0.015,
			MaxMeanSOGKn:    6,
			MinCOGStdDevDeg: 60,
		},
	}
}

func seedVessel(t *testing.T, s *memstore.Store, v *model.Vessel) {
	t.Helper()
	require.NoError(t, s.CreateVessel(context.Background(), v))
}

func seedPoint(t *testing.T, s *memstore.Store, vesselID string, ts time.Time, lat, lon float64, sog, cog *float64) {
	t.Helper()
	_, err := s.UpsertAISPoint(context.Background(), &model.AISPoint{
		VesselID: vesselID, TimestampUTC: ts, Lat: lat, Lon: lon, SOG: sog, COG: cog, Source: "terrestrial",
	})
	require.NoError(t, err)
}

func seedHistory(t *testing.T, s *memstore.Store, vesselID, field, old, new string, at time.Time) {
	t.Helper()
	require.NoError(t, s.AddVesselHistory(context.Background(), &model.VesselHistory{
		HistoryID: field + "-" + at.String(), VesselID: vesselID, FieldChanged: field, OldValue: old, NewValue: new, ChangedAt: at,
	}))
}

func f(v float64) *float64 { return &v }

func TestDetectAllTalliesAcrossDetectors(t *testing.T) {
	s := memstore.New()
	imo := "9074729" // checksum-valid
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "229999999", IMO: &imo, VesselType: "Tanker"})

	d := New(s, testCfg(), nil)
	res, err := d.DetectAll(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.GreaterOrEqual(t, res.AnomaliesCreated, 0)
}

func TestAlreadyActiveGuardsAgainstDuplicateAnomaly(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "229999999"})
	d := New(s, testCfg(), nil)

	require.NoError(t, d.create(context.Background(), "v1", model.AnomalyMMSIReuse, time.Now(), time.Now(), 40, nil))

	active, err := d.alreadyActive(context.Background(), "v1", model.AnomalyMMSIReuse)
	require.NoError(t, err)
	assert.True(t, active)

	inactive, err := d.alreadyActive(context.Background(), "v1", model.AnomalyFlagHopping)
	require.NoError(t, err)
	assert.False(t, inactive)
}
