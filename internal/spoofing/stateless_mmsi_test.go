package spoofing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/ingest"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func TestStatelessMMSIScoreBands(t *testing.T) {
	score, ok := statelessMMSIScore(ingest.MIDTierUnallocated)
	assert.True(t, ok)
	assert.Equal(t, 35, score)

	score, ok = statelessMMSIScore(ingest.MIDTierLandlockedTanker)
	assert.True(t, ok)
	assert.Equal(t, 20, score)

	score, ok = statelessMMSIScore(ingest.MIDTierMicroTerritory)
	assert.True(t, ok)
	assert.Equal(t, 10, score)

	_, ok = statelessMMSIScore(ingest.MIDTierNone)
	assert.False(t, ok)
}

func TestDetectStatelessMMSIFlagsUnallocatedMID(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "280123456", VesselType: "General Cargo"})

	d := New(s, testCfg(), nil)
	n, err := d.DetectStatelessMMSI(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyStatelessMMSI)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 35, active[0].RiskScoreComponent)
}

func TestDetectStatelessMMSIFlagsLandlockedTanker(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "206123456", VesselType: "Crude Oil Tanker"})

	d := New(s, testCfg(), nil)
	n, err := d.DetectStatelessMMSI(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDetectStatelessMMSISkipsOrdinaryFlag(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000", VesselType: "Bulk Carrier"})

	d := New(s, testCfg(), nil)
	n, err := d.DetectStatelessMMSI(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
