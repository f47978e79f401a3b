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

func TestMMSIReuseScoreBands(t *testing.T) {
	assert.Equal(t, 55, mmsiReuseScore(120))
	assert.Equal(t, 40, mmsiReuseScore(60))
	assert.Equal(t, 25, mmsiReuseScore(10))
}

func TestDetectMMSIReuseFlagsImpossibleJump(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "229999999"})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPoint(t, s, "v1", base, 0, 0, nil, nil)
	// 100nm apart 30 minutes later: implied speed 200kn, far beyond any real vessel.
	seedPoint(t, s, "v1", base.Add(30*time.Minute), 0, 1.667, nil, nil)

	d := New(s, testCfg(), nil)
	n, err := d.DetectMMSIReuse(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyMMSIReuse)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 55, active[0].RiskScoreComponent)
}

func TestDetectMMSIReuseSkipsPlausibleSpeed(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "229999999"})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPoint(t, s, "v1", base, 0, 0, nil, nil)
	seedPoint(t, s, "v1", base.Add(time.Hour), 0.1, 0.1, nil, nil)

	d := New(s, testCfg(), nil)
	n, err := d.DetectMMSIReuse(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDetectMMSIReuseIsIdempotent(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "229999999"})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPoint(t, s, "v1", base, 0, 0, nil, nil)
	seedPoint(t, s, "v1", base.Add(30*time.Minute), 0, 1.667, nil, nil)

	d := New(s, testCfg(), nil)
	_, err := d.DetectMMSIReuse(context.Background(), "v1")
	require.NoError(t, err)

	n, err := d.DetectMMSIReuse(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
