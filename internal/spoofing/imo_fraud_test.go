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

const validIMO1 = "9074729"

// validIMONearMiss differs from validIMO1 in exactly one digit (position 6) and is
// itself checksum-valid, exercising the near-miss path's oneDigitApart/validIMO gates.
const validIMONearMiss = "9074779"

func TestDwtWithinTolerance(t *testing.T) {
	assert.True(t, dwtWithinTolerance(100000, 110000, 0.2))
	assert.False(t, dwtWithinTolerance(100000, 200000, 0.2))
}

func TestDetectIMOFraudFlagsSimultaneousUse(t *testing.T) {
	s := memstore.New()
	imo := validIMO1
	dwt1, dwt2 := 100000, 105000
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000", IMO: &imo, VesselType: "Tanker", Deadweight: &dwt1})
	seedVessel(t, s, &model.Vessel{VesselID: "v2", MMSI: "229999888", IMO: &imo, VesselType: "Tanker", Deadweight: &dwt2})

	now := time.Now().UTC()
	seedPoint(t, s, "v1", now.Add(-time.Hour), 0, 0, nil, nil)
	// Far enough from v1 at nearly the same time to be physically impossible.
	seedPoint(t, s, "v2", now.Add(-time.Hour), 40, 40, nil, nil)

	d := New(s, testCfg(), nil)
	n, err := d.DetectIMOFraud(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyIMOFraud)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 45, active[0].RiskScoreComponent)
}

func TestDetectIMOFraudSkipsVesselWithoutIMO(t *testing.T) {
	s := memstore.New()
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000"})

	d := New(s, testCfg(), nil)
	n, err := d.DetectIMOFraud(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDetectIMOFraudSkipsNearMissWithoutSuspiciousPeer(t *testing.T) {
	s := memstore.New()
	imo1, imo2 := validIMO1, validIMONearMiss
	dwt1, dwt2 := 100000, 101000
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000", IMO: &imo1, VesselType: "Tanker", Deadweight: &dwt1})
	seedVessel(t, s, &model.Vessel{VesselID: "v2", MMSI: "229999888", IMO: &imo2, VesselType: "Tanker", Deadweight: &dwt2})

	d := New(s, testCfg(), nil)
	n, err := d.DetectIMOFraud(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "v2 carries no anomaly or watchlist entry, so it is not yet suspicious")
}

func TestDetectIMOFraudFlagsNearMissWithWatchlistedPeer(t *testing.T) {
	s := memstore.New()
	imo1, imo2 := validIMO1, validIMONearMiss
	dwt1, dwt2 := 100000, 101000
	seedVessel(t, s, &model.Vessel{VesselID: "v1", MMSI: "636017000", IMO: &imo1, VesselType: "Tanker", Deadweight: &dwt1})
	seedVessel(t, s, &model.Vessel{VesselID: "v2", MMSI: "229999888", IMO: &imo2, VesselType: "Tanker", Deadweight: &dwt2})
	require.NoError(t, s.AddWatchlistEntry(context.Background(), &model.VesselWatchlist{
		WatchlistID: "w1", VesselID: "v2", Source: "OFAC", Reason: "sanctions", AddedAt: time.Now().UTC(), IsActive: true,
	}))

	d := New(s, testCfg(), nil)
	n, err := d.DetectIMOFraud(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListActiveAnomaliesByVessel(context.Background(), "v1", model.AnomalyIMOFraud)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 20, active[0].RiskScoreComponent)
}
