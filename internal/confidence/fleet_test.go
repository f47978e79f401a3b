package confidence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/scoring"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func seedVesselWithOwner(t *testing.T, s *memstore.Store, id, owner, flag string) model.Vessel {
	t.Helper()
	v := model.Vessel{VesselID: id, MMSI: id, Name: id, Owner: owner, Flag: flag}
	require.NoError(t, s.CreateVessel(context.Background(), &v))
	return v
}

func TestClusterByOwnerGroupsExactAndFuzzyNames(t *testing.T) {
	vessels := []model.Vessel{
		{VesselID: "v1", Owner: "Arctic Shipping Ltd"},
		{VesselID: "v2", Owner: "Arctic Shiping Ltd"}, // one-letter typo, fuzzy match
		{VesselID: "v3", Owner: "Baltic Freight Co"},
		{VesselID: "v4", Owner: ""},
	}
	clusters := clusterByOwner(vessels, 85)

	var arcticCluster []model.Vessel
	for _, members := range clusters {
		for _, m := range members {
			if m.VesselID == "v1" {
				arcticCluster = members
			}
		}
	}
	require.NotNil(t, arcticCluster)
	assert.Len(t, arcticCluster, 2)
}

func TestAnalyzeRaisesSTSConcentration(t *testing.T) {
	s := memstore.New()
	for i := 0; i < 3; i++ {
		id := "v" + string(rune('1'+i))
		seedVesselWithOwner(t, s, id, "Shadow Fleet Holdings", "RU")
		require.NoError(t, s.CreateSTSEvent(context.Background(), &model.StsTransferEvent{
			Vessel1ID: id, Vessel2ID: "other", DetectionType: model.StsDarkDark,
			StartUTC: time.Now().UTC().Add(-time.Hour), EndUTC: time.Now().UTC(),
		}))
	}

	a := NewFleetAnalyzer(s, scoring.FleetAnalysisConfig{OwnerFuzzyMinSimilarity: 85})
	res, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClustersEvaluated)
	assert.GreaterOrEqual(t, res.AlertsRaised, 1)

	alert, err := s.GetOpenFleetAlert(context.Background(), "Shadow Fleet Holdings|sts_concentration")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.True(t, alert.IsOpen)
}

func TestAnalyzeDedupesAlreadyOpenAlert(t *testing.T) {
	s := memstore.New()
	for i := 0; i < 3; i++ {
		id := "v" + string(rune('1'+i))
		seedVesselWithOwner(t, s, id, "Shadow Fleet Holdings", "RU")
		require.NoError(t, s.CreateSTSEvent(context.Background(), &model.StsTransferEvent{
			Vessel1ID: id, Vessel2ID: "other", DetectionType: model.StsDarkDark,
			StartUTC: time.Now().UTC().Add(-time.Hour), EndUTC: time.Now().UTC(),
		}))
	}

	a := NewFleetAnalyzer(s, scoring.FleetAnalysisConfig{})
	_, err := a.Analyze(context.Background())
	require.NoError(t, err)
	res2, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res2.AlertsRaised)
}

func TestAnalyzeRaisesSharedManagerAcrossDistinctOwners(t *testing.T) {
	s := memstore.New()
	v1 := seedVesselWithOwner(t, s, "v1", "Owner One Ltd", "PA")
	v1.Manager = "Opaque Ship Management FZE"
	require.NoError(t, s.UpdateVessel(context.Background(), &v1))
	v2 := seedVesselWithOwner(t, s, "v2", "Blue Horizon Tankers", "PA")
	v2.Manager = "Opaque Ship Management FZE"
	require.NoError(t, s.UpdateVessel(context.Background(), &v2))

	a := NewFleetAnalyzer(s, scoring.FleetAnalysisConfig{})
	res, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ClustersEvaluated) // distinct owners, no fuzzy match -> no owner cluster
	assert.Equal(t, 1, res.AlertsRaised)       // shared_manager pass runs across the whole fleet, not per cluster

	alert, err := s.GetOpenFleetAlert(context.Background(), "OPAQUE SHIP MANAGEMENT FZE|shared_manager")
	require.NoError(t, err)
	require.NotNil(t, alert)
}

func TestAnalyzeSkipsSingleVesselClusters(t *testing.T) {
	s := memstore.New()
	seedVesselWithOwner(t, s, "v1", "Solo Shipping", "NO")

	a := NewFleetAnalyzer(s, scoring.FleetAnalysisConfig{})
	res, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ClustersEvaluated)
}
