package confidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func seedScoredGap(t *testing.T, s *memstore.Store, vesselID string, score int, keys map[string]int) model.AISGapEvent {
	t.Helper()
	bd := model.NewBreakdown()
	for k, v := range keys {
		bd.Add(k, v)
	}
	bd.Add("_final_score", score)
	g := &model.AISGapEvent{
		VesselID: vesselID, OriginalVesselID: vesselID,
		RiskScore: score, RiskBreakdownJSON: bd, Status: model.GapStatusUnderReview,
	}
	require.NoError(t, s.CreateGap(context.Background(), g))
	return *g
}

func TestClassifyVesselConfirmedByWatchlist(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.AddWatchlistEntry(context.Background(), &model.VesselWatchlist{
		VesselID: "v1", Source: "OFAC", IsActive: true,
	}))
	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceConfirmed, vc.Label)
}

func TestClassifyVesselConfirmedByDocumentedStatus(t *testing.T) {
	s := memstore.New()
	g := seedScoredGap(t, s, "v1", 40, map[string]int{"gap_duration_24h_plus": 40})
	g.Status = model.GapStatusDocumented
	require.NoError(t, s.UpdateGap(context.Background(), &g))

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceConfirmed, vc.Label)
}

func TestClassifyVesselHighBySingleCategory(t *testing.T) {
	s := memstore.New()
	seedScoredGap(t, s, "v1", 90, map[string]int{"gap_duration_24h_plus": 85})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, vc.Label)
	assert.Equal(t, 85, vc.Categories[model.CategoryAISGap])
}

func TestClassifyVesselHighByTwoCategories(t *testing.T) {
	s := memstore.New()
	seedScoredGap(t, s, "v1", 80, map[string]int{
		"gap_duration_24h_plus": 40,
		"sts_transfer":          20,
	})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, vc.Label)
}

func TestClassifyVesselMedium(t *testing.T) {
	s := memstore.New()
	seedScoredGap(t, s, "v1", 55, map[string]int{"gap_duration_24h_plus": 35})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceMedium, vc.Label)
}

func TestClassifyVesselMediumFailsWithoutCategoryThreshold(t *testing.T) {
	s := memstore.New()
	// max score clears 51 but no single category clears 30.
	seedScoredGap(t, s, "v1", 55, map[string]int{
		"gap_duration_24h_plus": 15,
		"sts_transfer":          15,
	})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceLow, vc.Label)
}

func TestClassifyVesselLow(t *testing.T) {
	s := memstore.New()
	seedScoredGap(t, s, "v1", 30, map[string]int{"gap_duration_12_24h": 30})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceLow, vc.Label)
}

func TestClassifyVesselNone(t *testing.T) {
	s := memstore.New()
	seedScoredGap(t, s, "v1", 10, map[string]int{"gap_duration_0_6h": 10})

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceNone, vc.Label)
}

func TestClassifyVesselSkipsBookkeepingAndDeductions(t *testing.T) {
	s := memstore.New()
	bd := model.NewBreakdown()
	bd.Add("gap_duration_24h_plus", 85)
	bd.Add("eu_port_call_deduction", -10)
	bd.SetNote("_voyage_window_fallback", "no_crea_match")
	bd.Add("_additive_subtotal", 75)
	require.NoError(t, s.CreateGap(context.Background(), &model.AISGapEvent{
		VesselID: "v1", OriginalVesselID: "v1", RiskScore: 90, RiskBreakdownJSON: bd,
		Status: model.GapStatusUnderReview,
	}))

	c := New(s)
	vc, err := c.ClassifyVessel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 85, vc.Categories[model.CategoryAISGap])
	_, hasFleetPattern := vc.Categories[model.CategoryFleetPattern]
	assert.False(t, hasFleetPattern)
}

func TestCategoryForLongestPrefixMatch(t *testing.T) {
	cat, ok := categoryFor("dark_vessel_corridor")
	require.True(t, ok)
	assert.Equal(t, model.CategoryAISGap, cat)

	_, ok = categoryFor("_final_score")
	assert.False(t, ok)
}
