package outage

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

func seedGap(t *testing.T, s *memstore.Store, vesselID, corridorID string, start time.Time) model.AISGapEvent {
	t.Helper()
	g := &model.AISGapEvent{
		VesselID:         vesselID,
		OriginalVesselID: vesselID,
		GapStartUTC:      start,
		GapEndUTC:        start.Add(4 * time.Hour),
		DurationMinutes:  240,
		CorridorID:       &corridorID,
		Status:           model.GapStatusNew,
	}
	require.NoError(t, s.CreateGap(context.Background(), g))
	return *g
}

// TestDetectOutagesScenario implements spec.md §8 scenario 6: 8 distinct vessels all
// emit gaps starting within the same 2h bucket in one corridor whose P95 baseline is 2;
// the cluster exceeds 3xP95=6 and clears the 5-vessel floor, none of those vessels have
// spoofing/STS within +-6h, and fewer than 30% are previously high-risk, so all 8 gaps
// are marked is_feed_outage and none are scored.
func TestDetectOutagesScenario(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.UpsertBaseline(context.Background(), &model.CorridorGapBaseline{
		CorridorID: "baltic-export", P95Count: 2, MeanCount: 1,
	}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var gapIDs []string
	for i := 0; i < 8; i++ {
		vesselID := "v" + string(rune('a'+i))
		g := seedGap(t, s, vesselID, "baltic-export", base.Add(time.Duration(i)*time.Minute))
		gapIDs = append(gapIDs, g.GapID)
	}

	d := New(s, config.DetectorsConfig{}, nil)
	res, err := d.DetectOutages(context.Background(), base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClustersSuppressed)
	assert.Equal(t, 8, res.GapsSuppressed)

	for _, id := range gapIDs {
		g, err := s.GetGap(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, g.IsFeedOutage)
		assert.Equal(t, 0, g.RiskScore)
	}
}

func TestDetectOutagesBelowThresholdDoesNotSuppress(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.UpsertBaseline(context.Background(), &model.CorridorGapBaseline{
		CorridorID: "baltic-export", P95Count: 10, MeanCount: 5,
	}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		vesselID := "v" + string(rune('a'+i))
		seedGap(t, s, vesselID, "baltic-export", base.Add(time.Duration(i)*time.Minute))
	}

	d := New(s, config.DetectorsConfig{}, nil)
	res, err := d.DetectOutages(context.Background(), base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ClustersSuppressed)
	assert.Equal(t, 0, res.GapsSuppressed)
}

func TestDetectOutagesAntiDecoyBlocksSuppression(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.UpsertBaseline(context.Background(), &model.CorridorGapBaseline{
		CorridorID: "baltic-export", P95Count: 1, MeanCount: 1,
	}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var vesselIDs []string
	for i := 0; i < 6; i++ {
		vesselID := "v" + string(rune('a'+i))
		vesselIDs = append(vesselIDs, vesselID)
		seedGap(t, s, vesselID, "baltic-export", base.Add(time.Duration(i)*time.Minute))
	}
	// 3 of 6 (50%) already carry a high-risk scored gap, over the 30% anti-decoy ratio.
	for _, vesselID := range vesselIDs[:3] {
		require.NoError(t, s.CreateGap(context.Background(), &model.AISGapEvent{
			VesselID: vesselID, OriginalVesselID: vesselID,
			GapStartUTC: base.Add(-48 * time.Hour), GapEndUTC: base.Add(-47 * time.Hour),
			RiskScore: 80, Status: model.GapStatusUnderReview,
		}))
	}

	d := New(s, config.DetectorsConfig{}, nil)
	res, err := d.DetectOutages(context.Background(), base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ClustersSuppressed)
}

func TestDetectOutagesEvasionExcludesSingleGap(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.UpsertBaseline(context.Background(), &model.CorridorGapBaseline{
		CorridorID: "baltic-export", P95Count: 0, MeanCount: 0,
	}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var gapIDs []string
	for i := 0; i < 5; i++ {
		vesselID := "v" + string(rune('a'+i))
		g := seedGap(t, s, vesselID, "baltic-export", base.Add(time.Duration(i)*time.Minute))
		gapIDs = append(gapIDs, g.GapID)
	}
	// vA has a spoofing anomaly inside the +-6h evasion window: its gap must survive
	// unmarked even though the rest of the cluster is suppressed.
	require.NoError(t, s.CreateSpoofingAnomaly(context.Background(), &model.SpoofingAnomaly{
		VesselID: "va", AnomalyType: model.AnomalyMMSIReuse,
		StartUTC: base.Add(time.Hour), EndUTC: base.Add(time.Hour), IsActive: true,
	}))

	d := New(s, config.DetectorsConfig{}, nil)
	res, err := d.DetectOutages(context.Background(), base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClustersSuppressed)
	assert.Equal(t, 4, res.GapsSuppressed)

	excluded, err := s.GetGap(context.Background(), gapIDs[0])
	require.NoError(t, err)
	assert.False(t, excluded.IsFeedOutage)

	for _, id := range gapIDs[1:] {
		g, err := s.GetGap(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, g.IsFeedOutage)
	}
}

func TestMaintainBaselinesComputesMeanAndP95(t *testing.T) {
	s := memstore.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bucketCounts := []int{1, 2, 3, 4, 5}
	for bi, n := range bucketCounts {
		for i := 0; i < n; i++ {
			seedGap(t, s, "v"+string(rune('a'+i)), "baltic-export", base.Add(time.Duration(bi)*2*time.Hour))
		}
	}

	d := New(s, config.DetectorsConfig{}, nil)
	updated, err := d.MaintainBaselines(context.Background(), base.Add(11*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	baseline, err := s.GetBaseline(context.Background(), "baltic-export")
	require.NoError(t, err)
	require.NotNil(t, baseline)
	assert.Equal(t, 5, baseline.SampleBuckets)
	assert.InDelta(t, 3.0, baseline.MeanCount, 0.001)
	assert.InDelta(t, 4.8, baseline.P95Count, 0.001)
}

func TestPercentileLinearInterpolation(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 0.95))
	assert.Equal(t, 5.0, percentile([]float64{5}, 0.95))
	assert.InDelta(t, 4.8, percentile([]float64{1, 2, 3, 4, 5}, 0.95), 0.001)
}

func TestClassifyCoverageQuality(t *testing.T) {
	assert.Equal(t, model.CoverageUnknown, classifyCoverageQuality(nil))
	assert.Equal(t, model.CoverageNone, classifyCoverageQuality(&model.Corridor{IsJammingZone: true}))
	assert.Equal(t, model.CoverageGood, classifyCoverageQuality(&model.Corridor{Name: "Danish Strait Transit"}))
	assert.Equal(t, model.CoveragePoor, classifyCoverageQuality(&model.Corridor{Name: "Arctic Northern Route"}))
	assert.Equal(t, model.CoverageModerate, classifyCoverageQuality(&model.Corridor{Name: "Gulf Transit Lane"}))
}

func TestTagCoverageQualityOnlyTagsUntagged(t *testing.T) {
	s := memstore.New()
	s.SeedCorridor(model.Corridor{CorridorID: "baltic-export", Name: "Baltic Export Strait", CorridorType: model.CorridorExportRoute})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := seedGap(t, s, "v1", "baltic-export", base)

	d := New(s, config.DetectorsConfig{}, []model.Corridor{{CorridorID: "baltic-export", Name: "Baltic Export Strait"}})
	n, err := d.TagCoverageQuality(context.Background(), base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tagged, err := s.GetGap(context.Background(), g.GapID)
	require.NoError(t, err)
	assert.Equal(t, model.CoverageGood, tagged.CoverageQuality)
}
