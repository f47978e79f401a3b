package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
)

func TestUpsertAISPointReplacesOnHigherSourceQuality(t *testing.T) {
	s := New()
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	inserted, err := s.UpsertAISPoint(ctx, &model.AISPoint{VesselID: "v1", TimestampUTC: ts, Source: "csv_import"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.UpsertAISPoint(ctx, &model.AISPoint{VesselID: "v1", TimestampUTC: ts, Source: "terrestrial"})
	require.NoError(t, err)
	assert.True(t, inserted, "higher-quality source must replace")

	inserted, err = s.UpsertAISPoint(ctx, &model.AISPoint{VesselID: "v1", TimestampUTC: ts, Source: "csv_import"})
	require.NoError(t, err)
	assert.False(t, inserted, "lower-quality duplicate must be ignored")

	pts, err := s.ListAISPoints(ctx, "v1", ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, "terrestrial", pts[0].Source)
}

func TestListVesselsExcludesAbsorbedByDefault(t *testing.T) {
	s := New()
	ctx := context.Background()
	absorbedInto := "v1"

	require.NoError(t, s.CreateVessel(ctx, &model.Vessel{VesselID: "v1", MMSI: "111"}))
	require.NoError(t, s.CreateVessel(ctx, &model.Vessel{VesselID: "v2", MMSI: "222", MergedIntoVesselID: &absorbedInto}))

	active, err := s.ListVessels(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := s.ListVessels(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRewriteOwnedRowsMovesEveryFKTable(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateGap(ctx, &model.AISGapEvent{GapID: "g1", VesselID: "from"}))
	require.NoError(t, s.CreateLoiteringEvent(ctx, &model.LoiteringEvent{VesselID: "from"}))
	require.NoError(t, s.CreateSTSEvent(ctx, &model.StsTransferEvent{Vessel1ID: "from", Vessel2ID: "other", StartUTC: time.Now()}))

	rewrites, err := s.RewriteOwnedRows(ctx, "from", "to")
	require.NoError(t, err)

	byTable := map[string]int{}
	for _, r := range rewrites {
		byTable[r.Table] = r.RowCount
	}
	assert.Equal(t, 1, byTable["ais_gap_events"])
	assert.Equal(t, 1, byTable["loitering_events"])
	assert.Equal(t, 1, byTable["sts_transfer_events.vessel_1_id"])

	gap, err := s.GetGap(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "to", gap.VesselID)
}

func TestRestoreOwnedRowsTouchesOnlySnapshottedKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateGap(ctx, &model.AISGapEvent{GapID: "g-absorbed", VesselID: "from"}))
	require.NoError(t, s.CreateGap(ctx, &model.AISGapEvent{GapID: "g-native", VesselID: "to"}))

	rewrites, err := s.RewriteOwnedRows(ctx, "from", "to")
	require.NoError(t, err)

	require.NoError(t, s.RestoreOwnedRows(ctx, rewrites, "from"))

	absorbed, err := s.GetGap(ctx, "g-absorbed")
	require.NoError(t, err)
	assert.Equal(t, "from", absorbed.VesselID)

	native, err := s.GetGap(ctx, "g-native")
	require.NoError(t, err)
	assert.Equal(t, "to", native.VesselID, "rows never snapshotted must not move")
}

func TestRestoreOwnedRowsRejectsUnknownTable(t *testing.T) {
	s := New()
	err := s.RestoreOwnedRows(context.Background(), []model.MergeTableRewrite{
		{Table: "no_such_table", RowKeys: []string{"k"}},
	}, "v1")
	assert.Error(t, err)
}

func TestGetVesselNotFoundReturnsNilNil(t *testing.T) {
	s := New()
	v, err := s.GetVessel(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGetOpenFleetAlertDedup(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateFleetAlert(ctx, &model.FleetAlert{Dedup: "owner1:STS_CONCENTRATION", IsOpen: true}))

	a, err := s.GetOpenFleetAlert(ctx, "owner1:STS_CONCENTRATION")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.IsOpen)

	none, err := s.GetOpenFleetAlert(ctx, "owner2:STS_CONCENTRATION")
	require.NoError(t, err)
	assert.Nil(t, none)
}
