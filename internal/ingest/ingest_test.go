package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/store/memstore"
)

func TestIngestRowsAcceptsValidRowsAndRejectsInvalidOnes(t *testing.T) {
	s := memstore.New()
	ig := New(s, nil)
	ctx := context.Background()

	rows := []Raw{
		{MMSI: "636017000", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Lat: 10, Lon: 20, Source: "terrestrial"},
		{MMSI: "bad", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Lat: 10, Lon: 20, Source: "terrestrial"},
	}

	res, err := ig.IngestRows(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 1, res.PointsInserted)
}

func TestIngestRowsIsIdempotentOnRepeatedCSVImport(t *testing.T) {
	s := memstore.New()
	ig := New(s, nil)
	ctx := context.Background()

	rows := []Raw{
		{MMSI: "636017000", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Lat: 10, Lon: 20, Source: "csv_import"},
	}

	first, err := ig.IngestRows(ctx, rows)
	require.NoError(t, err)
	second, err := ig.IngestRows(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, first.PointsInserted)
	assert.Equal(t, 1, second.PointsIgnored, "identical source re-ingest must be ignored, not duplicated")

	vessels, err := s.ListVessels(ctx, true)
	require.NoError(t, err)
	assert.Len(t, vessels, 1)
}

func TestIngestRowsReplacesPointOnHigherQualitySource(t *testing.T) {
	s := memstore.New()
	ig := New(s, nil)
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ig.IngestRows(ctx, []Raw{{MMSI: "636017000", Timestamp: ts, Lat: 10, Lon: 20, Source: "csv_import"}})
	require.NoError(t, err)

	res, err := ig.IngestRows(ctx, []Raw{{MMSI: "636017000", Timestamp: ts, Lat: 10, Lon: 20, Source: "satellite"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PointsReplaced)

	v, err := s.GetVesselByMMSI(ctx, "636017000")
	require.NoError(t, err)
	pts, err := s.ListAISPoints(ctx, v.VesselID, ts, ts)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, "satellite", pts[0].Source)
}
