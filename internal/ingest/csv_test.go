package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVParsesNOAAStyleHeaders(t *testing.T) {
	data := "MMSI,BaseDateTime,LAT,LON,SOG,COG,Heading,VesselName\n" +
		"636017000,2026-01-01T00:00:00,10.5,20.5,12.3,90,180,EXAMPLE VESSEL\n"

	rows, err := ParseCSV(strings.NewReader(data), "csv_import")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "636017000", r.MMSI)
	assert.Equal(t, "csv_import", r.Source)
	require.NotNil(t, r.SOG)
	assert.InDelta(t, 12.3, *r.SOG, 0.001)
	assert.Equal(t, "EXAMPLE VESSEL", r.Name)
}

func TestParseCSVErrorsOnMissingRequiredColumn(t *testing.T) {
	data := "MMSI,LAT,LON\n636017000,10,20\n"
	_, err := ParseCSV(strings.NewReader(data), "csv_import")
	assert.Error(t, err)
}

func TestParseCSVStripsIMOPrefix(t *testing.T) {
	data := "MMSI,BaseDateTime,LAT,LON,IMO\n636017000,2026-01-01T00:00:00,10,20,IMO9234567\n"
	rows, err := ParseCSV(strings.NewReader(data), "csv_import")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9234567", rows[0].IMO)
}
