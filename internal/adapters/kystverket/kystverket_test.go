package kystverket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineSingleFragmentPositionReport(t *testing.T) {
	d := NewDecoder()
	receivedAt := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	point, ok, err := d.DecodeLine("!AIVDM,1,1,,B,15M67FC000G?ufbE`FepT@3n00Sa,0*5C", "vessel-1", "terrestrial", receivedAt)

	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, point)
	assert.Equal(t, "vessel-1", point.VesselID)
	assert.Equal(t, "terrestrial", point.Source)
	assert.Equal(t, receivedAt, point.TimestampUTC)
	assert.InDelta(t, 0, point.Lat, 90)
	assert.InDelta(t, 0, point.Lon, 180)
}

func TestDecodeLineDropsLinePrefixBeforeSentinel(t *testing.T) {
	d := NewDecoder()
	_, ok, err := d.DecodeLine("2026-07-31T12:00:00Z !AIVDM,1,1,,B,15M67FC000G?ufbE`FepT@3n00Sa,0*5C", "vessel-1", "terrestrial", time.Now().UTC())

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecodeLineIgnoresNonVDMSentences(t *testing.T) {
	d := NewDecoder()
	point, ok, err := d.DecodeLine("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A", "vessel-1", "terrestrial", time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, point)
}

func TestDecodeLineIgnoresUnparseableNoise(t *testing.T) {
	d := NewDecoder()
	point, ok, err := d.DecodeLine("not a sentence at all", "vessel-1", "terrestrial", time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, point)
}

func TestDecodeLineWaitsForAllFragments(t *testing.T) {
	d := NewDecoder()

	point, ok, err := d.DecodeLine("!AIVDM,2,1,3,B,53m@FP01SJ<thHp6220`T4pN2222222222222216C1@@;:0@00000000000,0*24", "vessel-2", "satellite", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, point)

	point, ok, err = d.DecodeLine("!AIVDM,2,2,3,B,00000000000,2*24", "vessel-2", "satellite", time.Now().UTC())
	require.NoError(t, err)
	if ok {
		require.NotNil(t, point)
		assert.Equal(t, "vessel-2", point.VesselID)
	}
}

func TestPointFromReportDropsSentinelPosition(t *testing.T) {
	point, ok, err := pointFromReport("vessel-3", "terrestrial", time.Now().UTC(), 91, 181, 0, 0, 0)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, point)
}

func TestPointFromReportNilsSentinelSOGCOGHeading(t *testing.T) {
	point, ok, err := pointFromReport("vessel-4", "terrestrial", time.Now().UTC(), 55.0, 10.0, 102.3, 360.0, 511)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, point.SOG)
	assert.Nil(t, point.COG)
	assert.Nil(t, point.Heading)
}

func TestPointFromReportKeepsRealValues(t *testing.T) {
	point, ok, err := pointFromReport("vessel-5", "terrestrial", time.Now().UTC(), 55.5, 10.5, 12.3, 90.0, 180)

	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, point.SOG)
	require.NotNil(t, point.COG)
	require.NotNil(t, point.Heading)
	assert.InDelta(t, 12.3, *point.SOG, 0.001)
	assert.InDelta(t, 90.0, *point.COG, 0.001)
	assert.Equal(t, 180, *point.Heading)
}

func TestTrimToSentenceStartHandlesBothDelimiters(t *testing.T) {
	assert.Equal(t, "!AIVDM,1", trimToSentenceStart("prefix!AIVDM,1"))
	assert.Equal(t, "$GPRMC,1", trimToSentenceStart("prefix$GPRMC,1"))
	assert.Equal(t, "", trimToSentenceStart("no delimiter here"))
}
