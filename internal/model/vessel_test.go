package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dwt(n int) *int { return &n }

func TestClassifyDWTBrackets(t *testing.T) {
	assert.Equal(t, DWTBracketUnknown, ClassifyDWT(nil))
	assert.Equal(t, DWTBracketVLCC, ClassifyDWT(dwt(308000)))
	assert.Equal(t, DWTBracketSuezmax, ClassifyDWT(dwt(150000)))
	assert.Equal(t, DWTBracketAframax, ClassifyDWT(dwt(90000)))
	assert.Equal(t, DWTBracketGeneral, ClassifyDWT(dwt(30000)))
}

func TestMaxSpeedKnByBracket(t *testing.T) {
	assert.Equal(t, 14.0, MaxSpeedKn(DWTBracketVLCC))
	assert.Equal(t, 15.0, MaxSpeedKn(DWTBracketSuezmax))
	assert.Equal(t, 15.0, MaxSpeedKn(DWTBracketAframax))
	assert.Equal(t, 16.0, MaxSpeedKn(DWTBracketGeneral))
	assert.Equal(t, 14.0, MaxSpeedKn(DWTBracketUnknown))
}

func TestVesselIsAbsorbed(t *testing.T) {
	v := Vessel{VesselID: "va"}
	assert.False(t, v.IsAbsorbed())

	target := "vb"
	v.MergedIntoVesselID = &target
	assert.True(t, v.IsAbsorbed())
}

func TestGapDurationMatchesEndpoints(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	g := AISGapEvent{GapStartUTC: start, GapEndUTC: start.Add(26 * time.Hour), DurationMinutes: 1560}
	assert.True(t, g.DurationMatchesEndpoints())

	g.DurationMinutes = 1500
	assert.False(t, g.DurationMatchesEndpoints())

	// Sub-minute remainders floor, not round.
	g = AISGapEvent{GapStartUTC: start, GapEndUTC: start.Add(90*time.Minute + 59*time.Second), DurationMinutes: 90}
	assert.True(t, g.DurationMatchesEndpoints())
}

func TestGapStatusValid(t *testing.T) {
	assert.True(t, GapStatusNew.Valid())
	assert.True(t, GapStatusDismissed.Valid())
	assert.False(t, GapStatus("CLOSED").Valid())
}

func TestSourceQualityRanking(t *testing.T) {
	assert.Less(t, SourceQuality("csv_import"), SourceQuality("terrestrial"))
	assert.Less(t, SourceQuality("terrestrial"), SourceQuality("aisstream"))
	assert.Less(t, SourceQuality("aisstream"), SourceQuality("satellite"))
	assert.Less(t, SourceQuality("satellite"), SourceQuality("exactearth"))
	assert.Equal(t, SourceQuality("exactearth"), SourceQuality("spire"))
}
