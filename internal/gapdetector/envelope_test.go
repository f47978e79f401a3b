package gapdetector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
)

func sog(v float64) *float64 { return &v }
func cog(v float64) *float64 { return &v }

func TestBuildEnvelopeUsesLinearBelowTwoHours(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := model.AISPoint{Lat: 10, Lon: 10, TimestampUTC: base, SOG: sog(12), COG: cog(45)}
	cur := model.AISPoint{Lat: 10.2, Lon: 10.2, TimestampUTC: base.Add(90 * time.Minute)}

	env := BuildEnvelope("gap1", prev, cur, 16)
	assert.Equal(t, model.EnvelopeLinear, env.Method)
	require.Len(t, env.InterpolatedPositions, 2)
	assert.Contains(t, env.ConfidencePolygonWKT, "POLYGON((")
}

func TestBuildEnvelopeUsesSplineBetweenTwoAndSixHours(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := model.AISPoint{Lat: 10, Lon: 10, TimestampUTC: base, SOG: sog(14), COG: cog(90)}
	cur := model.AISPoint{Lat: 10.5, Lon: 11.2, TimestampUTC: base.Add(4 * time.Hour), SOG: sog(14), COG: cog(90)}

	env := BuildEnvelope("gap2", prev, cur, 16)
	assert.Equal(t, model.EnvelopeSpline, env.Method)
	assert.Len(t, env.InterpolatedPositions, 16)
	assert.Greater(t, env.SemiMajorAxisNM, 0.0)
}

func TestBuildEnvelopeUsesMultiScenarioAboveSixHours(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := model.AISPoint{Lat: 10, Lon: 10, TimestampUTC: base}
	cur := model.AISPoint{Lat: 12, Lon: 12, TimestampUTC: base.Add(20 * time.Hour)}

	env := BuildEnvelope("gap3", prev, cur, 16)
	assert.Equal(t, model.EnvelopeKalman, env.Method)
	assert.NotEmpty(t, env.InterpolatedPositions)
	assert.Contains(t, env.ConfidencePolygonWKT, "POLYGON((")
	assert.Greater(t, env.SemiMajorAxisNM, env.SemiMinorAxisNM*0.0)
}

func TestBuildEnvelopeRatioMatchesGapRatio(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := model.AISPoint{Lat: 0, Lon: 0, TimestampUTC: base}
	// ~180 nm in 10 h against a 14 kn (140 nm) ceiling: ratio ~1.29.
	cur := model.AISPoint{Lat: 3, Lon: 0, TimestampUTC: base.Add(10 * time.Hour)}

	env := BuildEnvelope("gap4", prev, cur, 14)
	assert.InDelta(t, env.ActualGapDistanceNM/env.MaxPlausibleDistanceNM, env.Ratio, 0.0001)
	assert.Greater(t, env.Ratio, 1.1)
}
