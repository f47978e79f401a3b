package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownMarshalPreservesInsertionOrder(t *testing.T) {
	b := NewBreakdown()
	b.Add("gap_duration_24h_plus", 50)
	b.Add("dark_vessel_in_corridor", 35)
	b.Add("legitimacy_ig_pi_club", -5)
	b.SetNote("_voyage_window_fallback", "default_30d_used")
	b.Add("_final_score", 80)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t,
		`{"gap_duration_24h_plus":50,"dark_vessel_in_corridor":35,"legitimacy_ig_pi_club":-5,"_voyage_window_fallback":"default_30d_used","_final_score":80}`,
		string(data))
}

func TestBreakdownRoundTrip(t *testing.T) {
	b := NewBreakdown()
	b.Add("gap_duration_8_16h", 20)
	b.SetNote("_corridor_multiplier", "2.0")
	b.Add("watchlist_ofac", 30)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	restored := NewBreakdown()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, b.Keys(), restored.Keys())
	v, ok := restored.Get("watchlist_ofac")
	assert.True(t, ok)
	assert.Equal(t, 30, v)
	note, ok := restored.GetNote("_corridor_multiplier")
	assert.True(t, ok)
	assert.Equal(t, "2.0", note)
}

func TestBreakdownAddOverwriteKeepsPosition(t *testing.T) {
	b := NewBreakdown()
	b.Add("first", 1)
	b.Add("second", 2)
	b.Add("first", 10)

	assert.Equal(t, []string{"first", "second"}, b.Keys())
	v, _ := b.Get("first")
	assert.Equal(t, 10, v)
}

func TestBreakdownSumIncludesDeductions(t *testing.T) {
	b := NewBreakdown()
	b.Add("gap_duration_16_24h", 30)
	b.Add("legitimacy_no_gaps_90d", -10)
	b.SetNote("_vessel_size_multiplier", "1.5")

	assert.Equal(t, 20, b.Sum())
}

func TestIsBookkeeping(t *testing.T) {
	assert.True(t, IsBookkeeping("_final_score"))
	assert.False(t, IsBookkeeping("gap_duration_24h_plus"))
	assert.False(t, IsBookkeeping(""))
}
