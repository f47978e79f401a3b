package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsShipMMSIExcludesSpecialForms(t *testing.T) {
	assert.False(t, IsShipMMSI("111234567"))
	assert.False(t, IsShipMMSI("992345678"))
	assert.False(t, IsShipMMSI("003456789"))
	assert.True(t, IsShipMMSI("636017000"))
}

func TestDeriveFlagReturnsKnownMID(t *testing.T) {
	flag, ok := DeriveFlag("636017000")
	require := assert.New(t)
	require.True(ok)
	require.Equal("LR", flag)
}

func TestDeriveFlagRejectsNonShipMMSI(t *testing.T) {
	_, ok := DeriveFlag("111234567")
	assert.False(t, ok)
}

func TestDeriveFlagRejectsWrongLength(t *testing.T) {
	_, ok := DeriveFlag("12345")
	assert.False(t, ok)
}

func TestClassifyMIDUnallocatedTier(t *testing.T) {
	tier := ClassifyMID("280123456", "tanker")
	assert.Equal(t, MIDTierUnallocated, tier)
}

func TestClassifyMIDLandlockedTankerTier(t *testing.T) {
	tier := ClassifyMID("206123456", "Crude Oil Tanker")
	assert.Equal(t, MIDTierLandlockedTanker, tier)
}

func TestClassifyMIDMicroTerritoryTier(t *testing.T) {
	tier := ClassifyMID("208123456", "Bulk Carrier")
	assert.Equal(t, MIDTierMicroTerritory, tier)
}

func TestClassifyMIDNoAnomalyForOrdinaryFlag(t *testing.T) {
	tier := ClassifyMID("636017000", "Crude Oil Tanker")
	assert.Equal(t, MIDTierNone, tier)
}
