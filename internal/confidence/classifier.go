// Package confidence aggregates scored evidence per vessel into an analyst-facing
// confidence label and clusters vessels by ownership to surface fleet-level patterns.
package confidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// categoryPrefixes maps a risk_breakdown_json key prefix to the evidence category it
// feeds. Matched longest-prefix-first so "dark_vessel_corridor" and "dark_vessel" both
// resolve correctly regardless of declaration order. Grounded on the literal keys
// internal/scoring/engine.go writes via bd.Add.
var categoryPrefixes = map[string]model.EvidenceCategory{
	"gap_duration":         model.CategoryAISGap,
	"speed_anomaly":        model.CategoryAISGap,
	"movement_envelope":    model.CategoryAISGap,
	"gap_frequency":        model.CategoryAISGap,
	"no_gaps":              model.CategoryAISGap,
	"multi_gap_bonus":      model.CategoryAISGap,
	"dark_vessel":          model.CategoryAISGap,
	"dark_zone":            model.CategoryAISGap,
	"spoofing_anomalies":   model.CategorySpoofing,
	"sts_transfer":         model.CategorySTSTransfer,
	"vessel_age":           model.CategoryIdentityChange,
	"new_mmsi":             model.CategoryIdentityChange,
	"flag_risk":            model.CategoryIdentityChange,
	"loitering":            model.CategoryLoitering,
	"sanctions_network":    model.CategoryFleetPattern,
	"russian_port_call":    model.CategoryFleetPattern,
	"watchlist":            model.CategoryWatchlist,
	"psc_detentions":       model.CategoryIdentityChange,
	"pi_lapsed":            model.CategoryIdentityChange,
	"eu_port_call":         model.CategoryFleetPattern,
	"ig_pi_club":           model.CategoryFleetPattern,
}

// categoryFor resolves a breakdown key to its evidence category via longest matching
// prefix, mirroring a small trie without the indirection a literal trie would add for
// a table this size.
func categoryFor(key string) (model.EvidenceCategory, bool) {
	best := ""
	var cat model.EvidenceCategory
	for prefix, c := range categoryPrefixes {
		if strings.HasPrefix(key, prefix) && len(prefix) > len(best) {
			best, cat = prefix, c
		}
	}
	return cat, best != ""
}

// VesselConfidence is the per-vessel classification result.
type VesselConfidence struct {
	VesselID   string
	Label      model.ConfidenceLabel
	MaxScore   int
	Categories map[model.EvidenceCategory]int
}

// Classifier aggregates a vessel's scored gaps into a confidence label.
type Classifier struct {
	store store.Store
}

// New returns a Classifier backed by s.
func New(s store.Store) *Classifier {
	return &Classifier{store: s}
}

// Result tallies one ClassifyAll run.
type Result struct {
	VesselsClassified int
	Errors            []string
}

// ClassifyAll classifies every non-absorbed vessel and returns the tally; callers that
// need the per-vessel labels should call ClassifyVessel directly.
func (c *Classifier) ClassifyAll(ctx context.Context) (Result, error) {
	var res Result
	vessels, err := c.store.ListVessels(ctx, false)
	if err != nil {
		return res, err
	}
	for _, v := range vessels {
		if _, err := c.ClassifyVessel(ctx, v.VesselID); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("vessel %s: %v", v.VesselID, err))
			continue
		}
		res.VesselsClassified++
	}
	return res, nil
}

// ClassifyVessel aggregates category points across every scored gap belonging to
// vesselID and labels it per spec's literal thresholds:
//
//	CONFIRMED: analyst verified (a gap marked DOCUMENTED), or any active watchlist entry.
//	HIGH:      max gap score >= 76 AND (>= 2 categories with signal OR any single category >= 80).
//	MEDIUM:    max gap score >= 51 AND any single category >= 30.
//	LOW:       max gap score 21-50.
//	NONE:      < 21.
func (c *Classifier) ClassifyVessel(ctx context.Context, vesselID string) (VesselConfidence, error) {
	vc := VesselConfidence{VesselID: vesselID, Label: model.ConfidenceNone, Categories: map[model.EvidenceCategory]int{}}

	watchlist, err := c.store.ListActiveWatchlist(ctx, vesselID)
	if err != nil {
		return vc, err
	}
	confirmed := len(watchlist) > 0

	gaps, err := c.store.ListScoredGapsByVessel(ctx, vesselID)
	if err != nil {
		return vc, err
	}

	for _, g := range gaps {
		if g.Status == model.GapStatusDocumented {
			confirmed = true
		}
		if g.RiskScore > vc.MaxScore {
			vc.MaxScore = g.RiskScore
		}
		if g.RiskBreakdownJSON == nil {
			continue
		}
		for _, key := range g.RiskBreakdownJSON.Keys() {
			if model.IsBookkeeping(key) {
				continue
			}
			points, ok := g.RiskBreakdownJSON.Get(key)
			if !ok || points <= 0 {
				continue
			}
			cat, ok := categoryFor(key)
			if !ok {
				continue
			}
			vc.Categories[cat] += points
		}
	}

	vc.Label = label(confirmed, vc.MaxScore, vc.Categories)
	return vc, nil
}

func label(confirmed bool, maxScore int, categories map[model.EvidenceCategory]int) model.ConfidenceLabel {
	if confirmed {
		return model.ConfidenceConfirmed
	}

	maxCategory := 0
	signalCategories := 0
	for _, pts := range categories {
		if pts > 0 {
			signalCategories++
		}
		if pts > maxCategory {
			maxCategory = pts
		}
	}

	switch {
	case maxScore >= 76 && (signalCategories >= 2 || maxCategory >= 80):
		return model.ConfidenceHigh
	case maxScore >= 51 && maxCategory >= 30:
		return model.ConfidenceMedium
	case maxScore >= 21:
		return model.ConfidenceLow
	default:
		return model.ConfidenceNone
	}
}
