// Package identity discovers likely-same-vessel pairs across MMSI changes, scores
// merge candidates, executes and reverses merges with full FK rewrite, and resolves
// an absorbed identity to its current canonical vessel.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/scoring"
	"github.com/radiancefleet/core/internal/store"
)

// anchorFuzzyFallback is used when config omits MergeFuzzyNameMinRatio.
const anchorFuzzyFallback = 85

// dwtToleranceFraction is the +/-15% band spec.md's weak identity-anchor bullet names
// for "similar vessel type + DWT within tolerance".
const dwtToleranceFraction = 0.15

// Engine discovers and resolves vessel-identity merge candidates.
type Engine struct {
	store     store.Store
	detectors config.DetectorsConfig
	merge     scoring.IdentityMergeConfig
	fp        FingerprintScorer
}

// NewEngine returns an Engine using the default diagonal-covariance fingerprint
// scorer. mergeCfg comes from the loaded risk-scoring coefficient file, not
// config.DetectorsConfig: the composite score it thresholds is a weighted blend of
// scoring-style coefficients, so it is tuned alongside them.
func NewEngine(s store.Store, detectors config.DetectorsConfig, mergeCfg scoring.IdentityMergeConfig) *Engine {
	return &Engine{store: s, detectors: detectors, merge: mergeCfg, fp: NewDiagonalFingerprintScorer(1.0)}
}

// WithFingerprintScorer swaps the fingerprint-similarity strategy.
func (e *Engine) WithFingerprintScorer(s FingerprintScorer) *Engine {
	e.fp = s
	return e
}

// Result tallies one DiscoverCandidates run.
type Result struct {
	CandidatesCreated int
	AutoMerged        int
	Errors            []string
}

type trackEndpoint struct {
	vessel model.Vessel
	first  *model.AISPoint
	last   *model.AISPoint
}

// DiscoverCandidates scans every non-absorbed vessel pair whose tracks could plausibly
// belong to the same hull under different MMSIs, within the configured candidate
// window, and persists a MergeCandidate for every pair scoring at or above the
// human-review threshold. Pairs clearing the auto-merge threshold are merged
// immediately.
func (e *Engine) DiscoverCandidates(ctx context.Context) (Result, error) {
	var res Result

	vessels, err := e.store.ListVessels(ctx, false)
	if err != nil {
		return res, err
	}

	windowDays := e.detectors.MergeCandidateWindowDays
	if windowDays <= 0 {
		windowDays = 180
	}
	window := time.Duration(windowDays) * 24 * time.Hour

	endpoints := make([]trackEndpoint, 0, len(vessels))
	for _, v := range vessels {
		pts, err := e.store.ListAISPoints(ctx, v.VesselID, time.Time{}, time.Now().UTC())
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("vessel %s: list points: %v", v.VesselID, err))
			continue
		}
		ep := trackEndpoint{vessel: v}
		if len(pts) > 0 {
			first, last := pts[0], pts[len(pts)-1]
			ep.first, ep.last = &first, &last
		}
		endpoints = append(endpoints, ep)
	}

	fuzzyMin := e.detectors.MergeFuzzyNameMinRatio
	if fuzzyMin <= 0 {
		fuzzyMin = anchorFuzzyFallback
	}

	for _, a := range endpoints {
		if a.last == nil {
			continue
		}
		for _, b := range endpoints {
			if a.vessel.VesselID == b.vessel.VesselID || b.first == nil {
				continue
			}
			gap := b.first.TimestampUTC.Sub(a.last.TimestampUTC)
			if gap <= 0 || gap > window {
				continue
			}

			cand := e.scorePair(ctx, a, b, gap, fuzzyMin)
			if cand == nil {
				continue
			}

			if err := e.store.CreateMergeCandidate(ctx, cand); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("candidate %s/%s: %v", cand.VesselAID, cand.VesselBID, err))
				continue
			}
			res.CandidatesCreated++

			if cand.CompositeScore >= e.merge.AutoMergeThreshold {
				if _, err := e.ExecuteMerge(ctx, cand.VesselAID, cand.VesselBID, &cand.CandidateID, "system:auto_merge"); err != nil {
					slog.Warn("identity: auto-merge failed, leaving candidate pending",
						"candidate_id", cand.CandidateID, "error", err)
					continue
				}
				now := time.Now().UTC()
				cand.Status = model.MergeCandidateAutoMerged
				cand.ResolvedAt = &now
				cand.ResolvedBy = "system:auto_merge"
				if err := e.store.UpdateMergeCandidate(ctx, cand); err != nil {
					res.Errors = append(res.Errors, fmt.Sprintf("candidate %s: mark auto-merged: %v", cand.CandidateID, err))
				}
				res.AutoMerged++
			}
		}
	}

	return res, nil
}

// scorePair scores one ordered (earlier, later) vessel pair. Returns nil when the pair
// fails RequireIdentityAnchor or scores below the human-review threshold — not
// "plausible" enough to even surface for analyst review.
func (e *Engine) scorePair(ctx context.Context, a, b trackEndpoint, gap time.Duration, fuzzyMin float64) *model.MergeCandidate {
	nameSim := nameSimilarity(a.vessel.Name, b.vessel.Name)
	anchorScore, hasAnchor := identityAnchorScore(a.vessel, b.vessel, nameSim, fuzzyMin)

	if e.detectors.RequireIdentityAnchor && !hasAnchor {
		return nil
	}

	proximity := proximityScore(a.vessel, a.last, b.first, gap)

	var fingerprintScore *float64
	fpWeight := e.merge.Weights.Fingerprint
	if fpWeight > 0 {
		fpA, _ := e.store.GetFingerprint(ctx, a.vessel.VesselID)
		fpB, _ := e.store.GetFingerprint(ctx, b.vessel.VesselID)
		if score, ok := e.fp.Score(fpA, fpB); ok {
			fingerprintScore = &score
		}
	}

	composite, weightSum := e.merge.Weights.Proximity*proximity, e.merge.Weights.Proximity
	composite += e.merge.Weights.IdentityAnchor * anchorScore
	weightSum += e.merge.Weights.IdentityAnchor
	composite += e.merge.Weights.NameSimilarity * nameSim
	weightSum += e.merge.Weights.NameSimilarity
	if fingerprintScore != nil {
		composite += e.merge.Weights.Fingerprint * (*fingerprintScore)
		weightSum += e.merge.Weights.Fingerprint
	}
	if weightSum > 0 {
		composite /= weightSum
	}

	if composite < e.merge.HumanReviewThreshold {
		return nil
	}

	return &model.MergeCandidate{
		VesselAID:           a.vessel.VesselID,
		VesselBID:           b.vessel.VesselID,
		ProximityScore:      proximity,
		IdentityAnchorScore: anchorScore,
		NameSimilarityScore: nameSim,
		FingerprintScore:    fingerprintScore,
		CompositeScore:      composite,
		Status:              model.MergeCandidatePending,
		DiscoveredAt:        time.Now().UTC(),
	}
}

// identityAnchorScore returns the strongest matching anchor: same IMO or call sign is
// strong (100); fuzzy name >= fuzzyMin is medium (60); same vessel type with DWT
// within dwtToleranceFraction is weak (30). hasAnchor mirrors RequireIdentityAnchor's
// "at least one of" gate.
func identityAnchorScore(a, b model.Vessel, nameSim, fuzzyMin float64) (score float64, hasAnchor bool) {
	if a.IMO != nil && b.IMO != nil && *a.IMO == *b.IMO && *a.IMO != "" {
		return 100, true
	}
	if a.CallSign != nil && b.CallSign != nil && *a.CallSign == *b.CallSign && *a.CallSign != "" {
		return 100, true
	}
	if nameSim >= fuzzyMin {
		return 60, true
	}
	if a.VesselType != "" && a.VesselType == b.VesselType && a.Deadweight != nil && b.Deadweight != nil {
		da, db := float64(*a.Deadweight), float64(*b.Deadweight)
		if da > 0 {
			diff := (db - da) / da
			if diff < 0 {
				diff = -diff
			}
			if diff <= dwtToleranceFraction {
				return 30, true
			}
		}
	}
	return 0, false
}

// proximityScore scores how plausible it is that vessel a's last broadcast position and
// vessel b's first broadcast position are the same hull, given the drift envelope a
// ship of a's size could cover in the elapsed gap. 100 is coincident; 0 is at or
// beyond the envelope boundary.
func proximityScore(a model.Vessel, last, first *model.AISPoint, gap time.Duration) float64 {
	if last == nil || first == nil {
		return 0
	}
	distNM := geo.HaversineNM(last.Lat, last.Lon, first.Lat, first.Lon)
	maxNM := model.MaxSpeedKn(model.ClassifyDWT(a.Deadweight)) * gap.Hours()
	if maxNM <= 0 {
		if distNM == 0 {
			return 100
		}
		return 0
	}
	score := 100 * (1 - distNM/maxNM)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
