package confidence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/scoring"
	"github.com/radiancefleet/core/internal/store"
)

// lookbackDays bounds how far back the fleet analyzer looks for STS and gap activity
// when judging a cluster-level pattern; matches the identity resolver's candidate
// window order of magnitude (weeks, not the full vessel history).
const lookbackDays = 90

// minClusterSize is the smallest owner cluster the analyzer evaluates for patterns;
// a single vessel can never exhibit a fleet-level coordination pattern.
const minClusterSize = 2

// stsConcentrationMin is the number of distinct cluster vessels with a dark-leg STS
// encounter required to raise an stsConcentration alert.
const stsConcentrationMin = 3

// darkCoordinationMin is the number of distinct cluster vessels with a scored,
// non-outage gap starting in the same 24h window required to raise dark_coordination.
const darkCoordinationMin = 3

// flagDiversityMin is the number of distinct flags within one owner cluster required
// to raise flag_diversity (rapid reflagging across a fleet is a known evasion pattern).
const flagDiversityMin = 3

// highRiskAverageThreshold mirrors the HIGH confidence band's max-score cutoff: a
// cluster whose mean max-gap-score clears it as a whole is itself evidence.
const highRiskAverageThreshold = 76.0

// FleetAnalyzer clusters vessels by normalized owner identity and emits FleetAlert rows
// for cluster-level coordination patterns.
type FleetAnalyzer struct {
	store    store.Store
	fuzzyMin float64
}

// NewFleetAnalyzer returns a FleetAnalyzer using the owner-fuzzy-similarity threshold
// from the loaded risk-scoring coefficients.
func NewFleetAnalyzer(s store.Store, fleetCfg scoring.FleetAnalysisConfig) *FleetAnalyzer {
	fuzzyMin := fleetCfg.OwnerFuzzyMinSimilarity
	if fuzzyMin <= 0 {
		fuzzyMin = 85
	}
	return &FleetAnalyzer{store: s, fuzzyMin: fuzzyMin}
}

// AnalyzeResult tallies one Analyze run.
type AnalyzeResult struct {
	ClustersEvaluated int
	AlertsRaised      int
	Errors            []string
}

// Analyze clusters every non-absorbed vessel by owner-name similarity, then evaluates
// each cluster of size >= minClusterSize for the named coordination patterns.
func (a *FleetAnalyzer) Analyze(ctx context.Context) (AnalyzeResult, error) {
	var res AnalyzeResult

	vessels, err := a.store.ListVessels(ctx, false)
	if err != nil {
		return res, err
	}

	clusters := clusterByOwner(vessels, a.fuzzyMin)
	now := time.Now().UTC()

	for key, members := range clusters {
		if len(members) < minClusterSize {
			continue
		}
		res.ClustersEvaluated++

		raised, err := a.evaluateCluster(ctx, key, members, now)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("cluster %s: %v", key, err))
			continue
		}
		res.AlertsRaised += raised
	}

	raised, err := a.evaluateSharedManagers(ctx, vessels, now)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("shared manager pass: %v", err))
	}
	res.AlertsRaised += raised

	return res, nil
}

// evaluateSharedManagers raises a shared_manager alert whenever one technical manager
// services vessels with at least two distinct owner names (compared trimmed and
// upper-cased, without the fuzzy matching owner clustering uses), a known way of keeping
// the beneficial owner formally distinct while operational control stays common. This is
// evaluated across the whole fleet rather than per owner-cluster, since the pattern is
// defined by owners NOT matching each other.
func (a *FleetAnalyzer) evaluateSharedManagers(ctx context.Context, vessels []model.Vessel, now time.Time) (int, error) {
	byManager := map[string][]model.Vessel{}
	for _, v := range vessels {
		if v.Manager == "" {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(v.Manager))
		byManager[key] = append(byManager[key], v)
	}

	raised := 0
	for manager, managed := range byManager {
		distinctOwners := map[string]bool{}
		vesselIDs := make([]string, len(managed))
		for i, v := range managed {
			distinctOwners[strings.ToUpper(strings.TrimSpace(v.Owner))] = true
			vesselIDs[i] = v.VesselID
		}
		if len(distinctOwners) < 2 {
			continue
		}
		if err := a.raiseAlert(ctx, manager, vesselIDs, "shared_manager",
			map[string]any{"manager": manager, "distinct_owners": len(distinctOwners)}, now); err != nil {
			return raised, err
		}
		raised++
	}
	return raised, nil
}

func (a *FleetAnalyzer) evaluateCluster(ctx context.Context, ownerKey string, members []model.Vessel, now time.Time) (int, error) {
	since := now.Add(-lookbackDays * 24 * time.Hour)
	vesselIDs := make([]string, len(members))
	for i, v := range members {
		vesselIDs[i] = v.VesselID
	}

	raised := 0

	darkSTSVessels := map[string]bool{}
	gapWindowVessels := map[string]map[string]bool{} // bucket key -> set of vessel IDs with a gap starting in it
	var riskScores []float64

	flags := map[string]bool{}

	for _, v := range members {
		flags[v.Flag] = true

		stsEvents, err := a.store.ListSTSEventsByVessel(ctx, v.VesselID, since)
		if err != nil {
			return raised, err
		}
		for _, e := range stsEvents {
			if e.DetectionType == model.StsDarkDark || e.DetectionType == model.StsVisibleDark {
				darkSTSVessels[v.VesselID] = true
			}
		}

		gaps, err := a.store.ListScoredGapsByVessel(ctx, v.VesselID)
		if err != nil {
			return raised, err
		}
		maxScore := 0
		for _, g := range gaps {
			if g.RiskScore > maxScore {
				maxScore = g.RiskScore
			}
			if g.IsFeedOutage || !g.GapStartUTC.After(since) {
				continue
			}
			bucket := g.GapStartUTC.Truncate(24 * time.Hour).Format(time.RFC3339)
			if gapWindowVessels[bucket] == nil {
				gapWindowVessels[bucket] = map[string]bool{}
			}
			gapWindowVessels[bucket][v.VesselID] = true
		}
		riskScores = append(riskScores, float64(maxScore))
	}

	if len(darkSTSVessels) >= stsConcentrationMin {
		if err := a.raiseAlert(ctx, ownerKey, vesselIDs, "sts_concentration",
			map[string]any{"dark_vessel_count": len(darkSTSVessels)}, now); err != nil {
			return raised, err
		}
		raised++
	}

	maxCoincident := 0
	for _, vesselSet := range gapWindowVessels {
		if len(vesselSet) > maxCoincident {
			maxCoincident = len(vesselSet)
		}
	}
	if maxCoincident >= darkCoordinationMin {
		if err := a.raiseAlert(ctx, ownerKey, vesselIDs, "dark_coordination",
			map[string]any{"coincident_vessels": maxCoincident}, now); err != nil {
			return raised, err
		}
		raised++
	}

	if len(flags) >= flagDiversityMin {
		if err := a.raiseAlert(ctx, ownerKey, vesselIDs, "flag_diversity",
			map[string]any{"distinct_flags": len(flags)}, now); err != nil {
			return raised, err
		}
		raised++
	}

	if mean(riskScores) >= highRiskAverageThreshold {
		if err := a.raiseAlert(ctx, ownerKey, vesselIDs, "high_risk_average",
			map[string]any{"mean_max_score": mean(riskScores)}, now); err != nil {
			return raised, err
		}
		raised++
	}

	piClubs := map[string]int{}
	for _, v := range members {
		if v.PIClub != "" {
			piClubs[v.PIClub]++
		}
	}
	for club, n := range piClubs {
		if n >= minClusterSize && n == len(members) {
			if err := a.raiseAlert(ctx, ownerKey, vesselIDs, "shared_pi_club",
				map[string]any{"pi_club": club}, now); err != nil {
				return raised, err
			}
			raised++
		}
	}

	return raised, nil
}

func (a *FleetAnalyzer) raiseAlert(ctx context.Context, ownerKey string, vesselIDs []string, pattern string, evidence map[string]any, now time.Time) error {
	dedup := ownerKey + "|" + pattern
	existing, err := a.store.GetOpenFleetAlert(ctx, dedup)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return a.store.CreateFleetAlert(ctx, &model.FleetAlert{
		OwnerKey:  ownerKey,
		VesselIDs: vesselIDs,
		Pattern:   pattern,
		Evidence:  evidence,
		RaisedAt:  now,
		Dedup:     dedup,
		IsOpen:    true,
	})
}

// clusterByOwner groups vessels into owner clusters via sorted-token bucketing followed
// by a Jaro-Winkler union-find pass, mirroring internal/identity's name-matching idiom
// generalized from pairwise vessel matching to transitive owner clusters.
func clusterByOwner(vessels []model.Vessel, fuzzyMin float64) map[string][]model.Vessel {
	n := len(vessels)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(x, y int) {
		rx, ry := find(x), find(y)
		if rx != ry {
			parent[rx] = ry
		}
	}

	normalized := make([]string, n)
	for i, v := range vessels {
		normalized[i] = normalizeName(v.Owner)
	}

	for i := 0; i < n; i++ {
		if normalized[i] == "" {
			continue
		}
		for j := i + 1; j < n; j++ {
			if normalized[j] == "" {
				continue
			}
			if normalized[i] == normalized[j] || nameSimilarity(vessels[i].Owner, vessels[j].Owner) >= fuzzyMin {
				union(i, j)
			}
		}
	}

	clusters := map[int][]model.Vessel{}
	for i, v := range vessels {
		if normalized[i] == "" {
			continue
		}
		root := find(i)
		clusters[root] = append(clusters[root], v)
	}

	out := map[string][]model.Vessel{}
	for _, members := range clusters {
		key := clusterKey(members)
		out[key] = members
	}
	return out
}

// clusterKey picks the shortest owner name in the cluster as its stable identifier,
// sorted for determinism when two members tie on length.
func clusterKey(members []model.Vessel) string {
	names := make([]string, len(members))
	for i, v := range members {
		names[i] = v.Owner
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	return names[0]
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
