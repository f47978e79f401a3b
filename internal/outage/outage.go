// Package outage suppresses the AIS-gap scoring that would otherwise follow a broad
// terrestrial-receiver outage: when a feed goes dark, many unrelated vessels in the same
// corridor appear to go silent simultaneously, and without suppression every one of them
// would look like shadow-fleet evasion. It also maintains the rolling per-corridor gap-
// count baseline the suppression threshold is adaptive against, and a separate,
// scoring-inert coverage_quality tagging pass.
package outage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Detector clusters unscored gaps by corridor and time bucket and marks the survivors
// of a broad-outage cluster so the scoring engine skips them.
type Detector struct {
	store     store.Store
	cfg       config.DetectorsConfig
	corridors map[string]model.Corridor
}

// New returns a Detector. corridors should be loaded once per run via
// store.ListCorridors, same convention as the other detector packages.
func New(s store.Store, cfg config.DetectorsConfig, corridors []model.Corridor) *Detector {
	byID := make(map[string]model.Corridor, len(corridors))
	for _, c := range corridors {
		byID[c.CorridorID] = c
	}
	return &Detector{store: s, cfg: cfg, corridors: byID}
}

// Result tallies one DetectOutages run.
type Result struct {
	ClustersEvaluated  int
	ClustersSuppressed int
	GapsSuppressed     int
	Errors             []string
}

type cluster struct {
	corridorID string // "" means no corridor association
	bucket     time.Time
	gaps       []model.AISGapEvent
}

func (d *Detector) bucketDuration() time.Duration {
	hours := d.cfg.OutageBucketHours
	if hours <= 0 {
		hours = 2
	}
	return time.Duration(hours * float64(time.Hour))
}

// DetectOutages groups every unscored, not-yet-outage-marked gap starting in
// [from, to) by (corridor, time bucket), and marks the survivors of any cluster that
// clears the adaptive threshold as is_feed_outage, skipping clusters an anti-decoy or
// evasion-aware check rules out.
func (d *Detector) DetectOutages(ctx context.Context, from, to time.Time) (Result, error) {
	var res Result

	gaps, err := d.store.ListGapsForOutageClustering(ctx, from, to)
	if err != nil {
		return res, fmt.Errorf("outage: list gaps for clustering: %w", err)
	}

	bucketDur := d.bucketDuration()
	clusters := make(map[string]*cluster)
	var order []string
	for _, g := range gaps {
		corridorID := ""
		if g.CorridorID != nil {
			corridorID = *g.CorridorID
		}
		bucket := g.GapStartUTC.UTC().Truncate(bucketDur)
		key := corridorID + "|" + bucket.Format(time.RFC3339)
		c, ok := clusters[key]
		if !ok {
			c = &cluster{corridorID: corridorID, bucket: bucket}
			clusters[key] = c
			order = append(order, key)
		}
		c.gaps = append(c.gaps, g)
	}

	for _, key := range order {
		c := clusters[key]
		res.ClustersEvaluated++

		vesselIDs := distinctVesselIDs(c.gaps)
		if !d.clearsAdaptiveThreshold(ctx, c.corridorID, len(vesselIDs)) {
			continue
		}

		if d.isLikelyDecoy(ctx, vesselIDs) {
			continue
		}

		var survivors []string
		for _, g := range c.gaps {
			excluded, err := d.evasionExcluded(ctx, g)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("gap %s: evasion check: %v", g.GapID, err))
				continue
			}
			if excluded {
				continue
			}
			survivors = append(survivors, g.GapID)
		}

		if len(survivors) == 0 {
			continue
		}
		if err := d.store.MarkFeedOutage(ctx, survivors); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("cluster %s: mark feed outage: %v", key, err))
			continue
		}
		res.ClustersSuppressed++
		res.GapsSuppressed += len(survivors)
	}

	return res, nil
}

func distinctVesselIDs(gaps []model.AISGapEvent) []string {
	seen := make(map[string]bool, len(gaps))
	var out []string
	for _, g := range gaps {
		if !seen[g.VesselID] {
			seen[g.VesselID] = true
			out = append(out, g.VesselID)
		}
	}
	return out
}

// clearsAdaptiveThreshold implements the "3 x corridor_P95, floor 5, minimum 3 with a
// baseline" rule from spec.md §4.9 step 2. Lookup or baseline failures fall back to the
// no-baseline floor rather than suppressing on missing evidence, per the package-wide
// "never elevate on missing config/evidence" convention.
func (d *Detector) clearsAdaptiveThreshold(ctx context.Context, corridorID string, vesselCount int) bool {
	floor := d.cfg.OutageFloorVessels
	if floor <= 0 {
		floor = 5
	}
	if corridorID == "" {
		return vesselCount >= floor
	}

	baseline, err := d.store.GetBaseline(ctx, corridorID)
	if err != nil || baseline == nil {
		return vesselCount >= floor
	}

	minWithBaseline := d.cfg.OutageMinWithBaseline
	if minWithBaseline <= 0 {
		minWithBaseline = 3
	}
	threshold := 3 * baseline.P95Count
	return float64(vesselCount) > threshold && vesselCount >= minWithBaseline
}

// isLikelyDecoy implements the anti-decoy check (E7): a cluster is not suppressed when
// more than the configured ratio of its vessels already carry a previous high-risk
// score, since that pattern looks like coordinated decoy abuse of outage suppression
// rather than a genuine receiver outage.
func (d *Detector) isLikelyDecoy(ctx context.Context, vesselIDs []string) bool {
	if len(vesselIDs) == 0 {
		return false
	}
	ratio := d.cfg.OutageDecoyRatio
	if ratio <= 0 {
		ratio = 0.3
	}
	scoreMin := d.cfg.OutageDecoyScoreMin
	if scoreMin <= 0 {
		scoreMin = 50
	}

	highRisk := 0
	for _, vesselID := range vesselIDs {
		gaps, err := d.store.ListScoredGapsByVessel(ctx, vesselID)
		if err != nil {
			slog.Warn("outage: decoy check lookup failed, treating vessel as not high-risk", "vessel_id", vesselID, "error", err)
			continue
		}
		for _, g := range gaps {
			if g.RiskScore > scoreMin {
				highRisk++
				break
			}
		}
	}
	return float64(highRisk)/float64(len(vesselIDs)) > ratio
}

// evasionExcluded implements the evasion-aware exclusion (E2): a gap is not marked as
// outage when its vessel has a spoofing anomaly or STS event within the configured
// window of the gap itself — that pattern looks like cover-using behavior riding along
// with a genuine outage, not the outage itself.
func (d *Detector) evasionExcluded(ctx context.Context, g model.AISGapEvent) (bool, error) {
	windowHours := d.cfg.OutageEvasionWindowHours
	if windowHours <= 0 {
		windowHours = 6
	}
	window := time.Duration(windowHours * float64(time.Hour))
	lower := g.GapStartUTC.Add(-window)
	upper := g.GapEndUTC.Add(window)

	anomalies, err := d.store.ListAnomaliesByVesselWindow(ctx, g.VesselID, lower, upper)
	if err != nil {
		return false, err
	}
	if len(anomalies) > 0 {
		return true, nil
	}

	stsEvents, err := d.store.ListSTSEventsByVessel(ctx, g.VesselID, lower)
	if err != nil {
		return false, err
	}
	for _, e := range stsEvents {
		if !e.StartUTC.After(upper) {
			return true, nil
		}
	}
	return false, nil
}

// MaintainBaselines recomputes the rolling per-corridor gap-count baseline (spec.md
// §4.9 step 6): every gap seen in the trailing baseline window, bucketed the same way
// live clustering buckets them, contributes one sample per occupied bucket; the mean
// and a linear-interpolated 95th percentile over those samples are stored as the
// corridor's new CorridorGapBaseline.
func (d *Detector) MaintainBaselines(ctx context.Context, asOf time.Time) (int, error) {
	windowDays := d.cfg.BaselineWindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	windowStart := asOf.Add(-time.Duration(windowDays) * 24 * time.Hour)

	gaps, err := d.store.ListGapsInWindow(ctx, windowStart, asOf)
	if err != nil {
		return 0, fmt.Errorf("outage: list gaps for baseline: %w", err)
	}

	bucketDur := d.bucketDuration()
	perCorridorBuckets := make(map[string]map[time.Time]int)
	for _, g := range gaps {
		if g.CorridorID == nil || *g.CorridorID == "" {
			continue
		}
		bucket := g.GapStartUTC.UTC().Truncate(bucketDur)
		buckets, ok := perCorridorBuckets[*g.CorridorID]
		if !ok {
			buckets = make(map[time.Time]int)
			perCorridorBuckets[*g.CorridorID] = buckets
		}
		buckets[bucket]++
	}

	updated := 0
	for corridorID, buckets := range perCorridorBuckets {
		counts := make([]float64, 0, len(buckets))
		for _, n := range buckets {
			counts = append(counts, float64(n))
		}
		sort.Float64s(counts)

		baseline := &model.CorridorGapBaseline{
			CorridorID:    corridorID,
			WindowStart:   windowStart,
			WindowEnd:     asOf,
			MeanCount:     mean(counts),
			P95Count:      percentile(counts, 0.95),
			SampleBuckets: len(counts),
		}
		if err := d.store.UpsertBaseline(ctx, baseline); err != nil {
			return updated, fmt.Errorf("outage: upsert baseline for corridor %s: %w", corridorID, err)
		}
		updated++
	}
	return updated, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// percentile returns the p-th percentile of a pre-sorted ascending slice using linear
// interpolation between closest ranks (the conventional "R-7" method spreadsheets and
// numpy's default both use).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// TagCoverageQuality fills coverage_quality from corridor-name keyword lookups for
// every gap in [from, to) that does not carry one yet. This is purely analyst-facing
// metadata: spec.md §4.9 is explicit that it never feeds scoring, so it runs as its own
// pass rather than inside DetectOutages.
func (d *Detector) TagCoverageQuality(ctx context.Context, from, to time.Time) (int, error) {
	gaps, err := d.store.ListGapsInWindow(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("outage: list gaps for coverage tagging: %w", err)
	}

	tagged := 0
	for _, g := range gaps {
		if g.CoverageQuality != "" && g.CoverageQuality != model.CoverageUnknown {
			continue
		}
		var corridor *model.Corridor
		if g.CorridorID != nil {
			if c, ok := d.corridors[*g.CorridorID]; ok {
				corridor = &c
			}
		}
		quality := classifyCoverageQuality(corridor)
		if err := d.store.TagCoverageQuality(ctx, g.GapID, quality); err != nil {
			return tagged, fmt.Errorf("outage: tag coverage quality for gap %s: %w", g.GapID, err)
		}
		tagged++
	}
	return tagged, nil
}

// coverageKeywords maps a lowercase substring of a corridor's name to the coverage
// quality analysts expect there, independent of is_jamming_zone (a jamming zone can
// still sit inside an otherwise well-covered corridor's name).
var coverageKeywords = []struct {
	substr  string
	quality model.CoverageQuality
}{
	{"strait", model.CoverageGood},
	{"channel", model.CoverageGood},
	{"coastal", model.CoverageGood},
	{"anchorage", model.CoverageModerate},
	{"open sea", model.CoveragePartial},
	{"high seas", model.CoveragePartial},
	{"arctic", model.CoveragePoor},
	{"polar", model.CoveragePoor},
}

func classifyCoverageQuality(c *model.Corridor) model.CoverageQuality {
	if c == nil {
		return model.CoverageUnknown
	}
	if c.IsJammingZone || c.CorridorType == model.CorridorDarkZone {
		return model.CoverageNone
	}
	name := strings.ToLower(c.Name)
	for _, kw := range coverageKeywords {
		if strings.Contains(name, kw.substr) {
			return kw.quality
		}
	}
	return model.CoverageModerate
}
