// Command radiancefleet runs one full pass of the shadow-fleet discovery pipeline:
// ingest, detectors, scoring, identity resolution, and confidence classification, in
// the fixed order spec.md §4.11 names, then exits. It is meant to be invoked on a
// schedule (cron, Cloud Scheduler) rather than run as a long-lived server.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/radiancefleet/core/internal/audit"
	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/confidence"
	"github.com/radiancefleet/core/internal/gapdetector"
	"github.com/radiancefleet/core/internal/identity"
	"github.com/radiancefleet/core/internal/ingest"
	"github.com/radiancefleet/core/internal/loitering"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/orchestrator"
	"github.com/radiancefleet/core/internal/outage"
	"github.com/radiancefleet/core/internal/portcall"
	"github.com/radiancefleet/core/internal/scoring"
	"github.com/radiancefleet/core/internal/spoofing"
	"github.com/radiancefleet/core/internal/sts"
	"github.com/radiancefleet/core/internal/store"
	"github.com/radiancefleet/core/internal/store/memstore"
	"github.com/radiancefleet/core/internal/store/supabasestore"
	"github.com/radiancefleet/core/internal/webhooks"
)

func main() {
	lookbackDays := flag.Int("lookback-days", 1, "how many trailing days of AIS history the detector steps scan")
	scoringPath := flag.String("scoring-config", getEnvOrDefault("RISK_SCORING_PATH", "risk_scoring.yaml"), "path to the risk-scoring coefficient document")
	flag.Parse()

	cfg := config.Get()

	s, closeStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("radiancefleet: failed to initialize store: %v", err)
	}
	defer closeStore()

	scoringCfg, err := scoring.LoadConfig(*scoringPath)
	if err != nil {
		slog.Warn("radiancefleet: failed to load risk-scoring config, using zero-valued defaults", "path", *scoringPath, "error", err)
		scoringCfg = &scoring.Config{}
	}

	ctx := context.Background()
	corridors, err := s.ListCorridors(ctx)
	if err != nil {
		slog.Warn("radiancefleet: failed to load corridors, proceeding with none", "error", err)
	}

	now := time.Now().UTC()
	from := now.Add(-time.Duration(*lookbackDays) * 24 * time.Hour)

	gapDet := gapdetector.New(s, cfg.Detectors, corridors)
	stsDet := sts.New(s, cfg.Detectors, corridors)
	loiterDet := loitering.New(s, cfg.Detectors, corridors)
	portDet := portcall.New(s, cfg.Detectors)
	spoofDet := spoofing.New(s, cfg.Detectors.Spoofing, scoringCfg)
	outageDet := outage.New(s, cfg.Detectors, corridors)
	scoreEngine := scoring.NewEngine(s, scoringCfg)
	identityEngine := identity.NewEngine(s, cfg.Detectors, scoringCfg.IdentityMerge)
	fleetAnalyzer := confidence.NewFleetAnalyzer(s, scoringCfg.FleetAnalysis)
	classifier := confidence.New(s)
	ingester := ingest.New(s, nil)

	emitter := newWebhookEmitter(s)
	defer emitter.Shutdown()

	pipeline := orchestrator.New(s)
	steps := []orchestrator.Step{
		{
			Name:     "ingest_ais_feed",
			Hardness: model.Soft,
			Run:      ingestStep(ingester),
		},
		{
			Name:     "gap_detection",
			Hardness: model.Hard,
			Run:      perVesselStep(s, from, now, func(ctx context.Context, vesselID string, from, to time.Time) (map[string]int, []string, error) {
				res, err := gapDet.DetectForVessel(ctx, vesselID, from, to)
				return map[string]int{"gaps_created": res.GapsCreated}, res.Errors, err
			}),
		},
		{
			Name:     "spoofing_suite",
			Hardness: model.Soft,
			Run: perVesselStepNoWindow(s, func(ctx context.Context, vesselID string) (map[string]int, []string, error) {
				res, err := spoofDet.DetectAll(ctx, vesselID)
				return map[string]int{"anomalies_created": res.AnomaliesCreated}, res.Errors, err
			}),
		},
		{
			Name:     "sts_detection",
			Hardness: model.Soft,
			Run: func(ctx context.Context) (map[string]int, error) {
				res, err := stsDet.DetectAll(ctx, from, now)
				return map[string]int{"events_created": res.EventsCreated}, err
			},
		},
		{
			Name:     "loitering_detection",
			Hardness: model.Soft,
			Run: perVesselStep(s, from, now, func(ctx context.Context, vesselID string, from, to time.Time) (map[string]int, []string, error) {
				res, err := loiterDet.DetectForVessel(ctx, vesselID, from, to)
				return map[string]int{"loitering_events_created": res.LoiteringEventsCreated}, res.Errors, err
			}),
		},
		{
			Name:     "port_call_detection",
			Hardness: model.Soft,
			Run: perVesselStep(s, from, now, func(ctx context.Context, vesselID string, from, to time.Time) (map[string]int, []string, error) {
				res, err := portDet.DetectForVessel(ctx, vesselID, from, to)
				return map[string]int{"port_calls_created": res.PortCallsCreated}, res.Errors, err
			}),
		},
		{
			Name:     "feed_outage_detection",
			Hardness: model.Soft,
			Run: func(ctx context.Context) (map[string]int, error) {
				res, err := outageDet.DetectOutages(ctx, from, now)
				return map[string]int{
					"clusters_evaluated":  res.ClustersEvaluated,
					"clusters_suppressed": res.ClustersSuppressed,
					"gaps_suppressed":     res.GapsSuppressed,
				}, err
			},
		},
		{
			Name:     "risk_scoring",
			Hardness: model.Hard,
			Run: func(ctx context.Context) (map[string]int, error) {
				gaps, err := s.ListUnscoredGaps(ctx)
				if err != nil {
					return nil, err
				}
				scored := 0
				for i := range gaps {
					if _, err := scoreEngine.ScoreGap(ctx, &gaps[i]); err != nil {
						return map[string]int{"gaps_scored": scored}, err
					}
					scored++
				}
				return map[string]int{"gaps_scored": scored}, nil
			},
		},
		{
			Name:     "identity_resolution",
			Hardness: model.Soft,
			Run: func(ctx context.Context) (map[string]int, error) {
				res, err := identityEngine.DiscoverCandidates(ctx)
				return map[string]int{
					"candidates_created": res.CandidatesCreated,
					"auto_merged":        res.AutoMerged,
				}, err
			},
		},
		{
			Name:     "fleet_pattern_analysis",
			Hardness: model.Soft,
			Run: func(ctx context.Context) (map[string]int, error) {
				res, err := fleetAnalyzer.Analyze(ctx)
				return map[string]int{
					"clusters_evaluated": res.ClustersEvaluated,
					"alerts_raised":      res.AlertsRaised,
				}, err
			},
		},
		{
			Name:     "confidence_classification",
			Hardness: model.Soft,
			Run: func(ctx context.Context) (map[string]int, error) {
				res, err := classifier.ClassifyAll(ctx)
				return map[string]int{"vessels_classified": res.VesselsClassified}, err
			},
		},
	}

	run, err := pipeline.Run(ctx, steps)
	if err != nil {
		log.Fatalf("radiancefleet: pipeline run failed: %v", err)
	}

	slog.Info("radiancefleet: pipeline run finished", "run_id", run.RunID, "status", run.Status, "steps", len(run.Steps))
	emitStepEvents(emitter, run)
	if run.Status == model.RunFailed {
		os.Exit(1)
	}
}

// newWebhookEmitter builds the in-memory webhook dispatcher, with subscriber
// suspensions wired into the same audit trail every other alert mutation leaves. If
// RADIANCEFLEET_WEBHOOK_URL is set, a single subscription covering the alert-bearing
// event types is registered against it — optionally gated to a minimum risk band via
// RADIANCEFLEET_WEBHOOK_MIN_BAND (low/medium/high/critical). With no URL configured
// the dispatcher still runs, just with no subscribers to deliver to.
func newWebhookEmitter(s store.Store) *webhooks.Dispatcher {
	registry := webhooks.NewRegistry().WithAuditLog(audit.New(s))
	if url := os.Getenv("RADIANCEFLEET_WEBHOOK_URL"); url != "" {
		if err := registry.Register(&webhooks.WebhookSubscription{
			URL: url,
			Events: []webhooks.EventType{
				webhooks.EventGapDetected,
				webhooks.EventFleetAlertRaised,
				webhooks.EventGovernmentAlertDue,
			},
			MinBand: os.Getenv("RADIANCEFLEET_WEBHOOK_MIN_BAND"),
			Secret:  os.Getenv("RADIANCEFLEET_WEBHOOK_SECRET"),
		}); err != nil {
			slog.Warn("radiancefleet: failed to register webhook subscriber", "error", err)
		}
	}
	return webhooks.NewDispatcher(registry, 4)
}

// emitStepEvents fires webhook notifications for the step counts an operator would
// actually want pushed out: new gaps found and fleet alerts raised this run.
func emitStepEvents(emitter *webhooks.Dispatcher, run model.PipelineRun) {
	for _, step := range run.Steps {
		switch step.Name {
		case "gap_detection":
			if n := step.Counts["gaps_created"]; n > 0 {
				emitter.Emit(webhooks.EventGapDetected, map[string]interface{}{"run_id": run.RunID, "gaps_created": n})
			}
		case "fleet_pattern_analysis":
			if n := step.Counts["alerts_raised"]; n > 0 {
				emitter.Emit(webhooks.EventFleetAlertRaised, map[string]interface{}{"run_id": run.RunID, "alerts_raised": n})
			}
		}
	}
}

// newStore wires memstore when no Supabase project is configured (local/dev), or
// supabasestore against the configured project otherwise.
func newStore(cfg *config.Config) (store.Store, func(), error) {
	if cfg.GetSupabaseURL() == "" || cfg.GetSupabaseKey() == "" {
		slog.Warn("radiancefleet: Supabase not configured, using in-memory store (not durable)")
		return memstore.New(), func() {}, nil
	}
	client, err := supabasestore.New(cfg.GetSupabaseURL(), cfg.GetSupabaseKey())
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

// ingestStep normalizes and persists freshly fetched AIS rows. Pulling the rows
// themselves from a CSVSource/noaa.Source is out of scope (spec.md §1), so this
// step runs the ingester over whatever rows a collaborator fetch would have produced —
// none, until a concrete adapter is wired in a deployment-specific build — which still
// exercises the same validate/dedupe/upsert path a populated run would take.
func ingestStep(ig *ingest.Ingester) orchestrator.StepFunc {
	return func(ctx context.Context) (map[string]int, error) {
		res, err := ig.IngestRows(ctx, nil)
		return map[string]int{
			"rows_accepted":   res.Accepted,
			"rows_rejected":   res.Rejected,
			"points_inserted": res.PointsInserted,
		}, err
	}
}

// perVesselStep adapts a per-vessel, windowed detector call into a Step's
// whole-pipeline signature: it lists every non-absorbed vessel, runs fn for each, and
// sums the returned counts. One vessel's error is recorded and does not stop the rest.
func perVesselStep(s store.Store, from, to time.Time, fn func(ctx context.Context, vesselID string, from, to time.Time) (map[string]int, []string, error)) orchestrator.StepFunc {
	return func(ctx context.Context) (map[string]int, error) {
		vessels, err := s.ListVessels(ctx, false)
		if err != nil {
			return nil, err
		}
		totals := map[string]int{}
		var firstErr error
		for _, v := range vessels {
			counts, _, err := fn(ctx, v.VesselID, from, to)
			for k, n := range counts {
				totals[k] += n
			}
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return totals, firstErr
	}
}

// perVesselStepNoWindow is perVesselStep for detectors that scan a vessel's whole
// history rather than a bounded window.
func perVesselStepNoWindow(s store.Store, fn func(ctx context.Context, vesselID string) (map[string]int, []string, error)) orchestrator.StepFunc {
	return func(ctx context.Context) (map[string]int, error) {
		vessels, err := s.ListVessels(ctx, false)
		if err != nil {
			return nil, err
		}
		totals := map[string]int{}
		var firstErr error
		for _, v := range vessels {
			counts, _, err := fn(ctx, v.VesselID)
			for k, n := range counts {
				totals[k] += n
			}
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return totals, firstErr
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
