// Package supabasestore implements internal/store.Store against a Supabase/PostgREST
// project, following the teacher's SupabaseClient method-per-entity convention:
// one method per table operation, each a thin wrapper around the
// github.com/supabase-community/supabase-go query builder.
package supabasestore

import (
	"fmt"

	supabase "github.com/supabase-community/supabase-go"

	"github.com/radiancefleet/core/internal/store"
)

// Client wraps a supabase-go project client with RadianceFleet's table operations.
type Client struct {
	client *supabase.Client
}

// New dials a Supabase project. url and serviceKey are the project URL and
// service-role key (never exposed to untrusted callers — this client always runs
// server-side, inside the orchestrator).
func New(url, serviceKey string) (*Client, error) {
	if url == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabasestore: url and service key are required")
	}
	c, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabasestore: failed to create client: %w", err)
	}
	return &Client{client: c}, nil
}

var _ store.Store = (*Client)(nil)

const (
	tableVessels        = "vessels"
	tableVesselHistory   = "vessel_history"
	tableWatchlist       = "vessel_watchlist"
	tableAISPoints       = "ais_points"
	tableAISObservations = "ais_observations"
	tableGaps            = "ais_gap_events"
	tableEnvelopes       = "movement_envelopes"
	tableCorridors       = "corridors"
	tableBaselines       = "corridor_gap_baselines"
	tableSTSEvents       = "sts_transfer_events"
	tableDarkVessels     = "dark_vessel_detections"
	tableLoitering       = "loitering_events"
	tableSpoofing        = "spoofing_anomalies"
	tableDraughtEvents   = "draught_change_events"
	tablePorts           = "ports"
	tablePortCalls       = "port_calls"
	tableMergeCandidates = "merge_candidates"
	tableMergeOperations = "merge_operations"
	tableFingerprints    = "vessel_fingerprints"
	tableFleetAlerts     = "fleet_alerts"
	tableAuditLog        = "audit_log"
	tablePipelineRuns    = "pipeline_runs"
)

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("supabasestore: %s: %w", op, err)
}
