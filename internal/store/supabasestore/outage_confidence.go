package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) ListGapsForOutageClustering(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("risk_score", "0").
		Eq("is_feed_outage", "false").
		Gte("gap_start_utc", from.UTC().Format(time.RFC3339)).
		Lte("gap_start_utc", to.UTC().Format(time.RFC3339)).
		ExecuteTo(&rows)
	return rows, wrapErr("ListGapsForOutageClustering", err)
}

func (c *Client) MarkFeedOutage(ctx context.Context, gapIDs []string) error {
	for _, id := range gapIDs {
		var result []model.AISGapEvent
		_, err := c.client.From(tableGaps).
			Update(map[string]any{"is_feed_outage": true}, "", "").
			Eq("gap_id", id).
			ExecuteTo(&result)
		if err != nil {
			return wrapErr("MarkFeedOutage", err)
		}
	}
	return nil
}

func (c *Client) TagCoverageQuality(ctx context.Context, gapID string, quality model.CoverageQuality) error {
	var result []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Update(map[string]any{"coverage_quality": string(quality)}, "", "").
		Eq("gap_id", gapID).
		ExecuteTo(&result)
	return wrapErr("TagCoverageQuality", err)
}

func (c *Client) ListScoredGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Order("risk_score", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListScoredGapsByVessel", err)
}

func (c *Client) CreateFleetAlert(ctx context.Context, a *model.FleetAlert) error {
	var result []model.FleetAlert
	_, err := c.client.From(tableFleetAlerts).
		Insert(a, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateFleetAlert", err)
}

func (c *Client) GetOpenFleetAlert(ctx context.Context, dedupKey string) (*model.FleetAlert, error) {
	var rows []model.FleetAlert
	_, err := c.client.From(tableFleetAlerts).
		Select("*", "", false).
		Eq("dedup", dedupKey).
		Eq("is_open", "true").
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetOpenFleetAlert", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
