package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) CreateGap(ctx context.Context, g *model.AISGapEvent) error {
	var result []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Insert(g, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateGap", err)
}

func (c *Client) UpdateGap(ctx context.Context, g *model.AISGapEvent) error {
	var result []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Update(g, "", "").
		Eq("gap_id", g.GapID).
		ExecuteTo(&result)
	return wrapErr("UpdateGap", err)
}

func (c *Client) GetGap(ctx context.Context, gapID string) (*model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("gap_id", gapID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetGap", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) ListGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Order("gap_start_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListGapsByVessel", err)
}

func (c *Client) ListGapsByOriginalVessel(ctx context.Context, originalVesselID string, since time.Time) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("original_vessel_id", originalVesselID).
		Gte("gap_start_utc", since.UTC().Format(time.RFC3339)).
		Order("gap_start_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListGapsByOriginalVessel", err)
}

func (c *Client) ListUnscoredGaps(ctx context.Context) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Eq("risk_score", "0").
		Eq("is_feed_outage", "false").
		ExecuteTo(&rows)
	return rows, wrapErr("ListUnscoredGaps", err)
}

func (c *Client) ListGapsInWindow(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error) {
	var rows []model.AISGapEvent
	_, err := c.client.From(tableGaps).
		Select("*", "", false).
		Gte("gap_start_utc", from.UTC().Format(time.RFC3339)).
		Lte("gap_start_utc", to.UTC().Format(time.RFC3339)).
		Order("gap_start_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListGapsInWindow", err)
}

func (c *Client) CreateEnvelope(ctx context.Context, e *model.MovementEnvelope) error {
	var result []model.MovementEnvelope
	_, err := c.client.From(tableEnvelopes).
		Insert(e, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateEnvelope", err)
}

func (c *Client) GetEnvelopeForGap(ctx context.Context, gapID string) (*model.MovementEnvelope, error) {
	var rows []model.MovementEnvelope
	_, err := c.client.From(tableEnvelopes).
		Select("*", "", false).
		Eq("gap_id", gapID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetEnvelopeForGap", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
