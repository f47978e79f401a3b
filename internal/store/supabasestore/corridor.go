package supabasestore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) ListCorridors(ctx context.Context) ([]model.Corridor, error) {
	var rows []model.Corridor
	_, err := c.client.From(tableCorridors).
		Select("*", "", false).
		ExecuteTo(&rows)
	return rows, wrapErr("ListCorridors", err)
}

func (c *Client) GetCorridor(ctx context.Context, corridorID string) (*model.Corridor, error) {
	var rows []model.Corridor
	_, err := c.client.From(tableCorridors).
		Select("*", "", false).
		Eq("corridor_id", corridorID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetCorridor", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) UpsertBaseline(ctx context.Context, b *model.CorridorGapBaseline) error {
	var result []model.CorridorGapBaseline
	_, err := c.client.From(tableBaselines).
		Insert(b, true, "corridor_id,window_start", "", "").
		ExecuteTo(&result)
	return wrapErr("UpsertBaseline", err)
}

func (c *Client) GetBaseline(ctx context.Context, corridorID string) (*model.CorridorGapBaseline, error) {
	var rows []model.CorridorGapBaseline
	_, err := c.client.From(tableBaselines).
		Select("*", "", false).
		Eq("corridor_id", corridorID).
		Order("window_end", nil).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetBaseline", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
