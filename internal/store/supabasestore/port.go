package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) ListPorts(ctx context.Context) ([]model.Port, error) {
	var rows []model.Port
	_, err := c.client.From(tablePorts).
		Select("*", "", false).
		ExecuteTo(&rows)
	return rows, wrapErr("ListPorts", err)
}

func (c *Client) CreatePortCall(ctx context.Context, p *model.PortCall) error {
	var result []model.PortCall
	_, err := c.client.From(tablePortCalls).
		Insert(p, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreatePortCall", err)
}

func (c *Client) UpdatePortCall(ctx context.Context, p *model.PortCall) error {
	var result []model.PortCall
	_, err := c.client.From(tablePortCalls).
		Update(p, "", "").
		Eq("port_call_id", p.PortCallID).
		ExecuteTo(&result)
	return wrapErr("UpdatePortCall", err)
}

func (c *Client) ListOpenPortCall(ctx context.Context, vesselID string) (*model.PortCall, error) {
	var rows []model.PortCall
	_, err := c.client.From(tablePortCalls).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Is("departure_utc", "null").
		Order("arrival_utc", nil).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("ListOpenPortCall", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) ListPortCallsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.PortCall, error) {
	var rows []model.PortCall
	_, err := c.client.From(tablePortCalls).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Gte("arrival_utc", since.UTC().Format(time.RFC3339)).
		Order("arrival_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListPortCallsByVessel", err)
}
