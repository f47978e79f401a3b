package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) CreateSpoofingAnomaly(ctx context.Context, a *model.SpoofingAnomaly) error {
	var result []model.SpoofingAnomaly
	_, err := c.client.From(tableSpoofing).
		Insert(a, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateSpoofingAnomaly", err)
}

func (c *Client) ListActiveAnomaliesByVessel(ctx context.Context, vesselID string, anomalyType model.SpoofingAnomalyType) ([]model.SpoofingAnomaly, error) {
	var rows []model.SpoofingAnomaly
	_, err := c.client.From(tableSpoofing).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Eq("anomaly_type", string(anomalyType)).
		Eq("is_active", "true").
		ExecuteTo(&rows)
	return rows, wrapErr("ListActiveAnomaliesByVessel", err)
}

func (c *Client) ListAnomaliesByVesselWindow(ctx context.Context, vesselID string, from, to time.Time) ([]model.SpoofingAnomaly, error) {
	var rows []model.SpoofingAnomaly
	_, err := c.client.From(tableSpoofing).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Gte("start_utc", from.UTC().Format(time.RFC3339)).
		Lte("start_utc", to.UTC().Format(time.RFC3339)).
		ExecuteTo(&rows)
	return rows, wrapErr("ListAnomaliesByVesselWindow", err)
}

func (c *Client) AddDraughtChangeEvent(ctx context.Context, d *model.DraughtChangeEvent) error {
	var result []model.DraughtChangeEvent
	_, err := c.client.From(tableDraughtEvents).
		Insert(d, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("AddDraughtChangeEvent", err)
}

func (c *Client) ListDraughtChangeEvents(ctx context.Context, vesselID string) ([]model.DraughtChangeEvent, error) {
	var rows []model.DraughtChangeEvent
	_, err := c.client.From(tableDraughtEvents).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Order("observed_at_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListDraughtChangeEvents", err)
}
