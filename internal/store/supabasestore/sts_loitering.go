package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) CreateSTSEvent(ctx context.Context, e *model.StsTransferEvent) error {
	var result []model.StsTransferEvent
	_, err := c.client.From(tableSTSEvents).
		Insert(e, true, "vessel_1_id,vessel_2_id,start_utc", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateSTSEvent", err)
}

func (c *Client) ListSTSEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.StsTransferEvent, error) {
	var rows []model.StsTransferEvent
	_, err := c.client.From(tableSTSEvents).
		Select("*", "", false).
		Eq("vessel_1_id", vesselID).
		Gte("start_utc", since.UTC().Format(time.RFC3339)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("ListSTSEventsByVessel", err)
	}
	var rowsB []model.StsTransferEvent
	_, err = c.client.From(tableSTSEvents).
		Select("*", "", false).
		Eq("vessel_2_id", vesselID).
		Gte("start_utc", since.UTC().Format(time.RFC3339)).
		ExecuteTo(&rowsB)
	if err != nil {
		return nil, wrapErr("ListSTSEventsByVessel", err)
	}
	return append(rows, rowsB...), nil
}

func (c *Client) AddDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error {
	var result []model.DarkVesselDetection
	_, err := c.client.From(tableDarkVessels).
		Insert(d, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("AddDarkVesselDetection", err)
}

func (c *Client) UpdateDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error {
	var result []model.DarkVesselDetection
	_, err := c.client.From(tableDarkVessels).
		Update(d, "", "").
		Eq("detection_id", d.DetectionID).
		ExecuteTo(&result)
	return wrapErr("UpdateDarkVesselDetection", err)
}

func (c *Client) ListUnmatchedDarkVesselDetections(ctx context.Context, from, to time.Time) ([]model.DarkVesselDetection, error) {
	var rows []model.DarkVesselDetection
	_, err := c.client.From(tableDarkVessels).
		Select("*", "", false).
		Is("linked_sts_id", "null").
		Gte("observed_at", from.UTC().Format(time.RFC3339)).
		Lte("observed_at", to.UTC().Format(time.RFC3339)).
		ExecuteTo(&rows)
	return rows, wrapErr("ListUnmatchedDarkVesselDetections", err)
}

func (c *Client) CreateLoiteringEvent(ctx context.Context, e *model.LoiteringEvent) error {
	var result []model.LoiteringEvent
	_, err := c.client.From(tableLoitering).
		Insert(e, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateLoiteringEvent", err)
}

func (c *Client) ListLoiteringEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.LoiteringEvent, error) {
	var rows []model.LoiteringEvent
	_, err := c.client.From(tableLoitering).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Gte("start_utc", since.UTC().Format(time.RFC3339)).
		ExecuteTo(&rows)
	return rows, wrapErr("ListLoiteringEventsByVessel", err)
}
