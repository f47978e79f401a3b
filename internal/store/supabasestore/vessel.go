package supabasestore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) GetVessel(ctx context.Context, vesselID string) (*model.Vessel, error) {
	var rows []model.Vessel
	_, err := c.client.From(tableVessels).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetVessel", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) GetVesselByMMSI(ctx context.Context, mmsi string) (*model.Vessel, error) {
	var rows []model.Vessel
	_, err := c.client.From(tableVessels).
		Select("*", "", false).
		Eq("mmsi", mmsi).
		Order("mmsi_first_seen_utc", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetVesselByMMSI", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) CreateVessel(ctx context.Context, v *model.Vessel) error {
	var result []model.Vessel
	_, err := c.client.From(tableVessels).
		Insert(v, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateVessel", err)
}

func (c *Client) UpdateVessel(ctx context.Context, v *model.Vessel) error {
	var result []model.Vessel
	_, err := c.client.From(tableVessels).
		Update(v, "", "").
		Eq("vessel_id", v.VesselID).
		ExecuteTo(&result)
	return wrapErr("UpdateVessel", err)
}

func (c *Client) ListVessels(ctx context.Context, includeAbsorbed bool) ([]model.Vessel, error) {
	var rows []model.Vessel
	q := c.client.From(tableVessels).Select("*", "", false)
	if !includeAbsorbed {
		q = q.Is("merged_into_vessel_id", "null")
	}
	_, err := q.ExecuteTo(&rows)
	return rows, wrapErr("ListVessels", err)
}

func (c *Client) AddVesselHistory(ctx context.Context, h *model.VesselHistory) error {
	var result []model.VesselHistory
	_, err := c.client.From(tableVesselHistory).
		Insert(h, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("AddVesselHistory", err)
}

func (c *Client) ListVesselHistory(ctx context.Context, vesselID string) ([]model.VesselHistory, error) {
	var rows []model.VesselHistory
	_, err := c.client.From(tableVesselHistory).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Order("changed_at", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListVesselHistory", err)
}

func (c *Client) AddWatchlistEntry(ctx context.Context, w *model.VesselWatchlist) error {
	var result []model.VesselWatchlist
	_, err := c.client.From(tableWatchlist).
		Insert(w, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("AddWatchlistEntry", err)
}

func (c *Client) ListActiveWatchlist(ctx context.Context, vesselID string) ([]model.VesselWatchlist, error) {
	var rows []model.VesselWatchlist
	_, err := c.client.From(tableWatchlist).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Eq("is_active", "true").
		ExecuteTo(&rows)
	return rows, wrapErr("ListActiveWatchlist", err)
}
