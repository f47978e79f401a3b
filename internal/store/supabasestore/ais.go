package supabasestore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

// UpsertAISPoint inserts a deduplicated broadcast, replacing any existing row for the
// same (vessel_id, timestamp_utc) only when the new point's source outranks the stored
// one (model.SourceQuality), matching the dedupe-by-source-quality rule in spec.md §4.2.
func (c *Client) UpsertAISPoint(ctx context.Context, p *model.AISPoint) (bool, error) {
	var existing []model.AISPoint
	_, err := c.client.From(tableAISPoints).
		Select("*", "", false).
		Eq("vessel_id", p.VesselID).
		Eq("timestamp_utc", p.TimestampUTC.UTC().Format(time.RFC3339)).
		ExecuteTo(&existing)
	if err != nil {
		return false, wrapErr("UpsertAISPoint.lookup", err)
	}
	if len(existing) > 0 && model.SourceQuality(existing[0].Source) >= model.SourceQuality(p.Source) {
		return false, nil
	}

	var result []model.AISPoint
	_, err = c.client.From(tableAISPoints).
		Insert(p, true, "vessel_id,timestamp_utc", "", "").
		ExecuteTo(&result)
	if err != nil {
		return false, wrapErr("UpsertAISPoint.insert", err)
	}
	return true, nil
}

func (c *Client) ListAISPoints(ctx context.Context, vesselID string, from, to time.Time) ([]model.AISPoint, error) {
	var rows []model.AISPoint
	_, err := c.client.From(tableAISPoints).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Gte("timestamp_utc", from.UTC().Format(time.RFC3339)).
		Lte("timestamp_utc", to.UTC().Format(time.RFC3339)).
		Order("timestamp_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListAISPoints", err)
}

func (c *Client) AddAISObservation(ctx context.Context, o *model.AISObservation) error {
	var result []model.AISObservation
	_, err := c.client.From(tableAISObservations).
		Insert(o, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("AddAISObservation", err)
}

func (c *Client) ListAISObservations(ctx context.Context, vesselID string, since time.Time) ([]model.AISObservation, error) {
	var rows []model.AISObservation
	_, err := c.client.From(tableAISObservations).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		Gte("timestamp_utc", since.UTC().Format(time.RFC3339)).
		Order("timestamp_utc", nil).
		ExecuteTo(&rows)
	return rows, wrapErr("ListAISObservations", err)
}

// PruneAISObservations deletes rows older than model.ObservationRetentionWindow,
// returning the number of rows removed. PostgREST does not return a row count on
// delete, so callers running against the real backend should treat the returned int
// as best-effort (always 0) and rely on the deleted row set length when testing
// against memstore.
func (c *Client) PruneAISObservations(ctx context.Context, olderThan time.Time) (int, error) {
	var result []model.AISObservation
	_, err := c.client.From(tableAISObservations).
		Delete("", "").
		Lt("timestamp_utc", olderThan.UTC().Format(time.RFC3339)).
		ExecuteTo(&result)
	if err != nil {
		return 0, wrapErr("PruneAISObservations", err)
	}
	return len(result), nil
}
