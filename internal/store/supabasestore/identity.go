package supabasestore

import (
	"context"
	"fmt"

	"github.com/radiancefleet/core/internal/model"
)

func (c *Client) CreateMergeCandidate(ctx context.Context, mc *model.MergeCandidate) error {
	var result []model.MergeCandidate
	_, err := c.client.From(tableMergeCandidates).
		Insert(mc, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateMergeCandidate", err)
}

func (c *Client) ListPendingMergeCandidates(ctx context.Context) ([]model.MergeCandidate, error) {
	var rows []model.MergeCandidate
	_, err := c.client.From(tableMergeCandidates).
		Select("*", "", false).
		Eq("status", string(model.MergeCandidatePending)).
		ExecuteTo(&rows)
	return rows, wrapErr("ListPendingMergeCandidates", err)
}

func (c *Client) UpdateMergeCandidate(ctx context.Context, mc *model.MergeCandidate) error {
	var result []model.MergeCandidate
	_, err := c.client.From(tableMergeCandidates).
		Update(mc, "", "").
		Eq("candidate_id", mc.CandidateID).
		ExecuteTo(&result)
	return wrapErr("UpdateMergeCandidate", err)
}

func (c *Client) CreateMergeOperation(ctx context.Context, op *model.MergeOperation) error {
	var result []model.MergeOperation
	_, err := c.client.From(tableMergeOperations).
		Insert(op, false, "", "", "").
		ExecuteTo(&result)
	return wrapErr("CreateMergeOperation", err)
}

func (c *Client) UpdateMergeOperation(ctx context.Context, op *model.MergeOperation) error {
	var result []model.MergeOperation
	_, err := c.client.From(tableMergeOperations).
		Update(op, "", "").
		Eq("merge_operation_id", op.MergeOperationID).
		ExecuteTo(&result)
	return wrapErr("UpdateMergeOperation", err)
}

func (c *Client) GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error) {
	var rows []model.MergeOperation
	_, err := c.client.From(tableMergeOperations).
		Select("*", "", false).
		Eq("merge_operation_id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetMergeOperation", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) GetFingerprint(ctx context.Context, vesselID string) (*model.VesselFingerprint, error) {
	var rows []model.VesselFingerprint
	_, err := c.client.From(tableFingerprints).
		Select("*", "", false).
		Eq("vessel_id", vesselID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, wrapErr("GetFingerprint", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// fkRewriteTables lists every table carrying a vessel_id FK that must follow a merge,
// in the fixed order a MergeOperation's RewrittenTables records them — AISPoints, gap
// events, loitering, spoofing, watchlist, history, and port calls, per spec.md
// §4.7 (the two STS vessel columns are not in this list; they are rewritten after
// it), each with the primary-key column recorded in the operation snapshot so a
// reverse-merge can restore exactly these rows. ais_gap_events.original_vessel_id is
// intentionally left untouched: it is the provenance anchor the spec requires to
// survive a merge. ais_points keys on timestamp_utc: vessel_id is implied by the
// operation's absorbed side, so the timestamp completes the composite key.
var fkRewriteTables = []struct {
	table string
	pk    string
}{
	{tableAISPoints, "timestamp_utc"},
	{tableGaps, "gap_id"},
	{tableLoitering, "loitering_id"},
	{tableSpoofing, "anomaly_id"},
	{tableWatchlist, "watchlist_id"},
	{tableVesselHistory, "history_id"},
	{tablePortCalls, "port_call_id"},
}

func rowKeys(rows []map[string]any, pk string) []string {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, fmt.Sprint(r[pk]))
	}
	return keys
}

// RewriteOwnedRows reassigns vessel_id on every FK-bearing table from fromVesselID to
// toVesselID. sts_transfer_events carries two vessel FKs and is rewritten separately
// since it does not fit the single-column update the other tables share.
func (c *Client) RewriteOwnedRows(ctx context.Context, fromVesselID, toVesselID string) ([]model.MergeTableRewrite, error) {
	var out []model.MergeTableRewrite

	for _, t := range fkRewriteTables {
		var result []map[string]any
		_, err := c.client.From(t.table).
			Update(map[string]any{"vessel_id": toVesselID}, "", "").
			Eq("vessel_id", fromVesselID).
			ExecuteTo(&result)
		if err != nil {
			return out, wrapErr("RewriteOwnedRows."+t.table, err)
		}
		out = append(out, model.MergeTableRewrite{Table: t.table, RowCount: len(result), RowKeys: rowKeys(result, t.pk)})
	}

	for _, col := range []string{"vessel_1_id", "vessel_2_id"} {
		var result []map[string]any
		_, err := c.client.From(tableSTSEvents).
			Update(map[string]any{col: toVesselID}, "", "").
			Eq(col, fromVesselID).
			ExecuteTo(&result)
		if err != nil {
			return out, wrapErr("RewriteOwnedRows.sts_"+col, err)
		}
		out = append(out, model.MergeTableRewrite{Table: tableSTSEvents + "." + col, RowCount: len(result), RowKeys: rowKeys(result, "sts_id")})
	}

	return out, nil
}

// RestoreOwnedRows reassigns only the rows a MergeOperation snapshot names back to
// toVesselID (the reverse-merge path). Rows the survivor owned before the merge were
// never snapshotted, so they are never touched.
func (c *Client) RestoreOwnedRows(ctx context.Context, rewrites []model.MergeTableRewrite, toVesselID string) error {
	for _, rw := range rewrites {
		if len(rw.RowKeys) == 0 {
			continue
		}

		table, col, pk := rw.Table, "vessel_id", ""
		for _, t := range fkRewriteTables {
			if t.table == rw.Table {
				pk = t.pk
			}
		}
		switch rw.Table {
		case tableSTSEvents + ".vessel_1_id":
			table, col, pk = tableSTSEvents, "vessel_1_id", "sts_id"
		case tableSTSEvents + ".vessel_2_id":
			table, col, pk = tableSTSEvents, "vessel_2_id", "sts_id"
		}
		if pk == "" {
			return wrapErr("RestoreOwnedRows."+rw.Table, fmt.Errorf("unknown merge snapshot table"))
		}

		var result []map[string]any
		_, err := c.client.From(table).
			Update(map[string]any{col: toVesselID}, "", "").
			In(pk, rw.RowKeys).
			ExecuteTo(&result)
		if err != nil {
			return wrapErr("RestoreOwnedRows."+rw.Table, err)
		}
	}
	return nil
}
