package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) CreateMergeCandidate(ctx context.Context, mc *model.MergeCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mc.CandidateID == "" {
		mc.CandidateID = newID()
	}
	s.mergeCandidates[mc.CandidateID] = *mc
	return nil
}

func (s *Store) ListPendingMergeCandidates(ctx context.Context) ([]model.MergeCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MergeCandidate
	for _, mc := range s.mergeCandidates {
		if mc.Status == model.MergeCandidatePending {
			out = append(out, mc)
		}
	}
	return out, nil
}

func (s *Store) UpdateMergeCandidate(ctx context.Context, mc *model.MergeCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeCandidates[mc.CandidateID] = *mc
	return nil
}

func (s *Store) CreateMergeOperation(ctx context.Context, op *model.MergeOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op.MergeOperationID == "" {
		op.MergeOperationID = newID()
	}
	s.mergeOperations[op.MergeOperationID] = *op
	return nil
}

func (s *Store) UpdateMergeOperation(ctx context.Context, op *model.MergeOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mergeOperations[op.MergeOperationID]; !ok {
		return fmt.Errorf("memstore: merge operation %s not found", op.MergeOperationID)
	}
	s.mergeOperations[op.MergeOperationID] = *op
	return nil
}

func (s *Store) GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.mergeOperations[id]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (s *Store) GetFingerprint(ctx context.Context, vesselID string) (*model.VesselFingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp, ok := s.fingerprints[vesselID]
	if !ok {
		return nil, nil
	}
	return &fp, nil
}

// SeedFingerprint is a test helper.
func (s *Store) SeedFingerprint(fp model.VesselFingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[fp.VesselID] = fp
}

// pointKey identifies an AISPoint within a merge snapshot. (vessel_id, timestamp_utc)
// is the table's composite key; vessel_id is implied by the operation's absorbed side,
// so the timestamp alone identifies the row.
func pointKey(ts time.Time) string { return ts.UTC().Format(time.RFC3339Nano) }

// RewriteOwnedRows mirrors supabasestore's fixed table order so tests exercising the
// identity resolver see identical MergeTableRewrite output regardless of backend.
func (s *Store) RewriteOwnedRows(ctx context.Context, fromVesselID, toVesselID string) ([]model.MergeTableRewrite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.MergeTableRewrite

	var keys []string
	for i, p := range s.aisPoints {
		if p.VesselID == fromVesselID {
			s.aisPoints[i].VesselID = toVesselID
			keys = append(keys, pointKey(p.TimestampUTC))
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "ais_points", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for id, g := range s.gaps {
		if g.VesselID == fromVesselID {
			g.VesselID = toVesselID
			s.gaps[id] = g
			keys = append(keys, id)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "ais_gap_events", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, e := range s.loitering {
		if e.VesselID == fromVesselID {
			s.loitering[i].VesselID = toVesselID
			keys = append(keys, e.LoiteringID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "loitering_events", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, a := range s.spoofing {
		if a.VesselID == fromVesselID {
			s.spoofing[i].VesselID = toVesselID
			keys = append(keys, a.AnomalyID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "spoofing_anomalies", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, w := range s.watchlist {
		if w.VesselID == fromVesselID {
			s.watchlist[i].VesselID = toVesselID
			keys = append(keys, w.WatchlistID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "vessel_watchlist", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, h := range s.history {
		if h.VesselID == fromVesselID {
			s.history[i].VesselID = toVesselID
			keys = append(keys, h.HistoryID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "vessel_history", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, p := range s.portCalls {
		if p.VesselID == fromVesselID {
			s.portCalls[i].VesselID = toVesselID
			keys = append(keys, p.PortCallID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "port_calls", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, e := range s.stsEvents {
		if e.Vessel1ID == fromVesselID {
			s.stsEvents[i].Vessel1ID = toVesselID
			keys = append(keys, e.StsID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "sts_transfer_events.vessel_1_id", RowCount: len(keys), RowKeys: keys})

	keys = nil
	for i, e := range s.stsEvents {
		if e.Vessel2ID == fromVesselID {
			s.stsEvents[i].Vessel2ID = toVesselID
			keys = append(keys, e.StsID)
		}
	}
	out = append(out, model.MergeTableRewrite{Table: "sts_transfer_events.vessel_2_id", RowCount: len(keys), RowKeys: keys})

	return out, nil
}

// RestoreOwnedRows reassigns only the snapshotted rows back to toVesselID, leaving
// every other row — in particular the survivor's own pre-merge rows — untouched.
func (s *Store) RestoreOwnedRows(ctx context.Context, rewrites []model.MergeTableRewrite, toVesselID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rw := range rewrites {
		if len(rw.RowKeys) == 0 {
			continue
		}
		keySet := make(map[string]bool, len(rw.RowKeys))
		for _, k := range rw.RowKeys {
			keySet[k] = true
		}

		switch rw.Table {
		case "ais_points":
			for i, p := range s.aisPoints {
				if keySet[pointKey(p.TimestampUTC)] {
					s.aisPoints[i].VesselID = toVesselID
				}
			}
		case "ais_gap_events":
			for id, g := range s.gaps {
				if keySet[id] {
					g.VesselID = toVesselID
					s.gaps[id] = g
				}
			}
		case "loitering_events":
			for i, e := range s.loitering {
				if keySet[e.LoiteringID] {
					s.loitering[i].VesselID = toVesselID
				}
			}
		case "spoofing_anomalies":
			for i, a := range s.spoofing {
				if keySet[a.AnomalyID] {
					s.spoofing[i].VesselID = toVesselID
				}
			}
		case "vessel_watchlist":
			for i, w := range s.watchlist {
				if keySet[w.WatchlistID] {
					s.watchlist[i].VesselID = toVesselID
				}
			}
		case "vessel_history":
			for i, h := range s.history {
				if keySet[h.HistoryID] {
					s.history[i].VesselID = toVesselID
				}
			}
		case "port_calls":
			for i, p := range s.portCalls {
				if keySet[p.PortCallID] {
					s.portCalls[i].VesselID = toVesselID
				}
			}
		case "sts_transfer_events.vessel_1_id":
			for i, e := range s.stsEvents {
				if keySet[e.StsID] {
					s.stsEvents[i].Vessel1ID = toVesselID
				}
			}
		case "sts_transfer_events.vessel_2_id":
			for i, e := range s.stsEvents {
				if keySet[e.StsID] {
					s.stsEvents[i].Vessel2ID = toVesselID
				}
			}
		default:
			return fmt.Errorf("memstore: unknown merge snapshot table %q", rw.Table)
		}
	}
	return nil
}
