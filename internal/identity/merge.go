package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/model"
)

// ExecuteMerge absorbs absorbedID into survivorID:
// every FK-bearing row owned by absorbedID is rewritten to survivorID, absorbedID's
// merged_into_vessel_id is set, and a MergeOperation audit record is written with a
// snapshot large enough to reverse the operation. candidateID is nil for a merge
// executed directly by an analyst rather than discovered automatically.
func (e *Engine) ExecuteMerge(ctx context.Context, survivorID, absorbedID string, candidateID *string, performedBy string) (*model.MergeOperation, error) {
	if survivorID == absorbedID {
		return nil, fmt.Errorf("identity: cannot merge vessel %s into itself", survivorID)
	}

	survivor, err := e.store.GetVessel(ctx, survivorID)
	if err != nil {
		return nil, err
	}
	if survivor == nil {
		return nil, fmt.Errorf("identity: survivor vessel %s not found", survivorID)
	}
	absorbed, err := e.store.GetVessel(ctx, absorbedID)
	if err != nil {
		return nil, err
	}
	if absorbed == nil {
		return nil, fmt.Errorf("identity: absorbed vessel %s not found", absorbedID)
	}
	if absorbed.IsAbsorbed() {
		return nil, fmt.Errorf("identity: vessel %s is already absorbed into %s", absorbedID, *absorbed.MergedIntoVesselID)
	}

	rewrites, err := e.store.RewriteOwnedRows(ctx, absorbedID, survivorID)
	if err != nil {
		return nil, fmt.Errorf("identity: rewrite owned rows: %w", err)
	}

	survivorIDCopy := survivorID
	absorbed.MergedIntoVesselID = &survivorIDCopy
	absorbed.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateVessel(ctx, absorbed); err != nil {
		return nil, fmt.Errorf("identity: mark absorbed vessel merged: %w", err)
	}

	op := &model.MergeOperation{
		MergeOperationID: uuid.NewString(),
		SurvivorVesselID: survivorID,
		AbsorbedVesselID: absorbedID,
		CandidateID:      candidateID,
		RewrittenTables:  rewrites,
		SnapshotJSON: map[string]any{
			"absorbed_vessel": absorbedSnapshot(absorbed, survivorID),
			"rewritten_rows":  rewrites,
		},
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
	}
	if err := e.store.CreateMergeOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("identity: record merge operation: %w", err)
	}
	return op, nil
}

// absorbedSnapshot records which vessel was absorbed and the survivor it now points to.
// ReverseMerge does not read it back: it clears merged_into_vessel_id and restores the
// rewritten FK rows from the per-table row keys in RewrittenTables, since nothing about
// the rows themselves changed except their vessel_id.
func absorbedSnapshot(absorbed *model.Vessel, survivorID string) map[string]any {
	return map[string]any{
		"vessel_id":             absorbed.VesselID,
		"merged_into_vessel_id": survivorID,
	}
}

// ReverseMerge undoes a MergeOperation: the rows its snapshot names are rewritten back
// from survivor to absorbed, and the absorbed vessel's merged_into_vessel_id is
// cleared. Restoration is keyed on the snapshot's recorded row keys, so the survivor's
// own pre-merge rows — and rows contributed by any later merge into the same survivor —
// stay where they are. It refuses to run twice against the same operation.
func (e *Engine) ReverseMerge(ctx context.Context, mergeOperationID, performedBy string) error {
	op, err := e.store.GetMergeOperation(ctx, mergeOperationID)
	if err != nil {
		return err
	}
	if op == nil {
		return fmt.Errorf("identity: merge operation %s not found", mergeOperationID)
	}
	if op.ReversedAt != nil {
		return fmt.Errorf("identity: merge operation %s already reversed", mergeOperationID)
	}

	absorbed, err := e.store.GetVessel(ctx, op.AbsorbedVesselID)
	if err != nil {
		return err
	}
	if absorbed == nil {
		return fmt.Errorf("identity: absorbed vessel %s not found", op.AbsorbedVesselID)
	}

	if err := e.store.RestoreOwnedRows(ctx, op.RewrittenTables, op.AbsorbedVesselID); err != nil {
		return fmt.Errorf("identity: reverse FK rewrite: %w", err)
	}

	absorbed.MergedIntoVesselID = nil
	absorbed.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateVessel(ctx, absorbed); err != nil {
		return fmt.Errorf("identity: clear merged_into_vessel_id: %w", err)
	}

	now := time.Now().UTC()
	op.ReversedAt = &now
	if err := e.store.UpdateMergeOperation(ctx, op); err != nil {
		return fmt.Errorf("identity: record reversal: %w", err)
	}
	return nil
}
