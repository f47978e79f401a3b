package identity

import (
	"context"
	"fmt"

	"github.com/radiancefleet/core/internal/model"
)

// maxCanonicalDepth bounds the merged_into_vessel_id walk when config omits a
// max-depth override; a self-cycle is otherwise prevented only by the data model's
// own invariant (a vessel cannot be its own merge target), so this is the walk's last
// line of defense against a corrupt chain.
const maxCanonicalDepth = 10

// Resolve walks merged_into_vessel_id from vesselID until it reaches a non-absorbed
// vessel, returning that vessel. A vessel that was never merged resolves to itself.
func (e *Engine) Resolve(ctx context.Context, vesselID string) (*model.Vessel, error) {
	maxDepth := e.detectors.MergeCanonicalMaxDepth
	if maxDepth <= 0 {
		maxDepth = maxCanonicalDepth
	}

	current := vesselID
	for depth := 0; depth <= maxDepth; depth++ {
		v, err := e.store.GetVessel(ctx, current)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("identity: vessel %s not found while resolving canonical identity", current)
		}
		if !v.IsAbsorbed() {
			return v, nil
		}
		current = *v.MergedIntoVesselID
	}
	return nil, fmt.Errorf("identity: merge chain from %s exceeded max depth %d, possible cycle", vesselID, maxDepth)
}

// TimelineEvent is one entry in an identity's cross-merge activity timeline, annotated
// with the original (possibly now-absorbed) identity that generated it.
type TimelineEvent struct {
	OriginalVesselID string      `json:"original_vessel_id"`
	Kind             string      `json:"kind"`
	OccurredAt       string      `json:"occurred_at"`
	Detail           interface{} `json:"detail"`
}

// Timeline returns every gap event generated under vesselID or any identity it has
// since absorbed, each annotated with the identity that originally generated it. It
// resolves vesselID to canonical first so callers can query by either the canonical
// vessel or any of its absorbed aliases.
func (e *Engine) Timeline(ctx context.Context, vesselID string) ([]TimelineEvent, error) {
	canonical, err := e.Resolve(ctx, vesselID)
	if err != nil {
		return nil, err
	}

	aliases, err := e.aliasChain(ctx, canonical.VesselID)
	if err != nil {
		return nil, err
	}

	gaps, err := e.store.ListScoredGapsByVessel(ctx, canonical.VesselID)
	if err != nil {
		return nil, err
	}
	aliasSet := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		aliasSet[a] = true
	}

	var out []TimelineEvent
	for _, g := range gaps {
		if !aliasSet[g.OriginalVesselID] {
			continue
		}
		out = append(out, TimelineEvent{
			OriginalVesselID: g.OriginalVesselID,
			Kind:             "ais_gap_event",
			OccurredAt:       g.GapStartUTC.Format("2006-01-02T15:04:05Z07:00"),
			Detail:           g,
		})
	}
	return out, nil
}

// aliasChain lists every vessel_id that currently resolves to canonicalID: the
// canonical identity itself plus every vessel whose merged_into_vessel_id chain ends
// there. Unbounded by depth since it scans the full vessel set rather than walking a
// single chain.
func (e *Engine) aliasChain(ctx context.Context, canonicalID string) ([]string, error) {
	all, err := e.store.ListVessels(ctx, true)
	if err != nil {
		return nil, err
	}
	aliases := []string{canonicalID}
	for _, v := range all {
		if v.VesselID == canonicalID || !v.IsAbsorbed() {
			continue
		}
		resolved, err := e.Resolve(ctx, v.VesselID)
		if err != nil {
			continue
		}
		if resolved.VesselID == canonicalID {
			aliases = append(aliases, v.VesselID)
		}
	}
	return aliases, nil
}
