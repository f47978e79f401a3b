package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) CreateGap(ctx context.Context, g *model.AISGapEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.GapID == "" {
		g.GapID = newID()
	}
	s.gaps[g.GapID] = *g
	return nil
}

func (s *Store) UpdateGap(ctx context.Context, g *model.AISGapEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gaps[g.GapID] = *g
	return nil
}

func (s *Store) GetGap(ctx context.Context, gapID string) (*model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gaps[gapID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (s *Store) ListGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if g.VesselID == vesselID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GapStartUTC.Before(out[j].GapStartUTC) })
	return out, nil
}

func (s *Store) ListGapsByOriginalVessel(ctx context.Context, originalVesselID string, since time.Time) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if g.OriginalVesselID == originalVesselID && !g.GapStartUTC.Before(since) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GapStartUTC.Before(out[j].GapStartUTC) })
	return out, nil
}

func (s *Store) ListUnscoredGaps(ctx context.Context) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if g.RiskScore == 0 && !g.IsFeedOutage {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) ListGapsInWindow(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if !g.GapStartUTC.Before(from) && !g.GapStartUTC.After(to) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GapStartUTC.Before(out[j].GapStartUTC) })
	return out, nil
}

func (s *Store) CreateEnvelope(ctx context.Context, e *model.MovementEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EnvelopeID == "" {
		e.EnvelopeID = newID()
	}
	s.envelopes[e.GapID] = *e
	return nil
}

func (s *Store) GetEnvelopeForGap(ctx context.Context, gapID string) (*model.MovementEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.envelopes[gapID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
