package memstore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) ListGapsForOutageClustering(ctx context.Context, from, to time.Time) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if g.RiskScore != 0 || g.IsFeedOutage {
			continue
		}
		if g.GapStartUTC.Before(from) || g.GapStartUTC.After(to) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) MarkFeedOutage(ctx context.Context, gapIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range gapIDs {
		g, ok := s.gaps[id]
		if !ok {
			continue
		}
		g.IsFeedOutage = true
		s.gaps[id] = g
	}
	return nil
}

func (s *Store) TagCoverageQuality(ctx context.Context, gapID string, quality model.CoverageQuality) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gaps[gapID]
	if !ok {
		return nil
	}
	g.CoverageQuality = quality
	s.gaps[gapID] = g
	return nil
}

func (s *Store) ListScoredGapsByVessel(ctx context.Context, vesselID string) ([]model.AISGapEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISGapEvent
	for _, g := range s.gaps {
		if g.VesselID == vesselID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) CreateFleetAlert(ctx context.Context, a *model.FleetAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.AlertID == "" {
		a.AlertID = newID()
	}
	s.fleetAlerts = append(s.fleetAlerts, *a)
	return nil
}

func (s *Store) GetOpenFleetAlert(ctx context.Context, dedupKey string) (*model.FleetAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.fleetAlerts {
		if a.Dedup == dedupKey && a.IsOpen {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}
