package memstore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) UpsertAISPoint(ctx context.Context, p *model.AISPoint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.aisPoints {
		if existing.VesselID == p.VesselID && existing.TimestampUTC.Equal(p.TimestampUTC) {
			if model.SourceQuality(existing.Source) >= model.SourceQuality(p.Source) {
				return false, nil
			}
			s.aisPoints[i] = *p
			return true, nil
		}
	}
	s.aisPoints = append(s.aisPoints, *p)
	return true, nil
}

func (s *Store) ListAISPoints(ctx context.Context, vesselID string, from, to time.Time) ([]model.AISPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISPoint
	for _, p := range s.aisPoints {
		if p.VesselID != vesselID {
			continue
		}
		if p.TimestampUTC.Before(from) || p.TimestampUTC.After(to) {
			continue
		}
		out = append(out, p)
	}
	sortAISPoints(out)
	return out, nil
}

func sortAISPoints(pts []model.AISPoint) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].TimestampUTC.Before(pts[j-1].TimestampUTC); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}

func (s *Store) AddAISObservation(ctx context.Context, o *model.AISObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ObservationID == "" {
		o.ObservationID = newID()
	}
	s.aisObservations = append(s.aisObservations, *o)
	return nil
}

func (s *Store) ListAISObservations(ctx context.Context, vesselID string, since time.Time) ([]model.AISObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AISObservation
	for _, o := range s.aisObservations {
		if o.VesselID == vesselID && !o.TimestampUTC.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) PruneAISObservations(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []model.AISObservation
	removed := 0
	for _, o := range s.aisObservations {
		if o.TimestampUTC.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	s.aisObservations = kept
	return removed, nil
}
