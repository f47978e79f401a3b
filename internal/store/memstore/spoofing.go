package memstore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) CreateSpoofingAnomaly(ctx context.Context, a *model.SpoofingAnomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.AnomalyID == "" {
		a.AnomalyID = newID()
	}
	s.spoofing = append(s.spoofing, *a)
	return nil
}

func (s *Store) ListActiveAnomaliesByVessel(ctx context.Context, vesselID string, anomalyType model.SpoofingAnomalyType) ([]model.SpoofingAnomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SpoofingAnomaly
	for _, a := range s.spoofing {
		if a.VesselID == vesselID && a.AnomalyType == anomalyType && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) ListAnomaliesByVesselWindow(ctx context.Context, vesselID string, from, to time.Time) ([]model.SpoofingAnomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SpoofingAnomaly
	for _, a := range s.spoofing {
		if a.VesselID != vesselID {
			continue
		}
		if a.StartUTC.Before(from) || a.StartUTC.After(to) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) AddDraughtChangeEvent(ctx context.Context, d *model.DraughtChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.DraughtEventID == "" {
		d.DraughtEventID = newID()
	}
	s.draught = append(s.draught, *d)
	return nil
}

func (s *Store) ListDraughtChangeEvents(ctx context.Context, vesselID string) ([]model.DraughtChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DraughtChangeEvent
	for _, d := range s.draught {
		if d.VesselID == vesselID {
			out = append(out, d)
		}
	}
	return out, nil
}
