package memstore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) ListPorts(ctx context.Context) ([]model.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Port, len(s.ports))
	copy(out, s.ports)
	return out, nil
}

func (s *Store) CreatePortCall(ctx context.Context, p *model.PortCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.PortCallID == "" {
		p.PortCallID = newID()
	}
	s.portCalls = append(s.portCalls, *p)
	return nil
}

func (s *Store) UpdatePortCall(ctx context.Context, p *model.PortCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.portCalls {
		if existing.PortCallID == p.PortCallID {
			s.portCalls[i] = *p
			return nil
		}
	}
	return nil
}

func (s *Store) ListOpenPortCall(ctx context.Context, vesselID string) (*model.PortCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.PortCall
	for i, p := range s.portCalls {
		if p.VesselID != vesselID || p.DepartureUTC != nil {
			continue
		}
		if latest == nil || p.ArrivalUTC.After(latest.ArrivalUTC) {
			latest = &s.portCalls[i]
		}
	}
	return latest, nil
}

func (s *Store) ListPortCallsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.PortCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PortCall
	for _, p := range s.portCalls {
		if p.VesselID == vesselID && !p.ArrivalUTC.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}
