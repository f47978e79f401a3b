package memstore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) GetVessel(ctx context.Context, vesselID string) (*model.Vessel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vessels[vesselID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *Store) GetVesselByMMSI(ctx context.Context, mmsi string) (*model.Vessel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vessels {
		if v.MMSI == mmsi {
			cp := v
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateVessel(ctx context.Context, v *model.Vessel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.VesselID == "" {
		v.VesselID = newID()
	}
	s.vessels[v.VesselID] = *v
	return nil
}

func (s *Store) UpdateVessel(ctx context.Context, v *model.Vessel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vessels[v.VesselID] = *v
	return nil
}

func (s *Store) ListVessels(ctx context.Context, includeAbsorbed bool) ([]model.Vessel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Vessel
	for _, v := range s.vessels {
		if !includeAbsorbed && v.IsAbsorbed() {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) AddVesselHistory(ctx context.Context, h *model.VesselHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.HistoryID == "" {
		h.HistoryID = newID()
	}
	s.history = append(s.history, *h)
	return nil
}

func (s *Store) ListVesselHistory(ctx context.Context, vesselID string) ([]model.VesselHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.VesselHistory
	for _, h := range s.history {
		if h.VesselID == vesselID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) AddWatchlistEntry(ctx context.Context, w *model.VesselWatchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.WatchlistID == "" {
		w.WatchlistID = newID()
	}
	s.watchlist = append(s.watchlist, *w)
	return nil
}

func (s *Store) ListActiveWatchlist(ctx context.Context, vesselID string) ([]model.VesselWatchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.VesselWatchlist
	for _, w := range s.watchlist {
		if w.VesselID == vesselID && w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}
