package memstore

import (
	"context"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) ListCorridors(ctx context.Context) ([]model.Corridor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Corridor
	for _, c := range s.corridors {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) GetCorridor(ctx context.Context, corridorID string) (*model.Corridor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.corridors[corridorID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) UpsertBaseline(ctx context.Context, b *model.CorridorGapBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines[b.CorridorID] = *b
	return nil
}

func (s *Store) GetBaseline(ctx context.Context, corridorID string) (*model.CorridorGapBaseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.baselines[corridorID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}
