package memstore

import (
	"context"
	"time"

	"github.com/radiancefleet/core/internal/model"
)

func (s *Store) CreateSTSEvent(ctx context.Context, e *model.StsTransferEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.StsID == "" {
		e.StsID = newID()
	}
	for i, existing := range s.stsEvents {
		if existing.Vessel1ID == e.Vessel1ID && existing.Vessel2ID == e.Vessel2ID && existing.StartUTC.Equal(e.StartUTC) {
			s.stsEvents[i] = *e
			return nil
		}
	}
	s.stsEvents = append(s.stsEvents, *e)
	return nil
}

func (s *Store) ListSTSEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.StsTransferEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StsTransferEvent
	for _, e := range s.stsEvents {
		if (e.Vessel1ID == vesselID || e.Vessel2ID == vesselID) && !e.StartUTC.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) AddDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.DetectionID == "" {
		d.DetectionID = newID()
	}
	s.darkVessels = append(s.darkVessels, *d)
	return nil
}

func (s *Store) UpdateDarkVesselDetection(ctx context.Context, d *model.DarkVesselDetection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.darkVessels {
		if existing.DetectionID == d.DetectionID {
			s.darkVessels[i] = *d
			return nil
		}
	}
	return nil
}

func (s *Store) ListUnmatchedDarkVesselDetections(ctx context.Context, from, to time.Time) ([]model.DarkVesselDetection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DarkVesselDetection
	for _, d := range s.darkVessels {
		// A DARK_DARK match links only the STS event, never a vessel, so the STS
		// link is the authoritative "already matched" marker.
		if d.LinkedStsID != nil {
			continue
		}
		if d.ObservedAt.Before(from) || d.ObservedAt.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) CreateLoiteringEvent(ctx context.Context, e *model.LoiteringEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.LoiteringID == "" {
		e.LoiteringID = newID()
	}
	s.loitering = append(s.loitering, *e)
	return nil
}

func (s *Store) ListLoiteringEventsByVessel(ctx context.Context, vesselID string, since time.Time) ([]model.LoiteringEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LoiteringEvent
	for _, e := range s.loitering {
		if e.VesselID == vesselID && !e.StartUTC.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}
