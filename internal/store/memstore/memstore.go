// Package memstore is an in-memory implementation of internal/store.Store used by
// detector, scoring, and identity-resolution unit tests. It replaces the teacher's
// MagicMock-equivalent path: since the teacher is already Go, this is a direct port of
// the repository-fake idiom (a trivially constructible stand-in satisfying the same
// interface the real supabasestore.Client does) rather than a language translation.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Store is the in-memory fake. Zero value is not usable; construct with New.
type Store struct {
	mu sync.Mutex

	vessels   map[string]model.Vessel
	history   []model.VesselHistory
	watchlist []model.VesselWatchlist

	aisPoints       []model.AISPoint
	aisObservations []model.AISObservation

	gaps      map[string]model.AISGapEvent
	envelopes map[string]model.MovementEnvelope

	corridors map[string]model.Corridor
	baselines map[string]model.CorridorGapBaseline

	stsEvents   []model.StsTransferEvent
	darkVessels []model.DarkVesselDetection
	loitering   []model.LoiteringEvent

	spoofing []model.SpoofingAnomaly
	draught  []model.DraughtChangeEvent

	ports     []model.Port
	portCalls []model.PortCall

	mergeCandidates map[string]model.MergeCandidate
	mergeOperations map[string]model.MergeOperation
	fingerprints    map[string]model.VesselFingerprint

	fleetAlerts []model.FleetAlert

	auditLog     []model.AuditLog
	pipelineRuns map[string]model.PipelineRun
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		vessels:         make(map[string]model.Vessel),
		gaps:            make(map[string]model.AISGapEvent),
		envelopes:       make(map[string]model.MovementEnvelope),
		corridors:       make(map[string]model.Corridor),
		baselines:       make(map[string]model.CorridorGapBaseline),
		mergeCandidates: make(map[string]model.MergeCandidate),
		mergeOperations: make(map[string]model.MergeOperation),
		fingerprints:    make(map[string]model.VesselFingerprint),
		pipelineRuns:    make(map[string]model.PipelineRun),
	}
}

var _ store.Store = (*Store)(nil)

func newID() string { return uuid.NewString() }

// SeedCorridor is a test helper for pre-loading a corridor without going through the
// Store interface's write path.
func (s *Store) SeedCorridor(c model.Corridor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corridors[c.CorridorID] = c
}

// SeedPort is a test helper for pre-loading a port.
func (s *Store) SeedPort(p model.Port) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports = append(s.ports, p)
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
