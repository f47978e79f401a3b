// Package adapters defines the contract every external collaborator the pipeline
// reads from must satisfy. Fetching is out of scope here (spec §1): these interfaces
// exist so the orchestrator's fetch step can depend on a stable shape regardless of
// which concrete HTTP/TCP client backs it in a later, deployment-specific build.
package adapters

import (
	"context"
	"io"
	"time"
)

// CSVSource streams one AIS CSV feed's raw bytes. internal/ingest.ParseCSV consumes
// the result directly; CSVSource does not parse.
type CSVSource interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// GFWEvent is one row of the Global Fishing Watch gap/encounter events dataset
// (`public-global-gaps-events:latest`), matching spec.md §6's literal field set.
type GFWEvent struct {
	VesselID          string
	OffPosition        [2]float64 // [lat, lon]
	OnPosition         [2]float64
	OffTimestampUTC    time.Time
	OnTimestampUTC     time.Time
	DurationHours      float64
	DistanceKm         float64
	ImpliedSpeedKnots  float64
}

// GFWDetection is one row of the offline GFW detection CSV (dark-vessel satellite
// detections), matching spec.md §6's column set.
type GFWDetection struct {
	DetectID      string
	TimestampUTC  time.Time
	Lat, Lon      float64
	VesselLengthM float64
	VesselScore   float64
	VesselType    string
}

// GFWEventSource fetches gap/encounter events and offline detections for a lookback
// window. Network I/O is out of scope; see internal/adapters/noaa and
// internal/adapters/kystverket for the two adapters this pack implements a real
// (non-network) transform for.
type GFWEventSource interface {
	FetchGapEvents(ctx context.Context, since time.Time) ([]GFWEvent, error)
	FetchDetections(ctx context.Context, since time.Time) ([]GFWDetection, error)
}

// FTMBanRecord is one Flags of Thames (FTM) / EMSA port-state-control ban record,
// reduced to the two fields the spoofing/scoring layer needs: which hull, and when it
// was last detained.
type FTMBanRecord struct {
	IMO               string
	LastDetentionDate time.Time
}

// FTMBanSource looks up a vessel's most recent PSC detention by IMO number.
type FTMBanSource interface {
	Lookup(ctx context.Context, imo string) (*FTMBanRecord, error)
}
