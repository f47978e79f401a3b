// Package portcall detects port-geofence residence: a sustained run of low-speed AIS
// points within proximity of a known Port becomes a PortCall. A run interrupted within
// the scanned window (the vessel sped up or left the radius) is recorded complete with
// both arrival and departure; a run still active at the edge of the window is recorded
// open (nil departure). A later scan whose first qualifying point continues that same
// port closes it via UpdatePortCall instead of inserting a duplicate row; one left open
// by a gap in coverage (the vessel simply stopped transmitting) is a known limitation —
// nothing observes its departure until satellite or a later terrestrial point resumes
// tracking inside the same radius.
package portcall

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/geo"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Detector scans AIS tracks for port-geofence residence.
type Detector struct {
	store store.Store
	cfg   config.DetectorsConfig
}

// New returns a Detector.
func New(s store.Store, cfg config.DetectorsConfig) *Detector {
	return &Detector{store: s, cfg: cfg}
}

// Result tallies one vessel's run.
type Result struct {
	PortCallsCreated int
	Errors           []string
}

// DetectForVessel scans one vessel's AIS history in [from, to] for qualifying
// proximity/speed residence runs against every known Port and creates a PortCall per
// qualifying run. A run still active at the end of the scanned window is stored open
// (no departure time) and closed by a later call that finds it via ListOpenPortCall,
// rather than closed prematurely.
func (d *Detector) DetectForVessel(ctx context.Context, vesselID string, from, to time.Time) (Result, error) {
	var res Result

	points, err := d.store.ListAISPoints(ctx, vesselID, from, to)
	if err != nil {
		return res, fmt.Errorf("portcall: list points: %w", err)
	}
	if len(points) == 0 {
		return res, nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TimestampUTC.Before(points[j].TimestampUTC) })

	ports, err := d.store.ListPorts(ctx)
	if err != nil {
		return res, fmt.Errorf("portcall: list ports: %w", err)
	}
	if len(ports) == 0 {
		return res, nil
	}

	radiusNM := d.cfg.PortCallRadiusNM
	if radiusNM <= 0 {
		radiusNM = 3
	}
	maxSOG := d.cfg.PortCallMaxSOGKn
	if maxSOG <= 0 {
		maxSOG = 1
	}
	minHours := d.cfg.PortCallMinHours
	if minHours <= 0 {
		minHours = 2
	}

	openCall, err := d.store.ListOpenPortCall(ctx, vesselID)
	if err != nil {
		return res, fmt.Errorf("portcall: list open port call: %w", err)
	}
	firstPort := nearestPortWithin(points[0], ports, radiusNM)
	continuesOpenCall := openCall != nil && firstPort != nil && firstPort.PortID == openCall.PortID &&
		points[0].SOG != nil && *points[0].SOG <= maxSOG

	var run []model.AISPoint
	var runPort *model.Port

	// closeRun is called whenever a run is interrupted by a speed/proximity break — it
	// always means the vessel's residence genuinely ended, so the PortCall is complete.
	closeRun := func() error {
		defer func() { run, runPort = nil, nil }()
		if runPort == nil {
			return nil
		}
		lastSeen := run[len(run)-1].TimestampUTC
		if continuesOpenCall && runPort.PortID == openCall.PortID {
			continuesOpenCall = false
			return d.closeOpenCall(ctx, openCall, lastSeen, run)
		}
		if lastSeen.Sub(run[0].TimestampUTC).Hours() < minHours {
			return nil
		}
		created, err := d.emitPortCall(ctx, vesselID, runPort.PortID, run, true)
		if err != nil {
			return err
		}
		res.PortCallsCreated += created
		return nil
	}

	for _, p := range points {
		port := nearestPortWithin(p, ports, radiusNM)
		slow := p.SOG != nil && *p.SOG <= maxSOG

		if port == nil || !slow || (runPort != nil && port.PortID != runPort.PortID) {
			if err := closeRun(); err != nil {
				return res, err
			}
			if port == nil || !slow {
				continue
			}
		}
		runPort = port
		run = append(run, p)
	}

	// A run still active at the edge of the scanned window is not yet known to have
	// ended — leave it open rather than closing it on an arbitrary scan boundary;
	// ListOpenPortCall lets the next scan find and extend it instead of duplicating it.
	if runPort != nil {
		if continuesOpenCall && runPort.PortID == openCall.PortID {
			return res, nil
		}
		if run[len(run)-1].TimestampUTC.Sub(run[0].TimestampUTC).Hours() >= minHours {
			created, err := d.emitPortCall(ctx, vesselID, runPort.PortID, run, false)
			if err != nil {
				return res, err
			}
			res.PortCallsCreated += created
		}
	}

	return res, nil
}

// closeOpenCall sets departure and min-SOG on a port call left open by a prior scan,
// now that this scan observed the vessel actually leave.
func (d *Detector) closeOpenCall(ctx context.Context, open *model.PortCall, departure time.Time, continuation []model.AISPoint) error {
	minSOG := open.MinSOGDuringCall
	for _, p := range continuation {
		if p.SOG != nil && *p.SOG < minSOG {
			minSOG = *p.SOG
		}
	}
	open.DepartureUTC = &departure
	open.MinSOGDuringCall = minSOG
	if err := d.store.UpdatePortCall(ctx, open); err != nil {
		return fmt.Errorf("portcall: close open call: %w", err)
	}
	return nil
}

// nearestPortWithin returns the closest port to p within radiusNM, or nil.
func nearestPortWithin(p model.AISPoint, ports []model.Port, radiusNM float64) *model.Port {
	var best *model.Port
	bestDist := radiusNM
	for i := range ports {
		dist := geo.HaversineNM(p.Lat, p.Lon, ports[i].Lat, ports[i].Lon)
		if dist <= bestDist {
			best, bestDist = &ports[i], dist
		}
	}
	return best
}

func (d *Detector) emitPortCall(ctx context.Context, vesselID, portID string, run []model.AISPoint, closed bool) (int, error) {
	existing, err := d.store.ListPortCallsByVessel(ctx, vesselID, run[0].TimestampUTC.Add(-24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("portcall: list existing: %w", err)
	}
	arrival, lastSeen := run[0].TimestampUTC, run[len(run)-1].TimestampUTC
	for _, pc := range existing {
		if pc.PortID != portID {
			continue
		}
		end := lastSeen
		if pc.DepartureUTC != nil {
			end = *pc.DepartureUTC
		}
		if pc.ArrivalUTC.Before(lastSeen) && arrival.Before(end) {
			return 0, nil
		}
	}

	minSOG := run[0].SOG
	for _, p := range run {
		if p.SOG != nil && (minSOG == nil || *p.SOG < *minSOG) {
			minSOG = p.SOG
		}
	}
	var minSOGVal float64
	if minSOG != nil {
		minSOGVal = *minSOG
	}

	pc := &model.PortCall{
		PortCallID:       uuid.NewString(),
		VesselID:         vesselID,
		PortID:           portID,
		ArrivalUTC:       arrival,
		MinSOGDuringCall: minSOGVal,
	}
	if closed {
		pc.DepartureUTC = &lastSeen
	}
	if err := d.store.CreatePortCall(ctx, pc); err != nil {
		return 0, fmt.Errorf("portcall: create: %w", err)
	}
	return 1, nil
}
