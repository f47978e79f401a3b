package spoofing

import (
	"context"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/config"
	"github.com/radiancefleet/core/internal/model"
)

type stopRole int

const (
	stopOther stopRole = iota
	stopRussianOrigin
	stopIntermediary
	stopSanctionedDestination
)

// DetectRouteLaundering classifies each of a vessel's port calls in the configured
// lookback window by the role its country plays (Russian-origin, intermediary,
// sanctioned-destination, or other) and scores the strongest laundering chain found:
// a 3-hop Russian->intermediary->sanctioned sequence, a 2-hop Russian->intermediary
// sequence, or a single intermediary-only visit.
func (d *Detector) DetectRouteLaundering(ctx context.Context, vesselID string) (int, error) {
	active, err := d.alreadyActive(ctx, vesselID, model.AnomalyRouteLaundering)
	if err != nil {
		return 0, err
	}
	if active {
		return 0, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -d.cfg.RouteLaundering.LookbackDays)
	calls, err := d.store.ListPortCallsByVessel(ctx, vesselID, since)
	if err != nil {
		return 0, fmt.Errorf("spoofing: route_laundering list port calls: %w", err)
	}
	if len(calls) < 2 {
		return 0, nil
	}

	ports, err := d.store.ListPorts(ctx)
	if err != nil {
		return 0, fmt.Errorf("spoofing: route_laundering list ports: %w", err)
	}
	countryByPort := make(map[string]string, len(ports))
	for _, p := range ports {
		countryByPort[p.PortID] = p.Country
	}

	roles := make([]stopRole, len(calls))
	for i, c := range calls {
		roles[i] = classifyStop(countryByPort[c.PortID], &d.cfg.RouteLaundering)
	}

	for i := 0; i+2 < len(roles); i++ {
		if roles[i] == stopRussianOrigin && roles[i+1] == stopIntermediary && roles[i+2] == stopSanctionedDestination {
			return d.createRouteLaundering(ctx, vesselID, calls[i], calls[i+2], 35, "3-hop")
		}
	}
	for i := 0; i+1 < len(roles); i++ {
		if roles[i] == stopRussianOrigin && roles[i+1] == stopIntermediary {
			return d.createRouteLaundering(ctx, vesselID, calls[i], calls[i+1], 20, "2-hop")
		}
	}
	for i, r := range roles {
		if r == stopIntermediary {
			return d.createRouteLaundering(ctx, vesselID, calls[i], calls[i], 15, "single_intermediary")
		}
	}

	return 0, nil
}

func (d *Detector) createRouteLaundering(ctx context.Context, vesselID string, start, end model.PortCall, score int, pattern string) (int, error) {
	evidence := map[string]any{
		"pattern":        pattern,
		"start_port_call": start.PortCallID,
		"end_port_call":   end.PortCallID,
	}
	if err := d.create(ctx, vesselID, model.AnomalyRouteLaundering, start.ArrivalUTC, end.ArrivalUTC, score, evidence); err != nil {
		return 0, fmt.Errorf("spoofing: route_laundering create: %w", err)
	}
	return 1, nil
}

func classifyStop(country string, cfg *config.RouteLaunderingConfig) stopRole {
	if containsCountry(cfg.RussianOriginCountries, country) {
		return stopRussianOrigin
	}
	if containsCountry(cfg.IntermediaryCountries, country) {
		return stopIntermediary
	}
	if containsCountry(cfg.SanctionedDestinationCountries, country) {
		return stopSanctionedDestination
	}
	return stopOther
}

func containsCountry(list []string, country string) bool {
	for _, c := range list {
		if c == country {
			return true
		}
	}
	return false
}
