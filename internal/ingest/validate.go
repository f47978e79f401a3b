package ingest

import (
	"fmt"
	"regexp"
	"time"
)

// ValidationFailure is returned for a row that must be rejected outright (spec's
// REJECT_INVALID). A row that merely triggers a warning is still ingested; see the flags on Validated.
type ValidationFailure struct {
	Reason string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("ingest: row rejected: %s", e.Reason)
}

func reject(format string, args ...any) error {
	return &ValidationFailure{Reason: fmt.Sprintf(format, args...)}
}

var mmsiPattern = regexp.MustCompile(`^[0-9]{9}$`)
var imoPattern = regexp.MustCompile(`^[0-9]{7}$`)

// timestampFloor is the earliest timestamp this pipeline accepts; earlier values are
// almost certainly a parse error (epoch-zero, placeholder date) rather than real data.
var timestampFloor = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

// futureCeiling bounds how far past "now" a timestamp may fall, admitting minor clock
// skew between feed and ingest host while rejecting obviously corrupt values.
const futureCeiling = 7 * 24 * time.Hour

// Raw is one parsed, not-yet-validated input row. Fields absent in the source feed are
// left at their zero value; Validate treats pointer-shaped optional fields as absent
// when nil.
type Raw struct {
	MMSI       string
	Timestamp  time.Time
	Lat        float64
	Lon        float64
	SOG        *float64
	COG        *float64
	Heading    *int
	NavStatus  *int
	IMO        string
	Name       string
	VesselType string
	Flag       string
	Source     string
}

// Validated is a Raw row that has passed Validate, plus any non-rejecting warning flags.
type Validated struct {
	Raw
	SuspiciousSOG   bool
	AnchoredHighSOG bool
}

// Validate applies spec's row-validation rules to a raw parsed row. It returns a
// *ValidationFailure (via errors.As) for anything that must reject the row outright;
// warnings are recorded on the returned Validated instead of failing it.
func Validate(r Raw, now time.Time) (*Validated, error) {
	if !mmsiPattern.MatchString(r.MMSI) {
		return nil, reject("mmsi %q is not exactly 9 digits", r.MMSI)
	}
	if r.Lat < -90 || r.Lat > 90 {
		return nil, reject("lat %f out of range", r.Lat)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return nil, reject("lon %f out of range", r.Lon)
	}
	if r.Timestamp.Before(timestampFloor) {
		return nil, reject("timestamp %s predates the accepted floor", r.Timestamp)
	}
	if r.Timestamp.After(now.Add(futureCeiling)) {
		return nil, reject("timestamp %s exceeds the future ceiling", r.Timestamp)
	}
	if r.IMO != "" && !imoPattern.MatchString(r.IMO) {
		return nil, reject("imo %q is not exactly 7 digits", r.IMO)
	}

	v := &Validated{Raw: r}

	if r.SOG != nil {
		if *r.SOG < 0 {
			return nil, reject("sog %f is negative", *r.SOG)
		}
		if *r.SOG > 35 {
			return nil, reject("sog %f exceeds the physical limit", *r.SOG)
		}
		// The >50kn suspicious_sog threshold can never fire after the >35 reject above;
		// kept because it is the same implied-speed sentinel the MMSI-cloning detector
		// uses, and a future configurable physical limit could raise the reject bound
		// past it.
		if *r.SOG > 50 {
			v.SuspiciousSOG = true
		}
		if r.NavStatus != nil && *r.NavStatus == 1 && *r.SOG > 3 {
			v.AnchoredHighSOG = true
		}
	}

	return v, nil
}
