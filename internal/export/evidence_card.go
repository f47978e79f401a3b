// Package export builds analyst-facing evidence exports for a single gap: an evidence
// card (JSON/Markdown/CSV) and a government-alert package that wraps the card with
// watchlist context and a fixed legal disclaimer. Export is a read path over the store,
// never invoked as a pipeline step -- spec.md §4.11's step order has no export step, and
// a NEW gap has not been through enough of the pipeline to be worth exporting at all.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/radiancefleet/core/internal/confidence"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// ErrGapNotReady is returned when a gap is still in NEW status: spec.md rejects export
// before an analyst (or the automated pipeline) has moved it into a reviewed state.
var ErrGapNotReady = fmt.Errorf("export: gap is in NEW status, export rejected")

// EvidenceCard is the analyst-facing snapshot of everything known about one gap.
type EvidenceCard struct {
	GapID          string          `json:"gap_id"`
	Status         model.GapStatus `json:"status"`
	GeneratedAtUTC time.Time       `json:"generated_at_utc"`

	VesselID   string  `json:"vessel_id"`
	VesselName string  `json:"vessel_name"`
	MMSI       string  `json:"mmsi"`
	IMO        *string `json:"imo,omitempty"`
	Flag       string  `json:"flag"`
	Owner      string  `json:"owner,omitempty"`

	GapStartUTC     time.Time `json:"gap_start_utc"`
	GapEndUTC       time.Time `json:"gap_end_utc"`
	DurationMinutes int       `json:"duration_minutes"`
	CorridorID      *string   `json:"corridor_id,omitempty"`
	InDarkZone      bool      `json:"in_dark_zone"`

	RiskScore       int                   `json:"risk_score"`
	RiskBreakdown   []BreakdownEntry      `json:"risk_breakdown"`
	ConfidenceLabel model.ConfidenceLabel `json:"confidence_label"`

	MovementEnvelope *EnvelopeSummary `json:"movement_envelope,omitempty"`
}

// BreakdownEntry is one named signal contribution, flattened out of model.Breakdown's
// insertion-ordered internal form so JSON/Markdown/CSV all iterate the same slice.
type BreakdownEntry struct {
	Signal string `json:"signal"`
	Points int    `json:"points"`
}

// EnvelopeSummary is the movement-envelope fields worth surfacing to an analyst: the
// plausible-position polygon (as WKT, for direct use in a GIS tool or Copernicus
// Browser) and the distance ratio that drove the gap's speed-anomaly signal.
type EnvelopeSummary struct {
	PolygonWKT             string                       `json:"polygon_wkt"`
	MaxPlausibleDistanceNM float64                      `json:"max_plausible_distance_nm"`
	ActualGapDistanceNM    float64                      `json:"actual_gap_distance_nm"`
	Ratio                  float64                      `json:"ratio"`
	Method                 model.MovementEnvelopeMethod `json:"method"`
}

// BuildEvidenceCard assembles the evidence card for gapID. It returns ErrGapNotReady
// without touching any other store call when the gap is still NEW.
func BuildEvidenceCard(ctx context.Context, s store.Store, gapID string) (*EvidenceCard, error) {
	gap, err := s.GetGap(ctx, gapID)
	if err != nil {
		return nil, fmt.Errorf("export: load gap %s: %w", gapID, err)
	}
	if gap.Status == model.GapStatusNew {
		return nil, ErrGapNotReady
	}

	vessel, err := s.GetVessel(ctx, gap.VesselID)
	if err != nil {
		return nil, fmt.Errorf("export: load vessel %s: %w", gap.VesselID, err)
	}

	vc, err := confidence.New(s).ClassifyVessel(ctx, vessel.VesselID)
	if err != nil {
		return nil, fmt.Errorf("export: classify vessel %s: %w", vessel.VesselID, err)
	}

	card := &EvidenceCard{
		GapID:           gap.GapID,
		Status:          gap.Status,
		GeneratedAtUTC:  time.Now().UTC(),
		VesselID:        vessel.VesselID,
		VesselName:      vessel.Name,
		MMSI:            vessel.MMSI,
		IMO:             vessel.IMO,
		Flag:            vessel.Flag,
		Owner:           vessel.Owner,
		GapStartUTC:     gap.GapStartUTC,
		GapEndUTC:       gap.GapEndUTC,
		DurationMinutes: gap.DurationMinutes,
		CorridorID:      gap.CorridorID,
		InDarkZone:      gap.InDarkZone,
		RiskScore:       gap.RiskScore,
		ConfidenceLabel: vc.Label,
	}

	if gap.RiskBreakdownJSON != nil {
		for _, key := range gap.RiskBreakdownJSON.Keys() {
			if model.IsBookkeeping(key) {
				continue
			}
			if points, ok := gap.RiskBreakdownJSON.Get(key); ok {
				card.RiskBreakdown = append(card.RiskBreakdown, BreakdownEntry{Signal: key, Points: points})
			}
		}
	}

	envelope, err := s.GetEnvelopeForGap(ctx, gapID)
	if err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("export: load movement envelope for gap %s: %w", gapID, err)
	}
	if envelope != nil {
		card.MovementEnvelope = &EnvelopeSummary{
			PolygonWKT:             envelope.ConfidencePolygonWKT,
			MaxPlausibleDistanceNM: envelope.MaxPlausibleDistanceNM,
			ActualGapDistanceNM:    envelope.ActualGapDistanceNM,
			Ratio:                  envelope.Ratio,
			Method:                 envelope.Method,
		}
	}

	return card, nil
}

// ToJSON renders the card as indented JSON.
func (c *EvidenceCard) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ToMarkdown renders the card as an analyst-readable Markdown report.
func (c *EvidenceCard) ToMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Evidence Card: Gap %s\n\n", c.GapID)
	fmt.Fprintf(&b, "Generated: %s\n\n", c.GeneratedAtUTC.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Status**: %s\n", c.Status)
	fmt.Fprintf(&b, "- **Confidence**: %s\n", c.ConfidenceLabel)
	fmt.Fprintf(&b, "- **Risk score**: %d\n\n", c.RiskScore)

	fmt.Fprintf(&b, "## Vessel\n\n")
	fmt.Fprintf(&b, "- **Name**: %s\n", c.VesselName)
	fmt.Fprintf(&b, "- **MMSI**: %s\n", c.MMSI)
	if c.IMO != nil {
		fmt.Fprintf(&b, "- **IMO**: %s\n", *c.IMO)
	}
	fmt.Fprintf(&b, "- **Flag**: %s\n", c.Flag)
	if c.Owner != "" {
		fmt.Fprintf(&b, "- **Owner**: %s\n", c.Owner)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Gap\n\n")
	fmt.Fprintf(&b, "- **Window**: %s -> %s\n", c.GapStartUTC.Format(time.RFC3339), c.GapEndUTC.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Duration**: %d minutes\n", c.DurationMinutes)
	if c.CorridorID != nil {
		fmt.Fprintf(&b, "- **Corridor**: %s\n", *c.CorridorID)
	}
	fmt.Fprintf(&b, "- **Dark zone**: %t\n\n", c.InDarkZone)

	if len(c.RiskBreakdown) > 0 {
		fmt.Fprintf(&b, "## Risk breakdown\n\n")
		fmt.Fprintf(&b, "| Signal | Points |\n|---|---|\n")
		for _, entry := range c.RiskBreakdown {
			fmt.Fprintf(&b, "| %s | %d |\n", entry.Signal, entry.Points)
		}
		b.WriteString("\n")
	}

	if c.MovementEnvelope != nil {
		fmt.Fprintf(&b, "## Movement envelope\n\n")
		fmt.Fprintf(&b, "- **Method**: %s\n", c.MovementEnvelope.Method)
		fmt.Fprintf(&b, "- **Ratio**: %.2f (actual %.1f NM / max plausible %.1f NM)\n",
			c.MovementEnvelope.Ratio, c.MovementEnvelope.ActualGapDistanceNM, c.MovementEnvelope.MaxPlausibleDistanceNM)
		fmt.Fprintf(&b, "- **Polygon (WKT)**: `%s`\n", c.MovementEnvelope.PolygonWKT)
	}

	return b.String()
}

// ToCSV renders the card as a flat field/value table, one row per top-level field plus
// one row per breakdown signal. This is the lowest-fidelity export format, meant for
// analysts pivoting the card into a spreadsheet rather than reading it directly.
func (c *EvidenceCard) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"field", "value"},
		{"gap_id", c.GapID},
		{"status", string(c.Status)},
		{"confidence_label", string(c.ConfidenceLabel)},
		{"risk_score", strconv.Itoa(c.RiskScore)},
		{"vessel_id", c.VesselID},
		{"vessel_name", c.VesselName},
		{"mmsi", c.MMSI},
		{"flag", c.Flag},
		{"owner", c.Owner},
		{"gap_start_utc", c.GapStartUTC.Format(time.RFC3339)},
		{"gap_end_utc", c.GapEndUTC.Format(time.RFC3339)},
		{"duration_minutes", strconv.Itoa(c.DurationMinutes)},
		{"in_dark_zone", strconv.FormatBool(c.InDarkZone)},
	}
	if c.CorridorID != nil {
		rows = append(rows, []string{"corridor_id", *c.CorridorID})
	}
	if c.IMO != nil {
		rows = append(rows, []string{"imo", *c.IMO})
	}
	if c.MovementEnvelope != nil {
		rows = append(rows,
			[]string{"movement_envelope_method", string(c.MovementEnvelope.Method)},
			[]string{"movement_envelope_ratio", strconv.FormatFloat(c.MovementEnvelope.Ratio, 'f', 4, 64)},
			[]string{"movement_envelope_polygon_wkt", c.MovementEnvelope.PolygonWKT},
		)
	}

	breakdown := make([]BreakdownEntry, len(c.RiskBreakdown))
	copy(breakdown, c.RiskBreakdown)
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Signal < breakdown[j].Signal })
	for _, entry := range breakdown {
		rows = append(rows, []string{"signal:" + entry.Signal, strconv.Itoa(entry.Points)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("export: write csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
