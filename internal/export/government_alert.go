package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/radiancefleet/core/internal/confidence"
	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store"
)

// Disclaimer is appended verbatim to every government-alert package: this tool
// surfaces investigative leads, it does not adjudicate sanctions violations.
const Disclaimer = "investigative triage, not a legal determination"

// HuntMissionContext is the investigative basis for flagging a vessel to a government
// partner: the active watchlist/sanctions entries behind the referral, grounded on
// model.VesselWatchlist since no separate hunt-mission model exists -- a watchlist
// entry already carries the source (OFAC/EU/KSE) and reason an analyst would cite.
type HuntMissionContext struct {
	Entries []model.VesselWatchlist `json:"entries"`
}

// ScoreSnapshot freezes the vessel's confidence classification at package-build time,
// since the live classification can change on the next pipeline run.
type ScoreSnapshot struct {
	Label      model.ConfidenceLabel          `json:"label"`
	MaxScore   int                            `json:"max_score"`
	Categories map[model.EvidenceCategory]int `json:"categories"`
}

// GovernmentAlertPackage bundles an evidence card with the investigative context a
// government partner needs to act on a referral.
type GovernmentAlertPackage struct {
	GeneratedAtUTC time.Time          `json:"generated_at_utc"`
	EvidenceCard   *EvidenceCard      `json:"evidence_card"`
	HuntMission    HuntMissionContext `json:"hunt_mission_context"`
	ScoreSnapshot  ScoreSnapshot      `json:"score_snapshot"`
	Disclaimer     string             `json:"disclaimer"`
}

// BuildGovernmentAlertPackage assembles the full package for gapID, reusing
// BuildEvidenceCard's NEW-status gate -- a gap not ready for an analyst-facing evidence
// card is not ready for a government referral either.
func BuildGovernmentAlertPackage(ctx context.Context, s store.Store, gapID string) (*GovernmentAlertPackage, error) {
	card, err := BuildEvidenceCard(ctx, s, gapID)
	if err != nil {
		return nil, err
	}

	watchlist, err := s.ListActiveWatchlist(ctx, card.VesselID)
	if err != nil {
		return nil, fmt.Errorf("export: load watchlist for vessel %s: %w", card.VesselID, err)
	}

	vc, err := confidence.New(s).ClassifyVessel(ctx, card.VesselID)
	if err != nil {
		return nil, fmt.Errorf("export: classify vessel %s: %w", card.VesselID, err)
	}

	return &GovernmentAlertPackage{
		GeneratedAtUTC: time.Now().UTC(),
		EvidenceCard:   card,
		HuntMission:    HuntMissionContext{Entries: watchlist},
		ScoreSnapshot: ScoreSnapshot{
			Label:      vc.Label,
			MaxScore:   vc.MaxScore,
			Categories: vc.Categories,
		},
		Disclaimer: Disclaimer,
	}, nil
}

// ToJSON renders the package as indented JSON. Per spec, the government-alert package
// is a JSON-only export -- unlike the evidence card, it has no Markdown/CSV form.
func (p *GovernmentAlertPackage) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
