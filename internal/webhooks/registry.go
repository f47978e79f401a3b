// Package webhooks pushes pipeline alerts (new gaps, confidence changes, watchlist
// hits, government alerts ready for export) to externally registered HTTP endpoints.
// Subscribers filter on what an alert is about — its risk band and evidence
// categories — not only on its event type, so an analyst team can subscribe to
// "critical gaps with STS evidence" without receiving every low-band detection.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radiancefleet/core/internal/audit"
	"github.com/radiancefleet/core/internal/model"
)

// WebhookEmitter is the interface the pipeline emits alerts through.
type WebhookEmitter interface {
	Emit(eventType EventType, data map[string]interface{})
	Shutdown()
}

// EventType names one class of pipeline alert.
type EventType string

const (
	EventGapDetected        EventType = "gap.detected"
	EventGapStatusChanged   EventType = "gap.status_changed"
	EventConfidenceRaised   EventType = "confidence.raised"
	EventWatchlistFlagged   EventType = "watchlist.flagged"
	EventFleetAlertRaised   EventType = "fleet_alert.raised"
	EventGovernmentAlertDue EventType = "government_alert.ready"
)

// maxConsecutiveFailures is the unbroken-failure streak that suspends a subscriber.
// One successful delivery resets the streak; a flaky-but-alive endpoint is never
// suspended, only a dead one.
const maxConsecutiveFailures = 10

// AlertContext carries the scoring context behind an emitted event: the risk band of
// the gap (or the highest-banded gap of the run) and the evidence categories its
// breakdown touched. Both are optional — a zero AlertContext matches every
// subscription, so operational events (run counts, status changes) deliver everywhere.
type AlertContext struct {
	Band       string                   `json:"band,omitempty"`
	Categories []model.EvidenceCategory `json:"categories,omitempty"`
}

// bandRank orders the score bands for MinBand gating. An alert with an empty band
// bypasses the floor (see matches); a band missing from this map ranks as 0, the same
// as "low".
var bandRank = map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}

// WebhookSubscription is one registered endpoint plus its alert filters.
type WebhookSubscription struct {
	ID     string      `json:"id"`
	URL    string      `json:"url"`
	Events []EventType `json:"events"`
	// MinBand suppresses delivery of alerts banded below this floor
	// (low < medium < high < critical). Empty delivers every band.
	MinBand string `json:"min_band,omitempty"`
	// Categories restricts delivery to alerts whose evidence touches at least one of
	// the listed categories. Empty delivers regardless of evidence shape.
	Categories []model.EvidenceCategory `json:"categories,omitempty"`
	Secret     string                   `json:"secret,omitempty"`
	Active     bool                     `json:"active"`
	CreatedAt  time.Time                `json:"created_at"`
	FailStreak int                      `json:"fail_streak"`
}

// WebhookEvent is the payload delivered to a subscriber.
type WebhookEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Alert     AlertContext           `json:"alert"`
	Data      map[string]interface{} `json:"data"`
}

// Registry holds webhook subscriptions and applies their alert filters. Suspensions
// are recorded to the audit log when one is wired, the same best-effort trail every
// other alert mutation in the pipeline leaves.
type Registry struct {
	mu    sync.RWMutex
	subs  map[string]*WebhookSubscription
	audit *audit.Logger
}

// NewRegistry returns an empty registry with no audit trail wired.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*WebhookSubscription)}
}

// WithAuditLog wires suspension events into the pipeline's audit trail.
func (r *Registry) WithAuditLog(l *audit.Logger) *Registry {
	r.audit = l
	return r
}

// Register validates and stores a subscription, assigning an ID when absent.
func (r *Registry) Register(sub *WebhookSubscription) error {
	if sub.URL == "" {
		return fmt.Errorf("webhooks: subscription URL is required")
	}
	if len(sub.Events) == 0 {
		return fmt.Errorf("webhooks: at least one event type is required")
	}
	if sub.MinBand != "" {
		if _, ok := bandRank[sub.MinBand]; !ok {
			return fmt.Errorf("webhooks: unknown min_band %q", sub.MinBand)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.Active = true
	sub.CreatedAt = time.Now().UTC()
	sub.FailStreak = 0
	r.subs[sub.ID] = sub

	slog.Info("webhooks: subscriber registered",
		"subscription_id", sub.ID, "url", sub.URL,
		"events", sub.Events, "min_band", sub.MinBand)
	return nil
}

// Unregister removes a subscription.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return fmt.Errorf("webhooks: subscription %s not found", id)
	}
	delete(r.subs, id)
	slog.Info("webhooks: subscriber unregistered", "subscription_id", id)
	return nil
}

// Subscribers returns every active subscription matching the event type and the
// alert's band/category context.
func (r *Registry) Subscribers(eventType EventType, alert AlertContext) []*WebhookSubscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*WebhookSubscription
	for _, sub := range r.subs {
		if sub.Active && sub.matches(eventType, alert) {
			matched = append(matched, sub)
		}
	}
	return matched
}

func (s *WebhookSubscription) matches(eventType EventType, alert AlertContext) bool {
	wanted := false
	for _, e := range s.Events {
		if e == eventType {
			wanted = true
			break
		}
	}
	if !wanted {
		return false
	}

	if s.MinBand != "" && alert.Band != "" {
		if bandRank[alert.Band] < bandRank[s.MinBand] {
			return false
		}
	}

	if len(s.Categories) > 0 && len(alert.Categories) > 0 {
		overlap := false
		for _, want := range s.Categories {
			for _, have := range alert.Categories {
				if want == have {
					overlap = true
					break
				}
			}
		}
		if !overlap {
			return false
		}
	}
	return true
}

// ListAll returns every subscription, active or suspended.
func (r *Registry) ListAll() []*WebhookSubscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*WebhookSubscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	return out
}

// MarkDelivered resets a subscriber's failure streak after a successful delivery.
func (r *Registry) MarkDelivered(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[id]; ok {
		sub.FailStreak = 0
	}
}

// MarkFailed extends a subscriber's failure streak, suspending it at
// maxConsecutiveFailures. The suspension is audit-logged: an operator reviewing why
// alerts stopped reaching an endpoint finds the answer in the same trail as every
// other alert mutation.
func (r *Registry) MarkFailed(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return
	}
	sub.FailStreak++
	if sub.FailStreak < maxConsecutiveFailures || !sub.Active {
		return
	}
	sub.Active = false
	slog.Warn("webhooks: subscriber suspended after consecutive delivery failures",
		"subscription_id", id, "url", sub.URL, "fail_streak", sub.FailStreak)
	r.audit.Log("system:webhooks", "webhook_suspended", "webhook_subscription", id, map[string]any{
		"url":         sub.URL,
		"fail_streak": sub.FailStreak,
	})
}

// SignPayload computes the HMAC-SHA256 delivery signature subscribers verify.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
