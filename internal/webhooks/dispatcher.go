package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/radiancefleet/core/internal/retry"
)

// deliveryDelays is the bounded retry vector webhook delivery backs off on, shared with
// internal/retry rather than reimplementing its own backoff loop: a delivery attempt is
// classified by retry.ClassifyHTTP, the same policy the feed adapters retry under (retry
// on 429/5xx and transport errors, never on 4xx — a subscriber's endpoint rejecting the
// payload outright won't start accepting it on attempt two).
var deliveryDelays = []time.Duration{500 * time.Millisecond, 1 * time.Second}

// Dispatcher sends webhook events to registered subscribers asynchronously
type Dispatcher struct {
	registry   *Registry
	httpClient *http.Client
	queue      chan *deliveryJob
	logger     *log.Logger
	wg         sync.WaitGroup
	workers    int
}

type deliveryJob struct {
	subscriber *WebhookSubscription
	event      *WebhookEvent
}

// NewDispatcher creates a webhook dispatcher with a background worker pool
func NewDispatcher(registry *Registry, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		registry: registry,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		queue:   make(chan *deliveryJob, 1000),
		logger:  log.New(log.Writer(), "[DISPATCH] ", log.LstdFlags),
		workers: workers,
	}

	// Start worker pool
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return d
}

// Emit sends an event with no alert context: it reaches every subscriber of the event
// type regardless of band/category filters. Use EmitAlert when the scoring context is
// known.
func (d *Dispatcher) Emit(eventType EventType, data map[string]interface{}) {
	d.EmitAlert(eventType, AlertContext{}, data)
}

// EmitAlert sends an event to every subscriber whose filters match the alert's band
// and evidence categories.
func (d *Dispatcher) EmitAlert(eventType EventType, alert AlertContext, data map[string]interface{}) {
	subscribers := d.registry.Subscribers(eventType, alert)
	if len(subscribers) == 0 {
		return
	}

	event := &WebhookEvent{
		ID:        fmt.Sprintf("evt-%d", time.Now().UnixNano()),
		Type:      eventType,
		Source:    "/api/v1/pipeline",
		Timestamp: time.Now(),
		Alert:     alert,
		Data:      data,
	}

	for _, sub := range subscribers {
		select {
		case d.queue <- &deliveryJob{subscriber: sub, event: event}:
		default:
			d.logger.Printf("⚠️  Webhook queue full, dropping event %s for %s", event.ID, sub.ID)
		}
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for job := range d.queue {
		d.deliver(job)
	}
}

// deliver runs one subscriber's delivery through retry.Do, so a flaky endpoint gets the
// same bounded backoff the pipeline gives its own inbound feeds rather than a
// hand-rolled exponential sleep. Every attempt reports its outcome to the Registry:
// failures extend the suspension streak per attempt, not per job, and one success
// resets it.
func (d *Dispatcher) deliver(job *deliveryJob) {
	payload, err := json.Marshal(job.event)
	if err != nil {
		d.logger.Printf("❌ Failed to marshal webhook event: %v", err)
		return
	}

	cfg := retry.Config{
		Name:   "webhook:" + job.subscriber.ID,
		Delays: deliveryDelays,
		Classify: func(resp *http.Response, attemptErr error) retry.Classification {
			class := retry.ClassifyHTTP(resp, attemptErr)
			if class == retry.Success {
				d.registry.MarkDelivered(job.subscriber.ID)
			} else {
				d.registry.MarkFailed(job.subscriber.ID)
			}
			return class
		},
	}

	resp, err := retry.Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		return d.attempt(ctx, job, payload)
	})
	if err != nil {
		d.logger.Printf("❌ Webhook delivery failed: %s → %v", job.subscriber.URL, err)
		return
	}
	defer resp.Body.Close()
	d.logger.Printf("✅ Webhook delivered: %s → %s (%s)", job.event.Type, job.subscriber.URL, job.event.ID)
}

func (d *Dispatcher) attempt(ctx context.Context, job *deliveryJob, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", job.subscriber.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RadianceFleet-Event-Type", string(job.event.Type))
	req.Header.Set("X-RadianceFleet-Event-ID", job.event.ID)

	if job.subscriber.Secret != "" {
		sig := SignPayload(payload, job.subscriber.Secret)
		req.Header.Set("X-RadianceFleet-Signature", "sha256="+sig)
	}

	return d.httpClient.Do(req)
}

// Shutdown gracefully shuts down the dispatcher
func (d *Dispatcher) Shutdown() {
	close(d.queue)
	d.wg.Wait()
}
