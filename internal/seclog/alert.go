package seclog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Alert describes a threshold breach for one event type within one
// aggregation window.
type Alert struct {
	EventType string        `json:"event_type"`
	Count     int64         `json:"count"`
	Threshold int64         `json:"threshold"`
	Window    time.Duration `json:"window"`
	At        time.Time     `json:"at"`
}

// Notifier delivers an alert to an external collaborator (email, webhook).
// Delivery failures are logged by the alerter and never propagate.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, alert Alert) error

func (f NotifierFunc) Notify(ctx context.Context, alert Alert) error { return f(ctx, alert) }

// WebhookNotifier POSTs the alert as JSON to a configured URL.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func (w *WebhookNotifier) Notify(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Alerter periodically compares event counts against thresholds and
// notifies collaborators on breach. It owns its own goroutine; Start and
// Stop bound its lifecycle.
type Alerter struct {
	logger     *Logger
	thresholds map[string]int64
	window     time.Duration
	notifiers  []Notifier

	stop chan struct{}
	done chan struct{}
}

func NewAlerter(logger *Logger, thresholds map[string]int64, window time.Duration, notifiers ...Notifier) *Alerter {
	if window <= 0 {
		window = time.Hour
	}
	return &Alerter{
		logger:     logger,
		thresholds: thresholds,
		window:     window,
		notifiers:  notifiers,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (a *Alerter) Start() {
	go a.run()
}

// Stop terminates the loop after running one final check, so events
// counted since the last tick are not silently discarded.
func (a *Alerter) Stop() {
	close(a.stop)
	<-a.done
}

func (a *Alerter) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.check()
		case <-a.stop:
			a.check()
			return
		}
	}
}

func (a *Alerter) check() {
	counts := a.logger.snapshotAndReset()

	for eventType, threshold := range a.thresholds {
		count := counts[eventType]
		if count <= threshold {
			continue
		}

		alert := Alert{
			EventType: eventType,
			Count:     count,
			Threshold: threshold,
			Window:    a.window,
			At:        time.Now().UTC(),
		}

		// SECURITY_ALERT is not in the threshold map, so recording the
		// alert itself cannot re-trigger one.
		a.logger.Log(EventSecurityAlert, Metadata{
			"alert_type": eventType,
			"count":      strconv.FormatInt(count, 10),
			"threshold":  strconv.FormatInt(threshold, 10),
		})

		for _, n := range a.notifiers {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := n.Notify(ctx, alert); err != nil {
				fmt.Fprintf(a.logger.fallback, "seclog: alert delivery failed: %v\n", err)
			}
			cancel()
		}
	}
}
