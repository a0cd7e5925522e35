package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Digest summarises notifications raised over a time period.
type Digest struct {
	Period        string           `json:"period"`
	Counts        map[Severity]int `json:"counts"`
	Notifications []Notification   `json:"notifications"`
	Summary       string           `json:"summary"`
}

// Dispatcher persists notifications and delivers them to webhook subscribers.
type Dispatcher struct {
	store  *Store
	client *http.Client
	logger *zap.Logger
	// static webhooks come from configuration and are not stored.
	static []Webhook
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithHTTPClient replaces the default webhook client.
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) { d.client = c }
}

// WithWebhooks adds webhooks that receive every matching notification in
// addition to those registered in the store.
func WithWebhooks(hooks ...Webhook) DispatcherOption {
	return func(d *Dispatcher) { d.static = append(d.static, hooks...) }
}

// NewDispatcher creates a Dispatcher backed by the given store.
func NewDispatcher(store *Store, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store: store,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch persists n and posts it to every webhook whose filter it meets.
// Only the persistence error is returned; webhook failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	if err := d.store.Create(ctx, &n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	hooks, err := d.store.ListWebhooks(ctx)
	if err != nil {
		d.logger.Warn("listing webhooks", zap.Error(err))
	}
	hooks = append(hooks, d.static...)

	var payload []byte
	for _, wh := range hooks {
		if !severityMatches(n.Severity, wh.SeverityFilter) {
			continue
		}
		if payload == nil {
			if payload, err = json.Marshal(n); err != nil {
				return fmt.Errorf("marshalling notification: %w", err)
			}
		}
		if err := d.SendWebhook(ctx, wh.URL, payload); err != nil {
			d.logger.Warn("webhook delivery failed",
				zap.String("notification_id", n.ID),
				zap.String("url", wh.URL),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("notification dispatched",
		zap.String("notification_id", n.ID),
		zap.String("severity", string(n.Severity)),
		zap.String("session_id", n.SessionID),
	)
	return nil
}

// GenerateDigest builds a summary of notifications raised since the given time.
func (d *Dispatcher) GenerateDigest(ctx context.Context, since time.Time) (*Digest, error) {
	all, err := d.store.List(ctx, ListFilter{Since: since})
	if err != nil {
		return nil, fmt.Errorf("listing notifications for digest: %w", err)
	}

	counts := make(map[Severity]int)
	for _, n := range all {
		counts[n.Severity]++
	}

	period := fmt.Sprintf("%s to %s",
		since.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339))

	summary := fmt.Sprintf("%d notification(s), %d urgent", len(all), counts[SeverityError])

	return &Digest{
		Period:        period,
		Counts:        counts,
		Notifications: all,
		Summary:       summary,
	}, nil
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// severityMatches returns true if the notification severity meets or exceeds the filter threshold.
func severityMatches(actual, filter Severity) bool {
	return severityLevels[actual] >= severityLevels[filter]
}
