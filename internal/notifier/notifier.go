package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Notifier delivers order events to the customer-messaging collaborator.
// Delivery mechanics (email, SMS) live behind the webhook.
type Notifier interface {
	Notify(ctx context.Context, eventType string, payload []byte) error
}

// WebhookNotifier posts event payloads to a webhook through a circuit
// breaker, so a dead messaging backend cannot stall the consumer loop.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	settings := gobreaker.Settings{
		Name:    "notification-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, eventType string, payload []byte) error {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, fmt.Errorf("build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", eventType)

		resp, err := n.client.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("post webhook: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
