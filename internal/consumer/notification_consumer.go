package consumer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/savoria/storefront/internal/notifier"
	"github.com/savoria/storefront/internal/publisher"
)

// MessageReader is the slice of kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NotificationConsumer reads order events off Kafka and forwards them
// to the notification webhook. Failed deliveries are logged and
// dropped; the breaker in the notifier keeps a dead webhook from
// stalling the loop.
type NotificationConsumer struct {
	reader      MessageReader
	notifier    notifier.Notifier
	readBackoff time.Duration
}

func NewNotificationConsumer(n notifier.Notifier, brokers ...string) *NotificationConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "notification-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &NotificationConsumer{reader: reader, notifier: n, readBackoff: time.Second}
}

func (c *NotificationConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.processMessage(ctx); err != nil {
			// A broken reader (closed, broker gone) fails instantly;
			// sleep so the loop doesn't spin logging the same error.
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.readBackoff):
			}
		}
	}
}

func (c *NotificationConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *NotificationConsumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		log.Printf("error reading message: %v", err)
		return err
	}

	eventType := headerValue(m, "event_type")
	if eventType == "" {
		log.Printf("dropping message without event_type header, key=%s", m.Key)
		return nil
	}

	if err := c.notifier.Notify(ctx, eventType, m.Value); err != nil {
		log.Printf("failed to deliver %s notification for %s: %v", eventType, m.Key, err)
	}
	return nil
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
