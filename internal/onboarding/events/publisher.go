// Package events publishes onboarding lifecycle changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"onboard/internal/onboarding/models"
	"onboard/internal/platform/kafka/producer"
	"onboard/pkg/requestcontext"
)

// Header names carried on every record.
const (
	HeaderEventType = "event_type"
	HeaderRequestID = "request_id"
)

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes lifecycle events as JSON records keyed by user ID, so
// every event of one application lands on the same partition in order.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafka(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lifecycle event: %w", err)
	}
	headers := map[string]string{HeaderEventType: string(event.Type)}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		headers[HeaderRequestID] = reqID
	}
	return k.producer.Produce(ctx, &producer.Message{
		Topic:   k.topic,
		Key:     []byte(event.UserID.String()),
		Value:   value,
		Headers: headers,
	})
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.LifecycleEvent) error { return nil }
