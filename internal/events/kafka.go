package events

import (
	"context"
	"fmt"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

type KafkaPublisher struct {
	w *kgo.Writer
}

// NewKafkaPublisher returns an async writer; delivery errors surface in the completion log.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kgo.Message, err error) {
			if err != nil {
				logs.LogJSON("ERROR", "Kafka delivery failed", map[string]interface{}{
					"error": err.Error(),
					"extra": fmt.Sprintf("messages: %d", len(messages)),
				})
			}
		},
	}
	return &KafkaPublisher{w: w}
}

// Publish keys messages by actor so one user's events stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := e.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(e.ActorID),
		Value: b,
		Time:  e.OccurredAt,
		Headers: []kgo.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
