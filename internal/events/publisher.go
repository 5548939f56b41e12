// Package events moves per-recipient delivery outcomes over Kafka into
// the analytics pipeline. Publishing is best-effort: a broker outage must
// never block or fail a send pass.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

// Publisher writes delivery events to the configured topic.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish keys the event by phone so per-recipient ordering holds within
// a partition.
func (p *Publisher) Publish(ctx context.Context, ev model.DeliveryEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Phone),
		Value: payload,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
