// Package kafka publishes events to Kafka.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/etnz/accounts/events"
	"github.com/segmentio/kafka-go"
)

// Publisher writes JSON encoded events to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a publisher on brokers. The topic is chosen per message.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
}

// Close flushes pending messages.
func (p *Publisher) Close() error { return p.writer.Close() }

var _ events.Publisher = (*Publisher)(nil)
