package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes dashboard events to a Kafka topic keyed by event id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaWriter builds a synchronous writer for the given brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewKafkaPublisher wraps a writer.
func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish implements dashboard.EventPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event dashboard.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal dashboard event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
		Time:  event.RecordedAt,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(event.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write dashboard event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ dashboard.EventPublisher = (*KafkaPublisher)(nil)
