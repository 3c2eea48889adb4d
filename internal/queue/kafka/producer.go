// internal/queue/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"notification-engine/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Producer publishes trigger jobs to the delivery topic. Messages are keyed
// by group so one organization's jobs land on one partition in order.
type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// NewProducerWithWriter injects a writer, used by tests.
func NewProducerWithWriter(writer messageWriter) *Producer {
	return &Producer{writer: writer}
}

func (p *Producer) Enqueue(ctx context.Context, message models.QueueMessage) error {
	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode queue message %s: %w", message.Name, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(message.GroupID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write queue message %s: %w", message.Name, err)
	}
	return nil
}

// Close flushes and closes the underlying writer when it owns one.
func (p *Producer) Close() error {
	if writer, ok := p.writer.(*kafka.Writer); ok {
		return writer.Close()
	}
	return nil
}
