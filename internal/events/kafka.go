package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
			// One event per request: flush right away instead of waiting
			// for the default one second batch window.
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  3,
		}),
	}
}

// Publish keys messages by user so one user's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := encode(e)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
