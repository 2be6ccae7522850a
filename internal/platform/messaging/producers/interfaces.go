// Package producers publishes transfer requests to Kafka and routes
// unprocessable messages to the dead letter topic.
package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes keyed JSON messages to the transfer topic.
// Keys are transfer ids so retries of the same transfer stay in order.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks messages that permanently failed processing,
// together with the failure reason, for operator inspection.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter abstracts kafka.Writer so producers can be tested without a
// broker.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
