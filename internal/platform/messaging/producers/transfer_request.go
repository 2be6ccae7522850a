package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/homeplan-finance-core/internal/config"
)

// TransferReqMessageProducer publishes transfer requests from the gateway
// to the transfer topic. Writes are async; the completion callback logs
// delivery failures since the HTTP response has already been sent.
type TransferReqMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewTransferReqMessageProducer ensures the transfer topic exists and
// builds the async writer.
func NewTransferReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransferReqMessageProducer, error) {
	if cfg.TransferTopic == "" {
		return nil, fmt.Errorf("kafka transfer topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.TransferTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure transfer topic %s: %w", cfg.TransferTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.TransferTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Async transfer publish failed", "topic", cfg.TransferTopic, "count", len(messages), "error", err)
			}
		},
	}

	return &TransferReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.TransferTopic,
	}, nil
}

// Publish marshals the value and writes it keyed by the transfer id.
func (p *TransferReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	msg := kafka.Message{Key: []byte(key), Value: payload}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transfer request", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transfer request", "topic", p.topic, "key", key)
	return nil
}

func (p *TransferReqMessageProducer) Close() error {
	p.logger.Info("Closing transfer request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for %s: %w", p.topic, err)
	}
	return nil
}
