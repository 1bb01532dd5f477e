package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/user/hello-proto/internal/config"
	"github.com/user/hello-proto/internal/logging"
)

// ContentTypeHeader carries the codec content type of every published record
const ContentTypeHeader = "content-type"

// Producer publishes encoded sample messages to a single topic
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logging.Logger
}

// NewSaramaConfig returns the producer configuration used against real brokers
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	// Wait for all in-sync replicas so a returned offset is durable
	sc.Producer.RequiredAcks = sarama.WaitForAll
	// Required by SyncProducer
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
	sc.Version = sarama.V2_8_0_0
	return sc
}

// NewProducer connects a sync producer to the configured brokers
func NewProducer(cfg config.KafkaConfig, logger *logging.Logger) (*Producer, error) {
	client, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewProducerWithClient(client, cfg.Topic, logger), nil
}

// NewProducerWithClient wraps an existing sarama.SyncProducer
func NewProducerWithClient(client sarama.SyncProducer, topic string, logger *logging.Logger) *Producer {
	return &Producer{
		producer: client,
		topic:    topic,
		logger:   logger.WithField("topic", topic),
	}
}

// Publish sends one record keyed by key and waits for the broker ack
func (p *Producer) Publish(ctx context.Context, key string, value []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish cancelled: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(ContentTypeHeader), Value: []byte(contentType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Errorw("Failed to publish message", "key", key, "error", err)
		return fmt.Errorf("failed to publish message %s: %w", key, err)
	}

	p.logger.Infow("Published message",
		"key", key,
		"partition", partition,
		"offset", offset,
		"bytes", len(value))
	return nil
}

// Close closes the producer connection
func (p *Producer) Close() error {
	p.logger.Debug("Closing Kafka producer")
	return p.producer.Close()
}
