package audit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaSinkConfig configures a KafkaSink.
type KafkaSinkConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic is the Kafka topic to write audit events to.
	Topic string `yaml:"topic"`

	// Async enables fire-and-forget writes. Default false: a Write reports
	// broker errors to the caller (typically a QueuedSink worker).
	Async bool `yaml:"async"`
}

// KafkaSink writes audit events to a Kafka topic, keyed by target namespace
// so decisions for one namespace stay ordered within a partition.
type KafkaSink struct {
	writer *kafka.Writer
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewKafkaSink creates a new KafkaSink.
func NewKafkaSink(cfg KafkaSinkConfig, logger *zap.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("a Kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
		Async:    cfg.Async,
	}

	return &KafkaSink{writer: writer, logger: logger.Named("audit-kafka")}, nil
}

// Write marshals the event to JSON and produces it to the configured topic.
func (s *KafkaSink) Write(ctx context.Context, event *Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("kafka sink is closed")
	}
	s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit event")
	}

	msg := kafka.Message{
		Key:   []byte(event.Target.Namespace),
		Value: payload,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to write audit event to kafka")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}

// Name implements Sink.
func (s *KafkaSink) Name() string { return "kafka" }
