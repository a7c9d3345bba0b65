// Package producer writes JSON messages onto the trigger topics (spec.md
// §6.3 names them as simulated feeds). The engine builds one KafkaProducer
// in its container and closes it on shutdown; no component of the engine
// calls Publish.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// KafkaProducer publishes JSON-encoded event envelopes onto the
// configured trigger topics, the way the teacher's KafkaProducer wraps one
// *kafka.Writer per logical stream — generalized here to one writer per
// topic name, hash-balanced on the caller-supplied key so messages sharing
// a key land on the same partition.
type KafkaProducer struct {
	writers map[string]*kafka.Writer
	log     logger.Logger
}

// NewKafkaProducer constructs a KafkaProducer with one writer per topic.
func NewKafkaProducer(brokers string, topics []string, log logger.Logger) (*KafkaProducer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("kafka producer: no brokers configured")
	}
	addrs := strings.Split(brokers, ",")

	writers := make(map[string]*kafka.Writer, len(topics))
	for _, topic := range topics {
		writers[topic] = &kafka.Writer{
			Addr:         kafka.TCP(addrs...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		}
	}

	return &KafkaProducer{writers: writers, log: log}, nil
}

// Publish writes payload as a JSON-encoded message to topic, keyed by key.
func (p *KafkaProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	w, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("kafka producer: unconfigured topic %q", topic)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kafka producer: marshal payload: %w", err)
	}

	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Error("failed to publish message", "topic", topic, "key", key, "error", err)
		return err
	}
	return nil
}

// Close flushes and closes every writer.
func (p *KafkaProducer) Close() error {
	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("kafka producer: close topic %q: %w", topic, err)
		}
	}
	return firstErr
}
