package events

import (
	"context"
	"encoding/json"
	"log/slog"

	skafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of segmentio kafka.Writer the sink needs, kept as an
// interface so tests can inject a capturing fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// envelope is the broker wire shape for a forwarded event.
type envelope struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// KafkaSink bridges the in-process bus to a Kafka topic so off-process
// collaborators can consume lifecycle events.
type KafkaSink struct {
	writer Writer
}

// NewKafkaSink creates a sink writing to the given broker and topic.
func NewKafkaSink(brokerURL, topic string) *KafkaSink {
	return &KafkaSink{writer: &skafka.Writer{
		Addr:     skafka.TCP(brokerURL),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{},
	}}
}

// NewKafkaSinkWithWriter allows injecting a test writer.
func NewKafkaSinkWithWriter(w Writer) *KafkaSink {
	return &KafkaSink{writer: w}
}

// Attach subscribes the sink to every lifecycle event on the bus.
func (s *KafkaSink) Attach(bus *Bus) {
	bus.SubscribeAll(s.forward)
}

// Close closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func (s *KafkaSink) forward(evt Event) error {
	value, err := json.Marshal(envelope{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		return err
	}
	msg := skafka.Message{Key: []byte(requestIDFor(evt)), Value: value}
	if err := s.writer.WriteMessages(context.Background(), msg); err != nil {
		slog.Error("kafka_write_failed", "type", string(evt.Type), "error", err)
		return err
	}
	return nil
}

// requestIDFor keys broker messages by request id so all events of one
// payment land in the same partition, preserving their order.
func requestIDFor(evt Event) string {
	switch p := evt.Payload.(type) {
	case PaymentProcessedPayload:
		if p.Result != nil {
			return p.Result.ID
		}
	case PaymentFailedPayload:
		return p.RequestID
	case FraudDeclinePayload:
		return p.RequestID
	case RetryExhaustedPayload:
		return p.RequestID
	}
	return string(evt.Type)
}
