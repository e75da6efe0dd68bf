package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagepay/payment-engine/internal/model"
)

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.Subscribe(FraudDecline, func(evt Event) error {
		got = append(got, evt)
		return nil
	})

	bus.Publish(Event{Type: FraudDecline, Payload: FraudDeclinePayload{RequestID: "req-1", RiskScore: 700}})
	bus.Publish(Event{Type: PaymentProcessed, Payload: PaymentProcessedPayload{}})

	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(FraudDeclinePayload)
	require.True(t, ok)
	assert.Equal(t, "req-1", payload.RequestID)
}

func TestBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	called := 0
	bus.Subscribe(PaymentFailed, func(Event) error { return errors.New("boom") })
	bus.Subscribe(PaymentFailed, func(Event) error { called++; return nil })

	bus.Publish(Event{Type: PaymentFailed, Payload: PaymentFailedPayload{RequestID: "req-1"}})

	assert.Equal(t, 1, called)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(PaymentProcessed, func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(Event{Type: PaymentProcessed, Payload: PaymentProcessedPayload{}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, count)
}

// fakeWriter captures kafka messages instead of dialing a broker.
type fakeWriter struct {
	mu       sync.Mutex
	messages []skafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaSink_ForwardsBusEvents(t *testing.T) {
	writer := &fakeWriter{}
	sink := NewKafkaSinkWithWriter(writer)
	bus := NewBus()
	sink.Attach(bus)

	result := &model.PaymentResult{ID: "pay-9", Status: model.StatusSucceeded}
	bus.Publish(Event{Type: PaymentProcessed, Payload: PaymentProcessedPayload{Result: result}})
	bus.Publish(Event{Type: PaymentRetryExhausted, Payload: RetryExhaustedPayload{RequestID: "pay-8", Attempts: 3}})

	require.Len(t, writer.messages, 2)
	assert.Equal(t, "pay-9", string(writer.messages[0].Key))
	assert.Equal(t, "pay-8", string(writer.messages[1].Key))

	var env struct {
		Type    Type            `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &env))
	assert.Equal(t, PaymentProcessed, env.Type)

	var payload PaymentProcessedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "pay-9", payload.Result.ID)
}

func TestKafkaSink_WriterFailureDoesNotPanic(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	sink := NewKafkaSinkWithWriter(writer)
	bus := NewBus()
	sink.Attach(bus)

	// Publishing stays fire-and-forget even when the broker is gone.
	bus.Publish(Event{Type: FraudDecline, Payload: FraudDeclinePayload{RequestID: "req-1"}})
}
