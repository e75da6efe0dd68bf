// Package events carries the engine's lifecycle events to external
// collaborators: an in-process pub/sub bus plus an optional Kafka bridge.
package events

import (
	"log/slog"
	"sync"

	"github.com/vantagepay/payment-engine/internal/model"
)

// Type identifies a lifecycle event.
type Type string

const (
	PaymentProcessed      Type = "paymentProcessed"
	PaymentFailed         Type = "paymentFailed"
	FraudDecline          Type = "fraudDecline"
	PaymentRetryExhausted Type = "paymentRetryExhausted"
)

// Event is one published lifecycle notification.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

// PaymentProcessedPayload accompanies PaymentProcessed.
type PaymentProcessedPayload struct {
	Result *model.PaymentResult `json:"result"`
}

// PaymentFailedPayload accompanies PaymentFailed.
type PaymentFailedPayload struct {
	RequestID  string `json:"request_id"`
	CustomerID string `json:"customer_id"`
	Error      string `json:"error"`
	Retryable  bool   `json:"retryable"`
}

// FraudDeclinePayload accompanies FraudDecline.
type FraudDeclinePayload struct {
	RequestID  string          `json:"request_id"`
	CustomerID string          `json:"customer_id"`
	RiskScore  int             `json:"risk_score"`
	RiskLevel  model.RiskLevel `json:"risk_level"`
}

// RetryExhaustedPayload accompanies PaymentRetryExhausted.
type RetryExhaustedPayload struct {
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`
}

// HandlerFunc consumes one event. Handler errors are logged, not propagated:
// publishing is fire-and-forget from the engine's perspective.
type HandlerFunc func(Event) error

// Bus is an in-process pub/sub channel decoupling the orchestrator from
// notification, analytics, and UI collaborators.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]HandlerFunc
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]HandlerFunc),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType Type, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every lifecycle event type.
func (b *Bus) SubscribeAll(handler HandlerFunc) {
	for _, t := range []Type{PaymentProcessed, PaymentFailed, FraudDecline, PaymentRetryExhausted} {
		b.Subscribe(t, handler)
	}
}

// Publish delivers the event to all subscribed handlers synchronously.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := b.handlers[evt.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(evt); err != nil {
			slog.Error("event_handler_failed", "type", string(evt.Type), "error", err)
		}
	}
}
