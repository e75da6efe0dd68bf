package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	StatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	StatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	StatusRequiresAction        PaymentStatus = "requires_action"
	StatusProcessing            PaymentStatus = "processing"
	StatusRequiresCapture       PaymentStatus = "requires_capture"
	StatusSucceeded             PaymentStatus = "succeeded"
	StatusCanceled              PaymentStatus = "canceled"
	StatusFailed                PaymentStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusCanceled, StatusFailed:
		return true
	default:
		return false
	}
}

// statusRank orders the forward progression of non-terminal states.
var statusRank = map[PaymentStatus]int{
	StatusRequiresPaymentMethod: 0,
	StatusRequiresConfirmation:  1,
	StatusRequiresAction:        2,
	StatusProcessing:            3,
	StatusRequiresCapture:       4,
	StatusSucceeded:             5,
}

// CanTransition reports whether a payment may move from one status to
// another. Progress is strictly forward; canceled and failed are reachable
// from any non-terminal state.
func CanTransition(from, to PaymentStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCanceled || to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ErrInvalidTransition reports a rejected state machine transition.
type ErrInvalidTransition struct {
	From PaymentStatus
	To   PaymentStatus
}

func (e *ErrInvalidTransition) Error() string {
	return "invalid payment transition: " + string(e.From) + " -> " + string(e.To)
}

// TimelineEvent is one audit entry in a payment's history.
type TimelineEvent struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// NextAction describes a step the caller must perform before the payment can
// advance, e.g. a 3DS redirect reported by the gateway.
type NextAction struct {
	Type        string `json:"type"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// PaymentResult is the durable record of one logical payment. Its ID equals
// the request ID and stays stable across every retry, making it the
// idempotency anchor for external status queries.
type PaymentResult struct {
	ID                    string           `json:"id"`
	Status                PaymentStatus    `json:"status"`
	Amount                int64            `json:"amount"`
	AmountCaptured        int64            `json:"amount_captured"`
	Currency              string           `json:"currency"`
	CustomerID            string           `json:"customer_id"`
	ProviderID            string           `json:"provider_id,omitempty"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty"`
	Assessment            *FraudAssessment `json:"fraud_assessment,omitempty"`
	ProcessingFee         int64            `json:"processing_fee,omitempty"`
	NextAction            *NextAction      `json:"next_action,omitempty"`
	FailureCode           string           `json:"failure_code,omitempty"`
	FailureMessage        string           `json:"failure_message,omitempty"`
	Timeline              []TimelineEvent  `json:"timeline"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// NewPaymentResult opens the durable record for a request.
func NewPaymentResult(req *PaymentRequest) *PaymentResult {
	now := time.Now().UTC()
	r := &PaymentResult{
		ID:         req.ID,
		Status:     StatusRequiresPaymentMethod,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CustomerID: req.CustomerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.AppendEvent("payment_created", "")
	return r
}

// AppendEvent records an audit entry without changing status.
func (r *PaymentResult) AppendEvent(eventType, message string) {
	now := time.Now().UTC()
	r.Timeline = append(r.Timeline, TimelineEvent{
		ID:      uuid.NewString(),
		Type:    eventType,
		Message: message,
		At:      now,
	})
	r.UpdatedAt = now
}

// Advance moves the payment to a new status, enforcing the transition table
// and appending a timeline entry.
func (r *PaymentResult) Advance(to PaymentStatus, eventType, message string) error {
	if !CanTransition(r.Status, to) {
		return &ErrInvalidTransition{From: r.Status, To: to}
	}
	r.Status = to
	r.AppendEvent(eventType, message)
	return nil
}

// Fail transitions the payment to failed with the given failure detail.
func (r *PaymentResult) Fail(code, message string) error {
	if err := r.Advance(StatusFailed, "payment_failed", message); err != nil {
		return err
	}
	r.FailureCode = code
	r.FailureMessage = message
	return nil
}
