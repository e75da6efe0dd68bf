package model

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks contract operations that are declared but not yet
// backed by an implementation (refunds, disputes).
var ErrNotImplemented = errors.New("operation not implemented")

// ValidationError reports a malformed caller input. It is returned before
// any fraud scoring or provider contact and is never retried.
type ValidationError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q (%s)", e.Field, e.Code)
}

// FraudDeclineError reports a payment declined by fraud assessment. It is a
// business decision, not a system fault, and is surfaced synchronously.
type FraudDeclineError struct {
	RequestID string    `json:"request_id"`
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
}

func (e *FraudDeclineError) Error() string {
	return fmt.Sprintf("payment %s declined by fraud assessment: score=%d level=%s", e.RequestID, e.RiskScore, e.RiskLevel)
}

// ProcessingError codes.
const (
	CodeNoProviders        = "NO_PROVIDERS"
	CodeGatewayTimeout     = "GATEWAY_TIMEOUT"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeDeclined           = "DECLINED"
	CodeCanceled           = "CANCELED"
	CodeOutcomeUnknown     = "OUTCOME_UNKNOWN"
	CodeRetryExhausted     = "RETRY_EXHAUSTED"
	CodeFraudDecline       = "FRAUD_DECLINE"
)

// ProcessingError reports a gateway or system fault during charge execution.
// Retryable errors are queued for bounded re-submission; the rest surface as
// permanent failures.
type ProcessingError struct {
	Provider  string `json:"provider,omitempty"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
	Message   string `json:"message,omitempty"`
}

func (e *ProcessingError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("processing error [%s] from %s: %s", e.Code, e.Provider, e.Message)
	}
	return fmt.Sprintf("processing error [%s]: %s", e.Code, e.Message)
}

// AsProcessingError unwraps err into a ProcessingError if possible.
func AsProcessingError(err error) (*ProcessingError, bool) {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
