// Package provider holds the gateway provider registry and the Adapter
// interface each external gateway integration implements.
package provider

import (
	"context"

	"github.com/vantagepay/payment-engine/internal/model"
)

// AdapterResult is the normalized outcome of a gateway charge. All
// gateway-specific field mapping happens inside the adapter; the
// orchestrator only ever sees this shape.
type AdapterResult struct {
	TransactionID  string              `json:"transaction_id"`
	Status         model.PaymentStatus `json:"status"`
	AmountCaptured int64               `json:"amount_captured"`
	NextAction     *model.NextAction   `json:"next_action,omitempty"`
	Fee            int64               `json:"fee"`
}

// Adapter is the boundary to one external payment gateway. Charge errors
// must be *model.ProcessingError values so the orchestrator can classify
// retryability; a timed-out context maps to a retryable GATEWAY_TIMEOUT.
type Adapter interface {
	// Name returns the provider id this adapter serves.
	Name() string
	// Charge executes the payment at the gateway.
	Charge(ctx context.Context, req *model.PaymentRequest, assessment *model.FraudAssessment) (AdapterResult, error)
}
