package model

import "time"

// RefundRequest asks for a full or partial refund of a succeeded payment.
type RefundRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"` // minor units; 0 means full refund
	Reason    string `json:"reason,omitempty"`
}

// RefundResult is the outcome of a refund operation.
type RefundResult struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
