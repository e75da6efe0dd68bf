// Package store persists PaymentResult records. The result id equals the
// request id, so saves are idempotent upserts and reads back the record a
// retry or status query needs to resume from.
package store

import (
	"errors"

	"github.com/vantagepay/payment-engine/internal/model"
)

// ErrNotFound is returned when a requested payment record does not exist.
var ErrNotFound = errors.New("payment not found")

// Store is the persistence boundary for payment results.
type Store interface {
	// Save upserts the record keyed by result id.
	Save(result *model.PaymentResult) error
	// Get retrieves a record by id; the bool reports existence.
	Get(id string) (*model.PaymentResult, bool, error)
}
