package model

import (
	"fmt"
	"time"
)

// CaptureMode controls whether a charge is captured immediately or held
// for a later explicit capture call.
type CaptureMode string

const (
	CaptureAutomatic CaptureMode = "automatic"
	CaptureManual    CaptureMode = "manual"
)

// InstrumentKind identifies the payment instrument variant.
type InstrumentKind string

const (
	InstrumentCard        InstrumentKind = "card"
	InstrumentBankAccount InstrumentKind = "bank_account"
	InstrumentWallet      InstrumentKind = "wallet"
	InstrumentBNPL        InstrumentKind = "bnpl"
)

// CardDetails describes a card instrument. PAN data never enters the engine;
// only the truncated descriptor the caller already holds.
type CardDetails struct {
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Network  string `json:"network,omitempty"`
}

// BankAccountDetails describes a bank debit instrument.
type BankAccountDetails struct {
	RoutingNumber string `json:"routing_number"`
	AccountLast4  string `json:"account_last4"`
}

// WalletDetails describes a hosted wallet instrument.
type WalletDetails struct {
	Provider string `json:"provider"`
}

// BNPLDetails describes a buy-now-pay-later instrument.
type BNPLDetails struct {
	Provider     string `json:"provider"`
	Installments int    `json:"installments"`
}

// Instrument is a closed tagged union over the supported instrument kinds.
// Exactly one of the detail pointers must be set, matching Kind.
type Instrument struct {
	Kind        InstrumentKind      `json:"kind"`
	Card        *CardDetails        `json:"card,omitempty"`
	BankAccount *BankAccountDetails `json:"bank_account,omitempty"`
	Wallet      *WalletDetails      `json:"wallet,omitempty"`
	BNPL        *BNPLDetails        `json:"bnpl,omitempty"`
}

// Validate performs structural checks for the instrument variant.
// now anchors the card expiry check so callers can pin time in tests.
func (i Instrument) Validate(now time.Time) *ValidationError {
	switch i.Kind {
	case InstrumentCard:
		if i.Card == nil {
			return &ValidationError{Field: "instrument.card", Code: "missing_details"}
		}
		if i.Card.ExpMonth < 1 || i.Card.ExpMonth > 12 {
			return &ValidationError{Field: "instrument.card.exp_month", Code: "out_of_range"}
		}
		// A card is valid through the last day of its expiry month.
		expiry := time.Date(i.Card.ExpYear, time.Month(i.Card.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
		if !expiry.After(now) {
			return &ValidationError{Field: "instrument.card.exp_year", Code: "expired"}
		}
	case InstrumentBankAccount:
		if i.BankAccount == nil {
			return &ValidationError{Field: "instrument.bank_account", Code: "missing_details"}
		}
		if len(i.BankAccount.RoutingNumber) != 9 {
			return &ValidationError{Field: "instrument.bank_account.routing_number", Code: "invalid_length"}
		}
	case InstrumentWallet:
		if i.Wallet == nil || i.Wallet.Provider == "" {
			return &ValidationError{Field: "instrument.wallet.provider", Code: "required"}
		}
	case InstrumentBNPL:
		if i.BNPL == nil || i.BNPL.Provider == "" {
			return &ValidationError{Field: "instrument.bnpl.provider", Code: "required"}
		}
		if i.BNPL.Installments < 1 {
			return &ValidationError{Field: "instrument.bnpl.installments", Code: "out_of_range"}
		}
	default:
		return &ValidationError{Field: "instrument.kind", Code: "unknown_kind"}
	}
	return nil
}

// Address is a billing or shipping address used by fraud signals.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code,omitempty"`
}

// CustomerProfile carries the caller-supplied customer history signals.
type CustomerProfile struct {
	AccountAgeDays   int `json:"account_age_days"`
	TotalOrders      int `json:"total_orders"`
	ChargebackCount  int `json:"chargeback_count"`
	AttemptsLastHour int `json:"attempts_last_hour"`
}

// OrderProfile carries the caller-supplied order risk signals.
type OrderProfile struct {
	FirstTimeCustomer bool `json:"first_time_customer"`
	ItemCount         int  `json:"item_count"`
	HighRiskCategory  bool `json:"high_risk_category"`
}

// FraudContext bundles the device, session, geography, and history signals
// attached to a payment request. Every field is optional; absent signal
// groups simply contribute no fraud factors.
type FraudContext struct {
	IPAddress         string           `json:"ip_address,omitempty"`
	UserAgent         string           `json:"user_agent,omitempty"`
	SessionID         string           `json:"session_id,omitempty"`
	DeviceFingerprint string           `json:"device_fingerprint,omitempty"`
	ProxyDetected     bool             `json:"proxy_detected,omitempty"`
	Billing           *Address         `json:"billing,omitempty"`
	Shipping          *Address         `json:"shipping,omitempty"`
	Customer          *CustomerProfile `json:"customer,omitempty"`
	Order             *OrderProfile    `json:"order,omitempty"`
}

// PaymentRequest is the immutable inbound value describing one logical
// payment. ID doubles as the idempotency key: resubmission after a timeout
// reuses the same ID and must never create a second charge.
type PaymentRequest struct {
	ID          string       `json:"id"`
	Amount      int64        `json:"amount"` // minor units
	Currency    string       `json:"currency"`
	CustomerID  string       `json:"customer_id"`
	OrderID     string       `json:"order_id,omitempty"`
	Instrument  Instrument   `json:"instrument"`
	CaptureMode CaptureMode  `json:"capture_mode"`
	Fraud       FraudContext `json:"fraud_context"`
}

// Validate checks the request's structure. It returns the first
// violation found as a ValidationError naming the offending field.
func (r *PaymentRequest) Validate(now time.Time) error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Code: "required"}
	}
	if r.Amount <= 0 {
		return &ValidationError{Field: "amount", Code: "not_positive"}
	}
	if len(r.Currency) != 3 {
		return &ValidationError{Field: "currency", Code: "invalid_iso4217"}
	}
	if r.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Code: "required"}
	}
	if r.CaptureMode != CaptureAutomatic && r.CaptureMode != CaptureManual {
		return &ValidationError{Field: "capture_mode", Code: "unknown_mode"}
	}
	if err := r.Instrument.Validate(now); err != nil {
		return err
	}
	return nil
}

func (r *PaymentRequest) String() string {
	return fmt.Sprintf("PaymentRequest(%s %d %s customer=%s)", r.ID, r.Amount, r.Currency, r.CustomerID)
}
