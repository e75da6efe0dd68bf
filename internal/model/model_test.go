package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCardRequest() *PaymentRequest {
	return &PaymentRequest{
		ID:         "req-001",
		Amount:     12_500,
		Currency:   "USD",
		CustomerID: "cust-1",
		Instrument: Instrument{
			Kind: InstrumentCard,
			Card: &CardDetails{Last4: "4242", ExpMonth: 12, ExpYear: 2030, Network: "visa"},
		},
		CaptureMode: CaptureAutomatic,
	}
}

func TestValidate_ZeroAmount(t *testing.T) {
	req := validCardRequest()
	req.Amount = 0

	err := req.Validate(time.Now())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestValidate_FieldChecks(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*PaymentRequest)
		field  string
	}{
		{"negative amount", func(r *PaymentRequest) { r.Amount = -5 }, "amount"},
		{"bad currency", func(r *PaymentRequest) { r.Currency = "EURO" }, "currency"},
		{"missing customer", func(r *PaymentRequest) { r.CustomerID = "" }, "customer_id"},
		{"missing id", func(r *PaymentRequest) { r.ID = "" }, "id"},
		{"bad capture mode", func(r *PaymentRequest) { r.CaptureMode = "deferred" }, "capture_mode"},
		{"expired card", func(r *PaymentRequest) { r.Instrument.Card.ExpYear = 2024 }, "instrument.card.exp_year"},
		{"card month out of range", func(r *PaymentRequest) { r.Instrument.Card.ExpMonth = 13 }, "instrument.card.exp_month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCardRequest()
			tt.mutate(req)

			err := req.Validate(now)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_CardExpiresEndOfMonth(t *testing.T) {
	req := validCardRequest()
	req.Instrument.Card.ExpMonth = 8
	req.Instrument.Card.ExpYear = 2026

	// Still valid on the last day of the expiry month.
	assert.NoError(t, req.Validate(time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)))
	// Gone the first day of the next month.
	assert.Error(t, req.Validate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidate_BankAccountRoutingNumber(t *testing.T) {
	req := validCardRequest()
	req.Instrument = Instrument{
		Kind:        InstrumentBankAccount,
		BankAccount: &BankAccountDetails{RoutingNumber: "12345", AccountLast4: "6789"},
	}

	err := req.Validate(time.Now())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "instrument.bank_account.routing_number", verr.Field)

	req.Instrument.BankAccount.RoutingNumber = "021000021"
	assert.NoError(t, req.Validate(time.Now()))
}

func TestCanTransition_ForwardOnly(t *testing.T) {
	assert.True(t, CanTransition(StatusRequiresPaymentMethod, StatusRequiresConfirmation))
	assert.True(t, CanTransition(StatusRequiresConfirmation, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusSucceeded))
	assert.True(t, CanTransition(StatusProcessing, StatusRequiresCapture))

	// No backwards movement.
	assert.False(t, CanTransition(StatusProcessing, StatusRequiresConfirmation))
	assert.False(t, CanTransition(StatusSucceeded, StatusProcessing))

	// Terminals admit nothing.
	assert.False(t, CanTransition(StatusSucceeded, StatusCanceled))
	assert.False(t, CanTransition(StatusFailed, StatusProcessing))
	assert.False(t, CanTransition(StatusCanceled, StatusFailed))
}

func TestCanTransition_CancelAndFailFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []PaymentStatus{
		StatusRequiresPaymentMethod,
		StatusRequiresConfirmation,
		StatusRequiresAction,
		StatusProcessing,
		StatusRequiresCapture,
	}
	for _, from := range nonTerminal {
		assert.True(t, CanTransition(from, StatusCanceled), "cancel from %s", from)
		assert.True(t, CanTransition(from, StatusFailed), "fail from %s", from)
	}
}

func TestPaymentResult_AdvanceAppendsTimeline(t *testing.T) {
	req := validCardRequest()
	result := NewPaymentResult(req)

	require.Equal(t, StatusRequiresPaymentMethod, result.Status)
	require.Len(t, result.Timeline, 1)

	require.NoError(t, result.Advance(StatusRequiresConfirmation, "request_validated", ""))
	require.NoError(t, result.Advance(StatusProcessing, "charge_started", ""))
	require.NoError(t, result.Fail("DECLINED", "card declined by issuer"))

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "DECLINED", result.FailureCode)
	assert.Len(t, result.Timeline, 4)

	var terr *ErrInvalidTransition
	err := result.Advance(StatusSucceeded, "late", "")
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusFailed, terr.From)
}

func TestPaymentResult_JSONRoundTrip(t *testing.T) {
	req := validCardRequest()
	result := NewPaymentResult(req)
	result.Advance(StatusRequiresConfirmation, "request_validated", "")
	result.Assessment = &FraudAssessment{
		ID:        "as-1",
		RiskScore: 150,
		RiskLevel: RiskMedium,
		Decision:  DecisionApprove,
		Factors: []FraudFactor{
			{Type: "chargeback_history", Value: 2, Weight: 1, Impact: 100, Description: "customer has 2 prior chargebacks"},
		},
		Rules: []TriggeredRule{
			{RuleID: "large_first_order", Name: "Large first order", Score: 30, Action: DecisionReview},
		},
		Warnings:        []string{"customer has prior chargebacks on file"},
		Recommendations: []string{"consider manual review before capture"},
	}
	result.Advance(StatusProcessing, "charge_started", "")
	result.ProviderID = "axispay"
	result.ExternalTransactionID = "axispay_abc"
	result.ProcessingFee = 392
	result.NextAction = &NextAction{Type: "redirect_to_url", RedirectURL: "https://gateway.example/verify/abc"}
	result.Advance(StatusSucceeded, "charge_completed", "")

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded PaymentResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, result.ID, decoded.ID)
	assert.Equal(t, result.Status, decoded.Status)
	assert.Equal(t, result.ProcessingFee, decoded.ProcessingFee)
	require.NotNil(t, decoded.Assessment)
	assert.Equal(t, result.Assessment.Factors, decoded.Assessment.Factors)
	assert.Equal(t, result.Assessment.Rules, decoded.Assessment.Rules)
	require.Len(t, decoded.Timeline, len(result.Timeline))
	for i := range result.Timeline {
		assert.Equal(t, result.Timeline[i].ID, decoded.Timeline[i].ID)
		assert.Equal(t, result.Timeline[i].Type, decoded.Timeline[i].Type)
		assert.True(t, result.Timeline[i].At.Equal(decoded.Timeline[i].At))
	}
}

func TestLevelAndDecisionThresholds(t *testing.T) {
	assert.Equal(t, RiskLow, LevelForScore(0))
	assert.Equal(t, RiskLow, LevelForScore(99))
	assert.Equal(t, RiskMedium, LevelForScore(100))
	assert.Equal(t, RiskHigh, LevelForScore(300))
	assert.Equal(t, RiskCritical, LevelForScore(600))

	assert.Equal(t, DecisionApprove, DecisionForScore(299))
	assert.Equal(t, DecisionReview, DecisionForScore(599))
	assert.Equal(t, DecisionDecline, DecisionForScore(600))
}
