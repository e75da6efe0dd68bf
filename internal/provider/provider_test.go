package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagepay/payment-engine/internal/model"
)

func cardRequest(currency string) *model.PaymentRequest {
	return &model.PaymentRequest{
		ID:         "req-1",
		Amount:     10_000,
		Currency:   currency,
		CustomerID: "cust-1",
		Instrument: model.Instrument{
			Kind: model.InstrumentCard,
			Card: &model.CardDetails{Last4: "4242", ExpMonth: 12, ExpYear: 2030},
		},
		CaptureMode: model.CaptureAutomatic,
	}
}

func TestSelect_LowestPriorityWins(t *testing.T) {
	registry := NewRegistry([]Provider{
		{ID: "slowline", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 5, Enabled: true},
		{ID: "fastlane", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 1, Enabled: true},
	})

	got, err := registry.Select(cardRequest("USD"))

	require.NoError(t, err)
	assert.Equal(t, "fastlane", got.ID)
}

func TestSelect_FiltersDisabledAndUnsupported(t *testing.T) {
	registry := NewRegistry([]Provider{
		{ID: "disabled", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 1, Enabled: false},
		{ID: "eur-only", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"EUR"}, Priority: 2, Enabled: true},
		{ID: "bank-only", Instruments: []model.InstrumentKind{model.InstrumentBankAccount}, Currencies: []string{"USD"}, Priority: 3, Enabled: true},
		{ID: "match", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 4, Enabled: true},
	})

	got, err := registry.Select(cardRequest("USD"))

	require.NoError(t, err)
	assert.Equal(t, "match", got.ID)
}

func TestSelect_NoEligibleProviders(t *testing.T) {
	registry := NewRegistry([]Provider{
		{ID: "usd-only", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 1, Enabled: true},
	})

	_, err := registry.Select(cardRequest("EUR"))

	pe, ok := model.AsProcessingError(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeNoProviders, pe.Code)
	assert.False(t, pe.Retryable)
}

func TestRegistry_SetProvidersSwapsWholesale(t *testing.T) {
	registry := NewRegistry(DefaultProviders())
	require.Len(t, registry.Providers(), 4)

	registry.SetProviders([]Provider{
		{ID: "solo", Instruments: []model.InstrumentKind{model.InstrumentCard}, Currencies: []string{"USD"}, Priority: 1, Enabled: true},
	})

	got, err := registry.Select(cardRequest("USD"))
	require.NoError(t, err)
	assert.Equal(t, "solo", got.ID)
	assert.Len(t, registry.Providers(), 1)
}

func TestProviderFee(t *testing.T) {
	p := Provider{FeeBPS: 290, FeeFixed: 30}
	// 2.9% of 10000 + 30 = 320 minor units.
	assert.Equal(t, int64(320), p.Fee(10_000))
}

func TestMockAdapter_CanceledContextIsRetryableTimeout(t *testing.T) {
	adapter := NewMockAdapter(MockConfig{
		Provider:   Provider{ID: "axispay", FeeBPS: 290, FeeFixed: 30},
		Outcomes:   OutcomeDistribution{SuccessRate: 1},
		MinLatency: 50 * time.Millisecond,
		MaxLatency: 100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Charge(ctx, cardRequest("USD"), &model.FraudAssessment{})

	pe, ok := model.AsProcessingError(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeGatewayTimeout, pe.Code)
	assert.True(t, pe.Retryable)
}

func TestMockAdapter_SuccessPopulatesResult(t *testing.T) {
	adapter := NewMockAdapter(MockConfig{
		Provider: Provider{ID: "axispay", FeeBPS: 290, FeeFixed: 30},
		Outcomes: OutcomeDistribution{SuccessRate: 1},
	})

	res, err := adapter.Charge(context.Background(), cardRequest("USD"), &model.FraudAssessment{})

	require.NoError(t, err)
	assert.Equal(t, model.StatusSucceeded, res.Status)
	assert.Equal(t, int64(10_000), res.AmountCaptured)
	assert.Equal(t, int64(320), res.Fee)
	assert.NotEmpty(t, res.TransactionID)
}

func TestMockAdapter_LiveWithoutAPIKeyRefusesCharges(t *testing.T) {
	adapter := NewMockAdapter(MockConfig{
		Provider:    Provider{ID: "axispay"},
		Credentials: Credentials{Environment: "live"},
		Outcomes:    OutcomeDistribution{SuccessRate: 1},
	})

	_, err := adapter.Charge(context.Background(), cardRequest("USD"), &model.FraudAssessment{})

	pe, ok := model.AsProcessingError(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeGatewayUnavailable, pe.Code)
	assert.False(t, pe.Retryable, "misconfiguration does not heal by retrying")

	// The same fleet runs unauthenticated in sandbox.
	sandbox := NewMockAdapter(MockConfig{
		Provider: Provider{ID: "axispay"},
		Outcomes: OutcomeDistribution{SuccessRate: 1},
	})
	_, err = sandbox.Charge(context.Background(), cardRequest("USD"), &model.FraudAssessment{})
	require.NoError(t, err)
}

func TestMockAdapter_ManualCaptureHoldsFunds(t *testing.T) {
	adapter := NewMockAdapter(MockConfig{
		Provider: Provider{ID: "axispay"},
		Outcomes: OutcomeDistribution{SuccessRate: 1},
	})
	req := cardRequest("USD")
	req.CaptureMode = model.CaptureManual

	res, err := adapter.Charge(context.Background(), req, &model.FraudAssessment{})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRequiresCapture, res.Status)
	assert.Zero(t, res.AmountCaptured)
}
