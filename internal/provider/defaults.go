package provider

import (
	"time"

	"github.com/vantagepay/payment-engine/internal/model"
)

// DefaultProviders returns the standard provider fleet configuration.
func DefaultProviders() []Provider {
	return []Provider{
		{
			ID:          "axispay",
			DisplayName: "AxisPay",
			Instruments: []model.InstrumentKind{model.InstrumentCard, model.InstrumentWallet, model.InstrumentBNPL},
			Currencies:  []string{"USD", "EUR", "GBP", "BRL"},
			FeeBPS:      290,
			FeeFixed:    30,
			Priority:    1,
			Enabled:     true,
		},
		{
			ID:          "cardharbor",
			DisplayName: "CardHarbor",
			Instruments: []model.InstrumentKind{model.InstrumentCard},
			Currencies:  []string{"USD", "EUR"},
			FeeBPS:      250,
			FeeFixed:    25,
			Priority:    2,
			Enabled:     true,
		},
		{
			ID:          "debitline",
			DisplayName: "DebitLine",
			Instruments: []model.InstrumentKind{model.InstrumentBankAccount},
			Currencies:  []string{"USD"},
			FeeBPS:      80,
			FeeFixed:    0,
			Priority:    3,
			Enabled:     true,
		},
		{
			ID:          "globalroute",
			DisplayName: "GlobalRoute",
			Instruments: []model.InstrumentKind{model.InstrumentCard, model.InstrumentBankAccount, model.InstrumentWallet, model.InstrumentBNPL},
			Currencies:  []string{"USD", "EUR", "GBP", "BRL", "MXN", "JPY"},
			FeeBPS:      340,
			FeeFixed:    50,
			Priority:    9,
			Enabled:     true,
		},
	}
}

// DefaultAdapters returns mock adapters for the default fleet, keyed by
// provider id. Each adapter receives its own credentials; missing ids fall
// back to the unauthenticated sandbox zero value.
func DefaultAdapters(creds map[string]Credentials) map[string]Adapter {
	adapters := make(map[string]Adapter)
	for _, p := range DefaultProviders() {
		dist := OutcomeDistribution{SuccessRate: 0.85, ActionRate: 0.05, TransientRate: 0.07, HardDeclineRate: 0.03}
		if p.ID == "globalroute" {
			// Universal fallback trades approval rate for coverage.
			dist = OutcomeDistribution{SuccessRate: 0.75, ActionRate: 0.05, TransientRate: 0.15, HardDeclineRate: 0.05}
		}
		adapters[p.ID] = NewMockAdapter(MockConfig{
			Provider:    p,
			Credentials: creds[p.ID],
			Outcomes:    dist,
			MinLatency:  30 * time.Millisecond,
			MaxLatency:  250 * time.Millisecond,
		})
	}
	return adapters
}
