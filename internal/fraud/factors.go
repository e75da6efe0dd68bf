package fraud

import (
	"fmt"

	"github.com/vantagepay/payment-engine/internal/model"
)

// Factor impact weights. Each factor contributes its impact to the summed
// risk score independently of any rule that reads the same signal.
const (
	impactChargebackHistory = 100
	impactVelocity          = 30
	impactNewAccount        = 25
	impactLargeFirstOrder   = 50
	impactUnusualAmount     = 40
	impactProxyDetected     = 35
	impactDeviceMissing     = 15
	impactGeoMismatch       = 40
	impactHighRiskCountry   = 45
)

// Signal thresholds, amounts in minor units.
const (
	newAccountMaxAgeDays  = 30
	velocityAttemptsPerHr = 3
	largeFirstOrderAmount = 50_000
	unusualAmountFloor    = 500_000
)

// highRiskCountries is the static billing-country watchlist.
var highRiskCountries = map[string]bool{
	"NG": true,
	"PK": true,
	"RO": true,
	"UA": true,
	"VN": true,
}

// deriveFactors turns the request's signal groups into fraud factors. Absent
// signal groups contribute nothing; they never bias the score.
func deriveFactors(req *model.PaymentRequest) []model.FraudFactor {
	var factors []model.FraudFactor

	// Customer history group.
	if c := req.Fraud.Customer; c != nil {
		if c.ChargebackCount >= 1 {
			factors = append(factors, model.FraudFactor{
				Type:        "chargeback_history",
				Value:       float64(c.ChargebackCount),
				Weight:      1,
				Impact:      impactChargebackHistory,
				Description: fmt.Sprintf("customer has %d prior chargebacks", c.ChargebackCount),
			})
		}
		if c.AttemptsLastHour >= velocityAttemptsPerHr {
			factors = append(factors, model.FraudFactor{
				Type:        "velocity",
				Value:       float64(c.AttemptsLastHour),
				Weight:      1,
				Impact:      impactVelocity,
				Description: fmt.Sprintf("%d payment attempts in the last hour", c.AttemptsLastHour),
			})
		}
		if c.AccountAgeDays < newAccountMaxAgeDays {
			factors = append(factors, model.FraudFactor{
				Type:        "new_account",
				Value:       float64(c.AccountAgeDays),
				Weight:      1,
				Impact:      impactNewAccount,
				Description: fmt.Sprintf("account is %d days old", c.AccountAgeDays),
			})
		}
	}

	// Order characteristics group.
	if o := req.Fraud.Order; o != nil {
		if o.FirstTimeCustomer && req.Amount >= largeFirstOrderAmount {
			factors = append(factors, model.FraudFactor{
				Type:        "large_first_order",
				Value:       float64(req.Amount),
				Weight:      1,
				Impact:      impactLargeFirstOrder,
				Description: "large order from a first-time customer",
			})
		}
	}
	if req.Amount >= unusualAmountFloor {
		factors = append(factors, model.FraudFactor{
			Type:        "unusual_amount",
			Value:       float64(req.Amount),
			Weight:      1,
			Impact:      impactUnusualAmount,
			Description: "order amount is unusually high",
		})
	}

	// Device and session group.
	if req.Fraud.ProxyDetected {
		factors = append(factors, model.FraudFactor{
			Type:        "proxy_detected",
			Value:       1,
			Weight:      1,
			Impact:      impactProxyDetected,
			Description: "connection appears to use a proxy or VPN",
		})
	}
	if (req.Fraud.IPAddress != "" || req.Fraud.SessionID != "") && req.Fraud.DeviceFingerprint == "" {
		factors = append(factors, model.FraudFactor{
			Type:        "device_missing",
			Value:       1,
			Weight:      1,
			Impact:      impactDeviceMissing,
			Description: "session present but no device fingerprint collected",
		})
	}

	// Geography group.
	billing, shipping := req.Fraud.Billing, req.Fraud.Shipping
	if billing != nil && shipping != nil && billing.Country != shipping.Country {
		factors = append(factors, model.FraudFactor{
			Type:        "geo_mismatch",
			Value:       1,
			Weight:      1,
			Impact:      impactGeoMismatch,
			Description: fmt.Sprintf("billing country %s differs from shipping country %s", billing.Country, shipping.Country),
		})
	}
	if billing != nil && highRiskCountries[billing.Country] {
		factors = append(factors, model.FraudFactor{
			Type:        "high_risk_country",
			Value:       1,
			Weight:      1,
			Impact:      impactHighRiskCountry,
			Description: fmt.Sprintf("billing country %s is on the watchlist", billing.Country),
		})
	}

	return factors
}

// warningsFor derives operator-facing warnings from the factor set. The
// output is deterministic for a given factor list and never affects the
// decision.
func warningsFor(factors []model.FraudFactor) []string {
	var warnings []string
	for _, f := range factors {
		switch f.Type {
		case "new_account":
			warnings = append(warnings, "customer account is newer than 30 days")
		case "velocity":
			warnings = append(warnings, "high payment attempt velocity in the past hour")
		case "chargeback_history":
			warnings = append(warnings, "customer has prior chargebacks on file")
		case "proxy_detected":
			warnings = append(warnings, "traffic appears to originate from a proxy or VPN")
		}
	}
	return warnings
}

// recommendationsFor derives operator-facing next steps from the factor set.
func recommendationsFor(factors []model.FraudFactor) []string {
	var recs []string
	for _, f := range factors {
		switch f.Type {
		case "geo_mismatch":
			recs = append(recs, "verify billing address")
		case "device_missing":
			recs = append(recs, "collect a device fingerprint before retrying")
		case "high_risk_country":
			recs = append(recs, "request additional identity verification")
		case "large_first_order":
			recs = append(recs, "consider manual review before capture")
		}
	}
	return recs
}
