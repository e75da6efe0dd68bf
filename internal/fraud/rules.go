package fraud

import (
	"sort"

	"github.com/vantagepay/payment-engine/internal/model"
)

// Predicate is a rule trigger evaluated against the request and its derived
// factors. Predicates must be pure: same inputs, same answer.
type Predicate func(req *model.PaymentRequest, factors []model.FraudFactor) bool

// Rule is a named heuristic that adds a fixed score when triggered and may
// force the final decision via its action.
type Rule struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Score   int            `json:"score"`
	Action  model.Decision `json:"action"`
	Enabled bool           `json:"enabled"`
}

// RuleTable is an immutable snapshot of the rule set plus its predicates.
// Tables are replaced wholesale by the refresher; in-flight assessments keep
// reading the snapshot they started with.
type RuleTable struct {
	rules      []Rule
	predicates map[string]Predicate
}

// NewRuleTable builds a table, ordering rules by id so evaluation order is
// deterministic.
func NewRuleTable(rules []Rule, predicates map[string]Predicate) *RuleTable {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &RuleTable{rules: sorted, predicates: predicates}
}

// Rules returns a copy of the rule set.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// WithRules derives a new table with adjusted rules and the same predicates.
func (t *RuleTable) WithRules(rules []Rule) *RuleTable {
	return NewRuleTable(rules, t.predicates)
}

func hasFactor(factors []model.FraudFactor, factorType string) bool {
	for _, f := range factors {
		if f.Type == factorType {
			return true
		}
	}
	return false
}

// DefaultRuleTable returns the starter rule set.
func DefaultRuleTable() *RuleTable {
	rules := []Rule{
		{ID: "chargeback_repeat", Name: "Repeat chargeback customer", Score: 80, Action: model.DecisionDecline, Enabled: true},
		{ID: "high_risk_country", Name: "High-risk billing country", Score: 60, Action: model.DecisionReview, Enabled: true},
		{ID: "large_first_order", Name: "Large first order", Score: 30, Action: model.DecisionReview, Enabled: true},
		{ID: "mismatched_billing", Name: "Billing/shipping mismatch", Score: 40, Action: model.DecisionReview, Enabled: true},
		{ID: "proxy_detected", Name: "Proxy or VPN detected", Score: 35, Action: model.DecisionReview, Enabled: true},
		{ID: "unusual_amount", Name: "Unusual order amount", Score: 40, Action: model.DecisionReview, Enabled: true},
		{ID: "velocity_limit", Name: "Attempt velocity limit", Score: 50, Action: model.DecisionReview, Enabled: true},
	}
	predicates := map[string]Predicate{
		"chargeback_repeat": func(req *model.PaymentRequest, _ []model.FraudFactor) bool {
			return req.Fraud.Customer != nil && req.Fraud.Customer.ChargebackCount >= 3
		},
		"high_risk_country": func(_ *model.PaymentRequest, factors []model.FraudFactor) bool {
			return hasFactor(factors, "high_risk_country")
		},
		"large_first_order": func(_ *model.PaymentRequest, factors []model.FraudFactor) bool {
			return hasFactor(factors, "large_first_order")
		},
		"mismatched_billing": func(_ *model.PaymentRequest, factors []model.FraudFactor) bool {
			return hasFactor(factors, "geo_mismatch")
		},
		"proxy_detected": func(req *model.PaymentRequest, _ []model.FraudFactor) bool {
			return req.Fraud.ProxyDetected
		},
		"unusual_amount": func(req *model.PaymentRequest, _ []model.FraudFactor) bool {
			return req.Amount >= unusualAmountFloor
		},
		"velocity_limit": func(req *model.PaymentRequest, _ []model.FraudFactor) bool {
			return req.Fraud.Customer != nil && req.Fraud.Customer.AttemptsLastHour >= 5
		},
	}
	return NewRuleTable(rules, predicates)
}
