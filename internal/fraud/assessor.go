// Package fraud implements the risk scoring engine: factor derivation from
// the request's signal groups, rule evaluation against an atomically swapped
// rule table, and the periodic weight refresher.
package fraud

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vantagepay/payment-engine/internal/model"
)

// Assessor scores payment requests. Assess is pure apart from reading the
// current rule table snapshot, so concurrent assessments need no locking.
type Assessor struct {
	table atomic.Pointer[RuleTable]
}

// NewAssessor creates an assessor over the given rule table.
func NewAssessor(table *RuleTable) *Assessor {
	a := &Assessor{}
	a.table.Store(table)
	return a
}

// Table returns the current rule table snapshot.
func (a *Assessor) Table() *RuleTable {
	return a.table.Load()
}

// SwapTable atomically replaces the rule table wholesale. Readers either see
// the old table or the new one, never a mix.
func (a *Assessor) SwapTable(table *RuleTable) {
	a.table.Store(table)
}

// Assess scores a request and returns the resulting assessment.
//
// Score = sum of factor impacts + sum of triggered rule scores, clamped to
// [0, MaxRiskScore]. A factor and a rule reading the same signal both count;
// that mirrors the calibrated behavior of the scoring model and must not be
// collapsed without re-calibrating the thresholds.
func (a *Assessor) Assess(req *model.PaymentRequest) model.FraudAssessment {
	table := a.table.Load()
	factors := deriveFactors(req)

	score := 0
	for _, f := range factors {
		score += f.Impact
	}

	var triggered []model.TriggeredRule
	forceDecline := false
	for _, rule := range table.rules {
		if !rule.Enabled {
			continue
		}
		pred, ok := table.predicates[rule.ID]
		if !ok || !pred(req, factors) {
			continue
		}
		triggered = append(triggered, model.TriggeredRule{
			RuleID: rule.ID,
			Name:   rule.Name,
			Score:  rule.Score,
			Action: rule.Action,
		})
		score += rule.Score
		if rule.Action == model.DecisionDecline {
			forceDecline = true
		}
	}

	if score < 0 {
		score = 0
	}
	if score > model.MaxRiskScore {
		score = model.MaxRiskScore
	}

	decision := model.DecisionForScore(score)
	if forceDecline {
		decision = model.DecisionDecline
	}

	return model.FraudAssessment{
		ID:              uuid.NewString(),
		RiskScore:       score,
		RiskLevel:       model.LevelForScore(score),
		Decision:        decision,
		Factors:         factors,
		Rules:           triggered,
		Warnings:        warningsFor(factors),
		Recommendations: recommendationsFor(factors),
	}
}
