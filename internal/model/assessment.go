package model

// RiskLevel buckets a risk score for operator display and policy routing.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Decision is the outcome of a fraud assessment.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReview  Decision = "review"
	DecisionDecline Decision = "decline"
)

// Risk score thresholds mapping a summed score to level and decision.
const (
	ThresholdMedium   = 100
	ThresholdHigh     = 300
	ThresholdCritical = 600
	MaxRiskScore      = 1000
)

// LevelForScore maps a clamped risk score to its level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score < ThresholdMedium:
		return RiskLow
	case score < ThresholdHigh:
		return RiskMedium
	case score < ThresholdCritical:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// DecisionForScore maps a clamped risk score to the default decision.
// Rule-level decline actions may still override the result.
func DecisionForScore(score int) Decision {
	switch {
	case score < ThresholdHigh:
		return DecisionApprove
	case score < ThresholdCritical:
		return DecisionReview
	default:
		return DecisionDecline
	}
}

// FraudFactor is a single derived risk signal contributing to the score.
type FraudFactor struct {
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Impact      int     `json:"impact"`
	Description string  `json:"description"`
}

// TriggeredRule records a fraud rule that fired during an assessment.
type TriggeredRule struct {
	RuleID string   `json:"rule_id"`
	Name   string   `json:"name"`
	Score  int      `json:"score"`
	Action Decision `json:"action"`
}

// FraudAssessment is the immutable result of scoring a payment request.
type FraudAssessment struct {
	ID              string          `json:"id"`
	RiskScore       int             `json:"risk_score"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	Decision        Decision        `json:"decision"`
	Factors         []FraudFactor   `json:"factors"`
	Rules           []TriggeredRule `json:"rules"`
	Warnings        []string        `json:"warnings,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}
