package screening

import (
	"math"

	"github.com/banking/sanctions-screening/internal/domain"
)

// DecisionEngine maps a risk score to a decision using ordered thresholds.
// Every score maps to exactly one decision; NaN is treated as maximal risk.
type DecisionEngine struct {
	low    float64
	medium float64
	high   float64
}

// NewDecisionEngine creates a decision engine from validated thresholds
func NewDecisionEngine(cfg Config) *DecisionEngine {
	return &DecisionEngine{
		low:    cfg.LowRiskThreshold,
		medium: cfg.MediumRiskThreshold,
		high:   cfg.HighRiskThreshold,
	}
}

// Decide returns the decision for score. Review decisions carry a priority:
// high at or above the medium threshold, low below it.
func (d *DecisionEngine) Decide(score float64) (domain.Decision, domain.ReviewPriority) {
	switch {
	case math.IsNaN(score) || score >= d.high:
		return domain.DecisionBlock, domain.ReviewPriorityNone
	case score >= d.medium:
		return domain.DecisionReview, domain.ReviewPriorityHigh
	case score >= d.low:
		return domain.DecisionReview, domain.ReviewPriorityLow
	default:
		return domain.DecisionClear, domain.ReviewPriorityNone
	}
}

// LowThreshold returns the score from which a side counts as flagged
func (d *DecisionEngine) LowThreshold() float64 {
	return d.low
}
