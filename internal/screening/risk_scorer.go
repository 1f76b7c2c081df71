package screening

import (
	"math"

	"github.com/banking/sanctions-screening/internal/domain"
)

// RiskScorer computes the overall risk and confidence of a ranked candidate list
type RiskScorer struct {
	fieldBonus float64
}

// NewRiskScorer creates a risk scorer adding fieldBonus per matching auxiliary field
func NewRiskScorer(fieldBonus float64) *RiskScorer {
	return &RiskScorer{fieldBonus: fieldBonus}
}

// Score returns the overall risk score and confidence for candidates ordered by
// descending score. Risk is the top score raised by the field bonus and capped at 1.
// Confidence is the margin between the two best scores, or 1 with fewer than two.
func (s *RiskScorer) Score(candidates []domain.MatchCandidate) (risk, confidence float64) {
	if len(candidates) == 0 {
		return 0, 1.0
	}

	top := candidates[0]
	risk = math.Min(1.0, top.MatchScore+s.fieldBonus*float64(len(top.MatchedFields)))

	if len(candidates) == 1 {
		return risk, 1.0
	}
	confidence = clamp01(top.MatchScore - candidates[1].MatchScore)
	return risk, confidence
}
