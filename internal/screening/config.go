package screening

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// FuzzyWeights weights the three fuzzy sub-algorithms. Weights are relative and
// are normalized by their sum.
type FuzzyWeights struct {
	Ratio    float64
	TokenSet float64
	Partial  float64
}

// Config is the immutable matching and decision configuration of an Engine
type Config struct {
	SimilarityThreshold float64 // semantic candidate threshold
	FuzzyThreshold      float64 // fuzzy candidate threshold

	LowRiskThreshold    float64 // clear below, review from here
	MediumRiskThreshold float64 // splits review into low/high priority
	HighRiskThreshold   float64 // block from here

	FuzzyWeights FuzzyWeights

	// FieldBonus is added to the top match score per matching auxiliary field
	FieldBonus float64

	// SemanticTimeout bounds the embedding provider per entity screening
	SemanticTimeout time.Duration

	// MaxScreeningLatency only triggers latency warnings
	MaxScreeningLatency time.Duration
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		FuzzyThreshold:      0.8,
		LowRiskThreshold:    0.3,
		MediumRiskThreshold: 0.7,
		HighRiskThreshold:   0.9,
		FuzzyWeights:        FuzzyWeights{Ratio: 1, TokenSet: 1, Partial: 1},
		FieldBonus:          0.05,
		SemanticTimeout:     150 * time.Millisecond,
		MaxScreeningLatency: 200 * time.Millisecond,
	}
}

// Validate checks threshold ordering and ranges
func (c Config) Validate() error {
	var errs []error

	unit := map[string]float64{
		"similarity_threshold":  c.SimilarityThreshold,
		"fuzzy_threshold":       c.FuzzyThreshold,
		"low_risk_threshold":    c.LowRiskThreshold,
		"medium_risk_threshold": c.MediumRiskThreshold,
		"high_risk_threshold":   c.HighRiskThreshold,
		"field_bonus":           c.FieldBonus,
	}
	for _, name := range []string{
		"similarity_threshold", "fuzzy_threshold", "low_risk_threshold",
		"medium_risk_threshold", "high_risk_threshold", "field_bonus",
	} {
		if v := unit[name]; math.IsNaN(v) || v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}

	if !(c.LowRiskThreshold < c.MediumRiskThreshold && c.MediumRiskThreshold < c.HighRiskThreshold) {
		errs = append(errs, fmt.Errorf("risk thresholds must satisfy low < medium < high, got %v / %v / %v",
			c.LowRiskThreshold, c.MediumRiskThreshold, c.HighRiskThreshold))
	}

	w := c.FuzzyWeights
	if w.Ratio < 0 || w.TokenSet < 0 || w.Partial < 0 {
		errs = append(errs, errors.New("fuzzy weights must not be negative"))
	} else if w.Ratio+w.TokenSet+w.Partial == 0 {
		errs = append(errs, errors.New("at least one fuzzy weight must be positive"))
	}

	if c.SemanticTimeout < 0 {
		errs = append(errs, errors.New("semantic_timeout must not be negative"))
	}

	return errors.Join(errs...)
}
