package screening

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/pkg/names"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

var tracer = otel.Tracer("github.com/banking/sanctions-screening/internal/screening")

// ReferenceList hands out the current reference list snapshot
type ReferenceList interface {
	Snapshot() *sanctions.Snapshot
}

// Engine screens a single entity against the reference list.
// An Engine is safe for concurrent use; it holds no per-call state.
type Engine struct {
	reference ReferenceList
	exact     *ExactMatcher
	fuzzy     *FuzzyMatcher
	semantic  *SemanticMatcher
	aggregate *Aggregator
	scorer    *RiskScorer
	decisions *DecisionEngine

	cfg Config
	log *logger.Logger
}

// NewEngine creates a screening engine. semantic may be nil to disable semantic matching.
func NewEngine(reference ReferenceList, semantic *SemanticMatcher, cfg Config, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid screening config: %w", err)
	}

	return &Engine{
		reference: reference,
		exact:     NewExactMatcher(),
		fuzzy:     NewFuzzyMatcher(cfg.FuzzyWeights),
		semantic:  semantic,
		aggregate: NewAggregator(log),
		scorer:    NewRiskScorer(cfg.FieldBonus),
		decisions: NewDecisionEngine(cfg),
		cfg:       cfg,
		log:       log.Named("screening_engine"),
	}, nil
}

type screenOptions struct {
	threshold    float64
	hasThreshold bool
}

// ScreenOption customizes a single ScreenEntity call
type ScreenOption func(*screenOptions)

// WithThresholdOverride replaces both the fuzzy and the semantic candidate
// thresholds for one call. Risk thresholds are unaffected.
func WithThresholdOverride(threshold float64) ScreenOption {
	return func(o *screenOptions) {
		o.threshold = threshold
		o.hasThreshold = true
	}
}

// Decisions returns the decision engine shared by entity and payment screening
func (e *Engine) Decisions() *DecisionEngine {
	return e.decisions
}

// ScreenEntity runs exact, fuzzy and semantic matching against one reference
// snapshot and returns the scored, decided result. Semantic failures degrade the
// result instead of failing it.
func (e *Engine) ScreenEntity(ctx context.Context, entity domain.Entity, opts ...ScreenOption) (*domain.ScreeningResult, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "screening.ScreenEntity")
	defer span.End()

	var o screenOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := entity.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	fuzzyThreshold, semanticThreshold := e.cfg.FuzzyThreshold, e.cfg.SimilarityThreshold
	if o.hasThreshold {
		if math.IsNaN(o.threshold) || o.threshold < 0 || o.threshold > 1 {
			err := fmt.Errorf("%w: threshold override must be within [0,1]", domain.ErrInvalidInput)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		fuzzyThreshold, semanticThreshold = o.threshold, o.threshold
	}

	queryNames := names.NormalizeAll(entity.AllNames())
	if len(queryNames) == 0 {
		err := fmt.Errorf("%w: entity name has no matchable characters", domain.ErrInvalidInput)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snap := e.reference.Snapshot()
	span.SetAttributes(
		attribute.Int64("reference.version", int64(snap.Version())),
		attribute.Int("reference.entries", snap.Len()),
	)

	var (
		semantic []domain.MatchCandidate
		degraded bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, degraded, err = e.semantic.Match(gctx, queryNames, snap, semanticThreshold)
		return err
	})

	exact := e.exact.Match(queryNames, snap)
	fuzzy := e.fuzzy.Match(queryNames, snap, fuzzyThreshold)

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches := e.aggregate.Aggregate(entity, snap, exact, fuzzy, semantic)
	risk, confidence := e.scorer.Score(matches)
	decision, priority := e.decisions.Decide(risk)

	result := &domain.ScreeningResult{
		EntityName:       entity.Name,
		Matches:          matches,
		OverallRiskScore: risk,
		Decision:         decision,
		ReviewPriority:   priority,
		ConfidenceScore:  confidence,
		Degraded:         degraded,
	}

	elapsed := time.Since(start)
	result.ProcessingTimeMs = elapsed.Milliseconds()

	span.SetAttributes(
		attribute.String("screening.decision", string(decision)),
		attribute.Float64("screening.risk_score", risk),
		attribute.Int("screening.matches", len(matches)),
		attribute.Bool("screening.degraded", degraded),
	)

	if limit := e.cfg.MaxScreeningLatency; limit > 0 && elapsed > limit {
		e.log.LatencyWarning("entity_screening", elapsed.Milliseconds(), limit.Milliseconds())
	}
	e.log.EntityScreened(string(decision), risk, len(matches), degraded, elapsed.Milliseconds())

	return result, nil
}
