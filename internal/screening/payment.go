package screening

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// AuditSink persists or publishes payment screening results
type AuditSink interface {
	RecordPayment(ctx context.Context, result *domain.PaymentScreeningResult) error
}

// PaymentScreener screens both parties of a payment and combines the outcome
type PaymentScreener struct {
	engine *Engine
	stats  *StatsTracker
	audit  AuditSink
	log    *logger.Logger
}

// NewPaymentScreener creates a payment screener. audit may be nil.
func NewPaymentScreener(engine *Engine, stats *StatsTracker, audit AuditSink, log *logger.Logger) *PaymentScreener {
	if stats == nil {
		stats = NewStatsTracker()
	}
	return &PaymentScreener{
		engine: engine,
		stats:  stats,
		audit:  audit,
		log:    log.Named("payment_screener"),
	}
}

// ScreenPayment screens sender and recipient independently and decides on the
// higher of the two risk scores. Stats are updated exactly once per completed
// call; invalid input and calls aborted by ctx are not counted. Audit failures
// are reported on the result and never change the decision.
func (p *PaymentScreener) ScreenPayment(ctx context.Context, msg domain.PaymentMessage) (*domain.PaymentScreeningResult, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "screening.ScreenPayment",
		trace.WithAttributes(attribute.String("payment.id", msg.PaymentID)))
	defer span.End()

	log := p.log.WithContext(ctx).WithPayment(msg.PaymentID, msg.TransactionID)

	if err := msg.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log.ScreeningStarted(msg.PaymentID)

	var sender, recipient *domain.ScreeningResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sender, err = p.engine.ScreenEntity(gctx, msg.Sender())
		if err != nil {
			return fmt.Errorf("screen sender: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recipient, err = p.engine.ScreenEntity(gctx, msg.Recipient())
		if err != nil {
			return fmt.Errorf("screen recipient: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		p.stats.RecordError(time.Since(start))
		return nil, err
	}

	result := p.combine(msg, sender, recipient)
	elapsed := time.Since(start)
	result.ProcessingTimeMs = elapsed.Milliseconds()
	p.stats.Record(result.Decision, elapsed)

	span.SetAttributes(
		attribute.String("screening.decision", string(result.Decision)),
		attribute.String("screening.flagged_side", string(result.FlaggedSide)),
		attribute.Float64("screening.risk_score", result.OverallRiskScore),
	)

	if p.audit != nil {
		if err := p.audit.RecordPayment(ctx, result); err != nil {
			log.AuditFailed(msg.PaymentID, err)
			result.AuditWarning = err.Error()
		}
	}

	log.ScreeningCompleted(msg.PaymentID, string(result.Decision), string(result.FlaggedSide),
		result.OverallRiskScore, elapsed.Milliseconds())

	return result, nil
}

// StatsSnapshot returns the running totals
func (p *PaymentScreener) StatsSnapshot() domain.StatsSnapshot {
	return p.stats.Snapshot()
}

func (p *PaymentScreener) combine(msg domain.PaymentMessage, sender, recipient *domain.ScreeningResult) *domain.PaymentScreeningResult {
	decisions := p.engine.Decisions()
	score := math.Max(sender.OverallRiskScore, recipient.OverallRiskScore)
	decision, priority := decisions.Decide(score)

	return &domain.PaymentScreeningResult{
		PaymentID:        msg.PaymentID,
		TransactionID:    msg.TransactionID,
		SenderResult:     sender,
		RecipientResult:  recipient,
		OverallRiskScore: score,
		Decision:         decision,
		ReviewPriority:   priority,
		FlaggedSide:      flaggedSide(decision, sender.OverallRiskScore, recipient.OverallRiskScore),
		Degraded:         sender.Degraded || recipient.Degraded,
		Amount:           msg.Amount,
		Currency:         msg.Currency,
		PaymentType:      msg.PaymentType,
	}
}

// flaggedSide names the side that drove a non-clear decision. Equal scores flag
// both sides; a non-clear decision implies both are at or above the low threshold.
func flaggedSide(decision domain.Decision, sender, recipient float64) domain.FlaggedSide {
	switch {
	case decision == domain.DecisionClear:
		return domain.FlaggedSideNone
	case sender > recipient:
		return domain.FlaggedSideSender
	case recipient > sender:
		return domain.FlaggedSideRecipient
	default:
		return domain.FlaggedSideBoth
	}
}
