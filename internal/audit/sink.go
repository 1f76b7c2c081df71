package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// EventPaymentScreened is the event type of published screening results
const EventPaymentScreened = "payment.screened"

// Sink durably records payment screening results
type Sink interface {
	Name() string
	RecordPayment(ctx context.Context, result *domain.PaymentScreeningResult) error
}

// Event is the envelope written by every sink
type Event struct {
	EventID    string                         `json:"event_id"`
	EventType  string                         `json:"event_type"`
	Service    string                         `json:"service"`
	OccurredAt time.Time                      `json:"occurred_at"`
	Result     *domain.PaymentScreeningResult `json:"result"`
}

// NewEvent wraps a result in a new envelope
func NewEvent(service string, result *domain.PaymentScreeningResult) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventType:  EventPaymentScreened,
		Service:    service,
		OccurredAt: time.Now().UTC(),
		Result:     result,
	}
}

// MultiSink records to every sink and joins their failures.
// A failing sink does not stop the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out sink
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Name implements Sink
func (m *MultiSink) Name() string {
	return "multi"
}

// RecordPayment implements Sink. Each failure is wrapped in a domain.AuditError.
func (m *MultiSink) RecordPayment(ctx context.Context, result *domain.PaymentScreeningResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordPayment(ctx, result); err != nil {
			errs = append(errs, &domain.AuditError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// LogSink writes results to the structured log
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a log sink
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.Named("audit")}
}

// Name implements Sink
func (s *LogSink) Name() string {
	return "log"
}

// RecordPayment implements Sink
func (s *LogSink) RecordPayment(_ context.Context, r *domain.PaymentScreeningResult) error {
	s.log.Info("payment screening result",
		logger.StringField("payment_id", r.PaymentID),
		logger.StringField("transaction_id", r.TransactionID),
		logger.StringField("decision", string(r.Decision)),
		logger.StringField("review_priority", string(r.ReviewPriority)),
		logger.StringField("flagged_side", string(r.FlaggedSide)),
		logger.Float64Field("risk_score", r.OverallRiskScore),
		logger.BoolField("degraded", r.Degraded),
	)
	return nil
}
