package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/banking/sanctions-screening/internal/domain"
)

// Schema creates the audit table written by PostgresSink
const Schema = `
CREATE TABLE IF NOT EXISTS screening_results (
    event_id        UUID PRIMARY KEY,
    payment_id      TEXT NOT NULL UNIQUE,
    transaction_id  TEXT NOT NULL,
    decision        TEXT NOT NULL,
    review_priority TEXT NOT NULL DEFAULT '',
    flagged_side    TEXT NOT NULL,
    risk_score      DOUBLE PRECISION NOT NULL,
    degraded        BOOLEAN NOT NULL,
    result          JSONB NOT NULL,
    screened_at     TIMESTAMPTZ NOT NULL
)`

const insertResult = `
INSERT INTO screening_results (
    event_id, payment_id, transaction_id, decision, review_priority,
    flagged_side, risk_score, degraded, result, screened_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (payment_id) DO NOTHING`

// Execer is the subset of *pgxpool.Pool used by PostgresSink
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores one row per payment. Redelivered payments produce
// identical results, so the first row written wins.
type PostgresSink struct {
	db      Execer
	service string
}

// NewPostgresSink creates a PostgreSQL sink
func NewPostgresSink(db Execer, service string) *PostgresSink {
	return &PostgresSink{db: db, service: service}
}

// Name implements Sink
func (s *PostgresSink) Name() string {
	return "postgres"
}

// EnsureSchema creates the audit table if it does not exist
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create screening_results: %w", err)
	}
	return nil
}

// RecordPayment implements Sink
func (s *PostgresSink) RecordPayment(ctx context.Context, r *domain.PaymentScreeningResult) error {
	event := NewEvent(s.service, r)
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(ctx, insertResult,
		event.EventID,
		r.PaymentID,
		r.TransactionID,
		string(r.Decision),
		string(r.ReviewPriority),
		string(r.FlaggedSide),
		r.OverallRiskScore,
		r.Degraded,
		payload,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert screening result: %w", err)
	}
	return nil
}
