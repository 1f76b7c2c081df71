package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

type stubSink struct {
	name  string
	err   error
	calls int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) RecordPayment(context.Context, *domain.PaymentScreeningResult) error {
	s.calls++
	return s.err
}

func blockedResult() *domain.PaymentScreeningResult {
	return &domain.PaymentScreeningResult{
		PaymentID:        "pay-1",
		TransactionID:    "tx-1",
		OverallRiskScore: 1.0,
		Decision:         domain.DecisionBlock,
		FlaggedSide:      domain.FlaggedSideRecipient,
		Currency:         "EUR",
		Amount:           2500,
	}
}

func TestMultiSink_JoinsFailures(t *testing.T) {
	ok := &stubSink{name: "ok"}
	kafka := &stubSink{name: "kafka", err: errors.New("broker down")}
	pg := &stubSink{name: "postgres", err: errors.New("connection refused")}

	err := NewMultiSink(kafka, ok, pg).RecordPayment(context.Background(), blockedResult())
	require.Error(t, err)

	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, kafka.calls)
	assert.Equal(t, 1, pg.calls)

	var auditErr *domain.AuditError
	require.True(t, errors.As(err, &auditErr))
	assert.Equal(t, "kafka", auditErr.Sink)
	assert.Contains(t, err.Error(), "audit sink postgres: connection refused")
}

func TestMultiSink_AllSucceed(t *testing.T) {
	assert.NoError(t, NewMultiSink(&stubSink{name: "a"}, &stubSink{name: "b"}).RecordPayment(context.Background(), blockedResult()))
	assert.NoError(t, NewMultiSink().RecordPayment(context.Background(), blockedResult()))
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(logger.FromZap(zap.New(core), "test"))

	require.NoError(t, sink.RecordPayment(context.Background(), blockedResult()))

	entries := logs.FilterMessage("payment screening result").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pay-1", fields["payment_id"])
	assert.Equal(t, "block", fields["decision"])
	assert.Equal(t, "recipient", fields["flagged_side"])
}
