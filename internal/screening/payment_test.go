package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/sanctions-screening/internal/domain"
)

type recordingSink struct {
	mu      sync.Mutex
	results []*domain.PaymentScreeningResult
	err     error
}

func (s *recordingSink) RecordPayment(_ context.Context, r *domain.PaymentScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.err
}

func newTestScreener(t *testing.T, audit AuditSink) *PaymentScreener {
	t.Helper()
	return NewPaymentScreener(newTestEngine(t, sampleReference(), nil), NewStatsTracker(), audit, testLogger(t))
}

func TestScreenPayment_RecipientDrivesBlock(t *testing.T) {
	sink := &recordingSink{}
	p := newTestScreener(t, sink)

	res, err := p.ScreenPayment(context.Background(), payment("pay-1", "Emily Watson", "John Smith"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.SenderResult.OverallRiskScore)
	assert.Equal(t, 1.0, res.RecipientResult.OverallRiskScore)
	assert.Equal(t, 1.0, res.OverallRiskScore)
	assert.Equal(t, domain.DecisionBlock, res.Decision)
	assert.Equal(t, domain.FlaggedSideRecipient, res.FlaggedSide)
	assert.Equal(t, "pay-1", res.PaymentID)
	assert.Equal(t, "tx-pay-1", res.TransactionID)
	assert.Equal(t, "EUR", res.Currency)
	assert.Empty(t, res.AuditWarning)

	require.Len(t, sink.results, 1)
	assert.Same(t, res, sink.results[0])
}

func TestScreenPayment_FlaggedSide(t *testing.T) {
	p := newTestScreener(t, nil)

	tests := []struct {
		sender, recipient string
		decision          domain.Decision
		side              domain.FlaggedSide
	}{
		{"Emily Watson", "Lucas Brennan", domain.DecisionClear, domain.FlaggedSideNone},
		{"Kim Jong Un", "Lucas Brennan", domain.DecisionBlock, domain.FlaggedSideSender},
		{"Kim Jong Un", "John Smith", domain.DecisionBlock, domain.FlaggedSideBoth},
		{"Jon Smith", "Emily Watson", domain.DecisionReview, domain.FlaggedSideSender},
	}

	for i, tt := range tests {
		t.Run(tt.sender+"/"+tt.recipient, func(t *testing.T) {
			res, err := p.ScreenPayment(context.Background(), payment(fmt.Sprintf("pay-%d", i), tt.sender, tt.recipient))
			require.NoError(t, err)
			assert.Equal(t, tt.decision, res.Decision)
			assert.Equal(t, tt.side, res.FlaggedSide)
		})
	}
}

func TestScreenPayment_CleanPayment(t *testing.T) {
	p := newTestScreener(t, nil)

	res, err := p.ScreenPayment(context.Background(), payment("pay-clean", "Emily Watson", "Lucas Brennan"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.OverallRiskScore)
	assert.True(t, res.IsApproved())

	stats := p.StatsSnapshot()
	assert.Equal(t, int64(1), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.Approved)
}

func TestScreenPayment_InvalidMessageIsNotCounted(t *testing.T) {
	p := newTestScreener(t, nil)

	_, err := p.ScreenPayment(context.Background(), payment("", "Emily Watson", "John Smith"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = p.ScreenPayment(context.Background(), payment("pay-2", "Emily Watson", "%%%"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, domain.StatsSnapshot{}, p.StatsSnapshot())
}

func TestScreenPayment_CancelledCallIsNotCounted(t *testing.T) {
	p := newTestScreener(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ScreenPayment(ctx, payment("pay-3", "Emily Watson", "John Smith"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.StatsSnapshot().TotalProcessed)
}

func TestScreenPayment_AuditFailureKeepsDecision(t *testing.T) {
	sink := &recordingSink{err: &domain.AuditError{Sink: "kafka", Err: errors.New("broker down")}}
	p := newTestScreener(t, sink)

	res, err := p.ScreenPayment(context.Background(), payment("pay-4", "Emily Watson", "John Smith"))
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionBlock, res.Decision)
	assert.Contains(t, res.AuditWarning, "broker down")
	assert.Equal(t, int64(1), p.StatsSnapshot().Blocked)
}

func TestScreenPayment_ConcurrentCallsCountOnce(t *testing.T) {
	p := newTestScreener(t, nil)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			recipient := "Lucas Brennan"
			if i%2 == 0 {
				recipient = "John Smith"
			}
			_, err := p.ScreenPayment(context.Background(), payment(fmt.Sprintf("pay-%03d", i), "Emily Watson", recipient))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stats := p.StatsSnapshot()
	assert.Equal(t, int64(n), stats.TotalProcessed)
	assert.Equal(t, int64(n/2), stats.Blocked)
	assert.Equal(t, int64(n/2), stats.Approved)
	assert.Equal(t, stats.TotalProcessed, stats.Approved+stats.Reviewed+stats.Blocked+stats.Errors)
}

func TestScreenPayment_RedeliveryIsIdempotent(t *testing.T) {
	p := newTestScreener(t, nil)
	msg := payment("pay-5", "Jon Smith", "Robert Johnson")

	first, err := p.ScreenPayment(context.Background(), msg)
	require.NoError(t, err)
	second, err := p.ScreenPayment(context.Background(), msg)
	require.NoError(t, err)

	for _, r := range []*domain.PaymentScreeningResult{first, second} {
		r.ProcessingTimeMs = 0
		r.SenderResult.ProcessingTimeMs = 0
		r.RecipientResult.ProcessingTimeMs = 0
	}
	assert.Equal(t, first, second)
}

func TestStatsTracker(t *testing.T) {
	s := NewStatsTracker()

	s.Record(domain.DecisionClear, 10*time.Millisecond)
	s.Record(domain.DecisionReview, 20*time.Millisecond)
	s.Record(domain.DecisionBlock, 30*time.Millisecond)
	s.RecordError(40 * time.Millisecond)

	assert.Equal(t, domain.StatsSnapshot{
		TotalProcessed:      4,
		Approved:            1,
		Reviewed:            1,
		Blocked:             1,
		Errors:              1,
		AvgProcessingTimeMs: 25,
	}, s.Snapshot())
}
