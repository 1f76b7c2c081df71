package screening

import (
	"sync"
	"time"

	"github.com/banking/sanctions-screening/internal/domain"
)

// StatsTracker keeps running payment screening totals.
// Every update and snapshot happens under one lock so readers never see a
// total that disagrees with its breakdown.
type StatsTracker struct {
	mu        sync.Mutex
	stats     domain.StatsSnapshot
	totalTime time.Duration
}

// NewStatsTracker creates an empty tracker
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// Record counts one completed screening with its decision
func (t *StatsTracker) Record(decision domain.Decision, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch decision {
	case domain.DecisionClear:
		t.stats.Approved++
	case domain.DecisionReview:
		t.stats.Reviewed++
	case domain.DecisionBlock:
		t.stats.Blocked++
	}
	t.add(elapsed)
}

// RecordError counts one screening that completed with an error
func (t *StatsTracker) RecordError(elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Errors++
	t.add(elapsed)
}

func (t *StatsTracker) add(elapsed time.Duration) {
	t.stats.TotalProcessed++
	t.totalTime += elapsed
	t.stats.AvgProcessingTimeMs = float64(t.totalTime) / float64(time.Millisecond) / float64(t.stats.TotalProcessed)
}

// Snapshot returns a consistent copy of the counters
func (t *StatsTracker) Snapshot() domain.StatsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
