package screening

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

type fixedReference struct {
	snap *sanctions.Snapshot
}

func (r fixedReference) Snapshot() *sanctions.Snapshot {
	return r.snap
}

func sampleReference() fixedReference {
	return fixedReference{snap: sanctions.NewSnapshot(1, sanctions.SampleEntries())}
}

func testLogger(t *testing.T) *logger.Logger {
	return logger.FromZap(zaptest.NewLogger(t), "test")
}

func newTestEngine(t *testing.T, ref ReferenceList, semantic *SemanticMatcher) *Engine {
	t.Helper()
	e, err := NewEngine(ref, semantic, DefaultConfig(), testLogger(t))
	require.NoError(t, err)
	return e
}

// identityEmbeddings gives every distinct string its own axis, so only equal
// strings are similar. Explicit vectors override the default.
type identityEmbeddings struct {
	mu       sync.Mutex
	axes     map[string]int
	explicit map[string][]float64
}

const identityDims = 4096

func newIdentityEmbeddings(explicit map[string][]float64) *identityEmbeddings {
	return &identityEmbeddings{axes: make(map[string]int), explicit: explicit}
}

func (s *identityEmbeddings) Embedding(_ context.Context, key string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vec := make([]float64, identityDims)
	if v, ok := s.explicit[key]; ok {
		copy(vec, v)
		return vec, nil
	}
	axis, ok := s.axes[key]
	if !ok {
		// the first axes are reserved for explicit vectors
		axis = 16 + len(s.axes)
		s.axes[key] = axis
	}
	vec[axis] = 1
	return vec, nil
}

// stalledEmbeddings never answers before the context ends
type stalledEmbeddings struct{}

func (stalledEmbeddings) Embedding(ctx context.Context, _ string) ([]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingEmbeddings struct {
	err error
}

func (s failingEmbeddings) Embedding(context.Context, string) ([]float64, error) {
	return nil, s.err
}

func payment(id, sender, recipient string) domain.PaymentMessage {
	return domain.PaymentMessage{
		PaymentID:        id,
		TransactionID:    "tx-" + id,
		SenderName:       sender,
		SenderAccount:    "DE89370400440532013000",
		SenderCountry:    "DE",
		RecipientName:    recipient,
		RecipientAccount: "GB29NWBK60161331926819",
		RecipientCountry: "GB",
		Amount:           2500,
		Currency:         "EUR",
		PaymentType:      "swift",
	}
}
