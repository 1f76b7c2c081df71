package screening

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

// EmbeddingSource returns the embedding vector for a normalized name.
// It is satisfied by *embedding.Cache.
type EmbeddingSource interface {
	Embedding(ctx context.Context, key string) ([]float64, error)
}

// SemanticMatcher scores names by cosine similarity of their embeddings.
// A nil source disables semantic matching entirely.
type SemanticMatcher struct {
	source  EmbeddingSource
	timeout time.Duration
	log     *logger.Logger
}

// NewSemanticMatcher creates a semantic matcher bounded by timeout per screening
func NewSemanticMatcher(source EmbeddingSource, timeout time.Duration, log *logger.Logger) *SemanticMatcher {
	return &SemanticMatcher{
		source:  source,
		timeout: timeout,
		log:     log.Named("semantic_matcher"),
	}
}

// Enabled reports whether a provider is configured
func (m *SemanticMatcher) Enabled() bool {
	return m != nil && m.source != nil
}

// Match returns semantic candidates reaching threshold. When the provider fails
// or exceeds its time bound, Match reports degraded and returns no candidates.
// An error is only returned when ctx itself is done.
func (m *SemanticMatcher) Match(
	ctx context.Context,
	entityNames []string,
	snap *sanctions.Snapshot,
	threshold float64,
) ([]domain.MatchCandidate, bool, error) {
	if !m.Enabled() || snap.Len() == 0 || len(entityNames) == 0 {
		return nil, false, nil
	}

	sctx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	out, err := m.match(sctx, entityNames, snap, threshold)
	if err == nil {
		return out, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}

	m.log.SemanticDegraded(err)
	return nil, true, nil
}

func (m *SemanticMatcher) match(
	ctx context.Context,
	entityNames []string,
	snap *sanctions.Snapshot,
	threshold float64,
) ([]domain.MatchCandidate, error) {
	query := make([][]float64, 0, len(entityNames))
	for _, name := range entityNames {
		vec, err := m.source.Embedding(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", name, err)
		}
		query = append(query, vec)
	}

	var out []domain.MatchCandidate
	for i := 0; i < snap.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := 0.0
		for _, name := range snap.NormalizedNames(i) {
			vec, err := m.source.Embedding(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("embed %q: %w", name, err)
			}
			for _, q := range query {
				if s := CosineSimilarity(q, vec); s > best {
					best = s
				}
			}
		}

		if best >= threshold && best > 0 {
			out = append(out, domain.MatchCandidate{
				SanctionsEntryID: snap.At(i).ID,
				MatchScore:       best,
				MatchType:        domain.MatchTypeSemantic,
			})
		}
	}
	return out, nil
}

// CosineSimilarity returns the cosine of two vectors clamped to [0,1].
// Zero vectors and mismatched dimensions score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
