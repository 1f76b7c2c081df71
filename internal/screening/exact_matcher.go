package screening

import (
	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

// ExactMatcher finds sanctions entries sharing a normalized name or alias with the entity.
// Lookups go through the snapshot's prebuilt index, so cost does not grow with list size.
type ExactMatcher struct{}

// NewExactMatcher creates an exact matcher
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{}
}

// Match returns one exact candidate (score 1.0) per matching entry
func (m *ExactMatcher) Match(entityNames []string, snap *sanctions.Snapshot) []domain.MatchCandidate {
	var (
		out  []domain.MatchCandidate
		seen map[int]struct{}
	)
	for _, name := range entityNames {
		for _, i := range snap.ExactLookup(name) {
			if seen == nil {
				seen = make(map[int]struct{})
			}
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			out = append(out, domain.MatchCandidate{
				SanctionsEntryID: snap.At(i).ID,
				MatchScore:       1.0,
				MatchType:        domain.MatchTypeExact,
			})
		}
	}
	return out
}
