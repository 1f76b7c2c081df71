package screening

import (
	"math"
	"sort"
	"strings"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

// Aggregator merges the candidates of all matchers into one ranked list with
// at most one candidate per sanctions entry.
type Aggregator struct {
	log *logger.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{log: log.Named("aggregator")}
}

// Aggregate keeps the best candidate per entry, attaches listing details and
// auxiliary field matches, and orders the result by score, then entry ID.
// Match type strength only decides between candidates for the same entry.
// Candidates without a positive score carry no signal and are dropped.
func (a *Aggregator) Aggregate(
	entity domain.Entity,
	snap *sanctions.Snapshot,
	groups ...[]domain.MatchCandidate,
) []domain.MatchCandidate {
	best := make(map[string]domain.MatchCandidate)

	for _, group := range groups {
		for _, c := range group {
			switch {
			case math.IsNaN(c.MatchScore) || c.MatchScore < 0:
				a.log.CandidateAnomaly(c.SanctionsEntryID, string(c.MatchType), c.MatchScore, "dropped")
				continue
			case c.MatchScore == 0:
				continue
			case c.MatchScore > 1:
				a.log.CandidateAnomaly(c.SanctionsEntryID, string(c.MatchType), c.MatchScore, "clamped")
				c.MatchScore = 1
			}

			if cur, ok := best[c.SanctionsEntryID]; !ok || outranks(c, cur) {
				best[c.SanctionsEntryID] = c
			}
		}
	}

	out := make([]domain.MatchCandidate, 0, len(best))
	for id, c := range best {
		entry, ok := snap.Entry(id)
		if !ok {
			continue
		}
		c.ListedName = entry.Name
		c.ListName = entry.ListName
		c.Source = entry.Source
		c.MatchedFields = auxiliaryMatches(entity, entry)
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].SanctionsEntryID < out[j].SanctionsEntryID
	})

	return out
}

// outranks reports whether a should replace b for the same entry
func outranks(a, b domain.MatchCandidate) bool {
	if a.MatchScore != b.MatchScore {
		return a.MatchScore > b.MatchScore
	}
	return a.MatchType.Rank() > b.MatchType.Rank()
}

// auxiliaryMatches returns the sorted auxiliary fields present on both sides and equal
func auxiliaryMatches(entity domain.Entity, entry *domain.SanctionsEntry) []string {
	fields := []string{}

	if entity.DateOfBirth != "" && strings.TrimSpace(entity.DateOfBirth) == strings.TrimSpace(entry.DateOfBirth) {
		fields = append(fields, domain.FieldDateOfBirth)
	}
	if n := strings.TrimSpace(entity.Nationality); n != "" && strings.EqualFold(n, strings.TrimSpace(entry.Nationality)) {
		fields = append(fields, domain.FieldNationality)
	}
	if p := passportKey(entity.PassportNumber); p != "" && p == passportKey(entry.PassportNumber) {
		fields = append(fields, domain.FieldPassportNumber)
	}

	sort.Strings(fields)
	return fields
}

func passportKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
