package screening

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

// FuzzyMatcher scores approximate name similarity as a weighted average of
// edit-distance ratio, token-set ratio and partial ratio.
type FuzzyMatcher struct {
	ratio    float64
	tokenSet float64
	partial  float64
}

// NewFuzzyMatcher creates a fuzzy matcher. Weights are normalized by their sum.
func NewFuzzyMatcher(w FuzzyWeights) *FuzzyMatcher {
	sum := w.Ratio + w.TokenSet + w.Partial
	if sum <= 0 {
		w, sum = FuzzyWeights{Ratio: 1, TokenSet: 1, Partial: 1}, 3
	}
	return &FuzzyMatcher{
		ratio:    w.Ratio / sum,
		tokenSet: w.TokenSet / sum,
		partial:  w.Partial / sum,
	}
}

// Score returns the similarity of two normalized names in [0,1]
func (m *FuzzyMatcher) Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	score := m.ratio*ratio(a, b) + m.tokenSet*tokenSetRatio(a, b) + m.partial*partialRatio(a, b)
	return clamp01(score)
}

// BestScore returns the highest pairwise score across two sets of normalized names
func (m *FuzzyMatcher) BestScore(entityNames, entryNames []string) float64 {
	best := 0.0
	for _, a := range entityNames {
		for _, b := range entryNames {
			if s := m.Score(a, b); s > best {
				best = s
				if best == 1.0 {
					return best
				}
			}
		}
	}
	return best
}

// Match returns a fuzzy candidate for every entry whose best score reaches threshold
func (m *FuzzyMatcher) Match(entityNames []string, snap *sanctions.Snapshot, threshold float64) []domain.MatchCandidate {
	var out []domain.MatchCandidate
	for i := 0; i < snap.Len(); i++ {
		score := m.BestScore(entityNames, snap.NormalizedNames(i))
		if score < threshold || score == 0 {
			continue
		}
		out = append(out, domain.MatchCandidate{
			SanctionsEntryID: snap.At(i).ID,
			MatchScore:       score,
			MatchType:        domain.MatchTypeFuzzy,
		})
	}
	return out
}

// ratio is 1 - distance/maxLen over runes
func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 || la == 0 || lb == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// tokenSetRatio compares the shared tokens against each side's remainder,
// which makes it insensitive to token order and duplicated tokens.
func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)

	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(withA, withB)
	if base != "" {
		if r := ratio(base, withA); r > best {
			best = r
		}
		if r := ratio(base, withB); r > best {
			best = r
		}
	}
	return best
}

// partialRatio is the best ratio of the shorter string against every
// equally long window of the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	if len(short) == len(long) {
		return ratio(a, b)
	}

	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
