package sanctions

import (
	"sort"
	"strings"
	"time"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/names"
)

// Snapshot is an immutable, pre-indexed version of the reference list.
// Screenings hold on to one snapshot for their whole duration, so a refresh
// never changes the list underneath an in-flight screening.
type Snapshot struct {
	version  uint64
	loadedAt time.Time

	entries    []domain.SanctionsEntry // sorted by ID
	normalized [][]string              // normalized names per entry, same order
	byID       map[string]int
	exact      map[string][]int // normalized name -> entry positions
}

// ListSummary describes one list contained in a snapshot
type ListSummary struct {
	ListName string `json:"list_name"`
	Source   string `json:"source"`
	Entries  int    `json:"entries"`
}

// NewSnapshot builds an indexed snapshot from raw entries. Entries without an ID
// or without any usable name are skipped; for duplicate IDs the first one wins.
func NewSnapshot(version uint64, entries []domain.SanctionsEntry) *Snapshot {
	s := &Snapshot{
		version:  version,
		loadedAt: time.Now(),
		byID:     make(map[string]int, len(entries)),
		exact:    make(map[string][]int, len(entries)),
	}

	kept := make([]domain.SanctionsEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" || names.Normalize(e.Name) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		e.ID = id
		e.Aliases = append([]string(nil), e.Aliases...)
		kept = append(kept, e)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })

	s.entries = kept
	s.normalized = make([][]string, len(kept))
	for i, e := range kept {
		s.byID[e.ID] = i
		s.normalized[i] = names.NormalizeAll(e.AllNames())
		for _, n := range s.normalized[i] {
			s.exact[n] = append(s.exact[n], i)
		}
	}

	return s
}

// Version returns the monotonically increasing snapshot version
func (s *Snapshot) Version() uint64 {
	return s.version
}

// LoadedAt returns when the snapshot was built
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Len returns the number of entries
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// At returns the entry at position i. Callers must not modify it.
func (s *Snapshot) At(i int) *domain.SanctionsEntry {
	return &s.entries[i]
}

// NormalizedNames returns the normalized name and aliases of the entry at position i
func (s *Snapshot) NormalizedNames(i int) []string {
	return s.normalized[i]
}

// Entry looks up an entry by ID
func (s *Snapshot) Entry(id string) (*domain.SanctionsEntry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// ExactLookup returns positions of entries with a name or alias equal to the
// normalized name, in ascending ID order
func (s *Snapshot) ExactLookup(normalized string) []int {
	return s.exact[normalized]
}

// AllNormalizedNames returns every distinct normalized name in the snapshot
func (s *Snapshot) AllNormalizedNames() []string {
	out := make([]string, 0, len(s.exact))
	for n := range s.exact {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lists summarizes the distinct lists in the snapshot
func (s *Snapshot) Lists() []ListSummary {
	type key struct{ list, source string }
	counts := make(map[key]int)
	for _, e := range s.entries {
		counts[key{e.ListName, e.Source}]++
	}

	out := make([]ListSummary, 0, len(counts))
	for k, n := range counts {
		out = append(out, ListSummary{ListName: k.list, Source: k.source, Entries: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ListName != out[j].ListName {
			return out[i].ListName < out[j].ListName
		}
		return out[i].Source < out[j].Source
	})
	return out
}
