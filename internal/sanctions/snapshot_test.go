package sanctions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/sanctions-screening/internal/domain"
)

func TestNewSnapshot_IndexesNamesAndAliases(t *testing.T) {
	snap := NewSnapshot(1, SampleEntries())

	require.Equal(t, 10, snap.Len())
	assert.Equal(t, uint64(1), snap.Version())

	hits := snap.ExactLookup("kim jong un")
	require.Len(t, hits, 1)
	assert.Equal(t, "UN-001", snap.At(hits[0]).ID)

	hits = snap.ExactLookup("ayman al zawahiri")
	require.Len(t, hits, 1)
	assert.Equal(t, "OFAC-SDGT-002", snap.At(hits[0]).ID)

	assert.Empty(t, snap.ExactLookup("john doe"))
}

func TestNewSnapshot_SortsByIDAndSkipsInvalid(t *testing.T) {
	snap := NewSnapshot(3, []domain.SanctionsEntry{
		{ID: "b", Name: "Beta"},
		{ID: "", Name: "No ID"},
		{ID: "c", Name: " .. "},
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Duplicate Beta"},
	})

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, "a", snap.At(0).ID)
	assert.Equal(t, "b", snap.At(1).ID)
	assert.Equal(t, "Beta", snap.At(1).Name)

	e, ok := snap.Entry("b")
	require.True(t, ok)
	assert.Equal(t, "Beta", e.Name)

	_, ok = snap.Entry("c")
	assert.False(t, ok)
}

func TestNewSnapshot_CopiesAliases(t *testing.T) {
	aliases := []string{"First"}
	snap := NewSnapshot(1, []domain.SanctionsEntry{{ID: "x", Name: "Name", Aliases: aliases}})

	aliases[0] = "Changed"
	assert.Equal(t, []string{"First"}, snap.At(0).Aliases)
}

func TestSnapshot_Lists(t *testing.T) {
	snap := NewSnapshot(1, SampleEntries())

	lists := snap.Lists()
	assert.Equal(t, []ListSummary{
		{ListName: "EU Sanctions", Source: "EU", Entries: 2},
		{ListName: "OFAC SDN List", Source: "OFAC", Entries: 5},
		{ListName: "UK Sanctions", Source: "UK", Entries: 1},
		{ListName: "UN Security Council", Source: "UN", Entries: 2},
	}, lists)
}
