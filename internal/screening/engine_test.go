package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/sanctions"
)

func TestEngine_ExactMatchBlocks(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	for _, name := range []string{"John Smith", "JOHN  SMITH", "Mr. John Smith", "J. Smith"} {
		t.Run(name, func(t *testing.T) {
			res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: name})
			require.NoError(t, err)

			top, ok := res.TopMatch()
			require.True(t, ok)
			assert.Equal(t, "OFAC-SDNT-001", top.SanctionsEntryID)
			assert.Equal(t, domain.MatchTypeExact, top.MatchType)
			assert.Equal(t, 1.0, top.MatchScore)
			assert.Equal(t, 1.0, res.OverallRiskScore)
			assert.Equal(t, domain.DecisionBlock, res.Decision)
			assert.Equal(t, name, res.EntityName)
		})
	}
}

func TestEngine_AliasOnEntitySide(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	res, err := e.ScreenEntity(context.Background(), domain.Entity{
		Name:    "Emily Watson",
		Aliases: []string{"Usama bin Laden"},
	})
	require.NoError(t, err)

	top, ok := res.TopMatch()
	require.True(t, ok)
	assert.Equal(t, "OFAC-SDGT-001", top.SanctionsEntryID)
	assert.Equal(t, domain.DecisionBlock, res.Decision)
}

func TestEngine_ApostropheSpellingsMatchExactly(t *testing.T) {
	ref := fixedReference{snap: sanctions.NewSnapshot(1, []domain.SanctionsEntry{
		{ID: "UK-001", Name: "Sean O'Brien", ListName: "UK Sanctions List", Source: "UK"},
	})}
	e := newTestEngine(t, ref, nil)

	for _, name := range []string{"Sean O'Brien", "Sean O Brien", "Sean O-Brien", "Sean OBrien", "SEAN O’BRIEN"} {
		t.Run(name, func(t *testing.T) {
			res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: name})
			require.NoError(t, err)

			top, ok := res.TopMatch()
			require.True(t, ok)
			assert.Equal(t, "UK-001", top.SanctionsEntryID)
			assert.Equal(t, domain.MatchTypeExact, top.MatchType)
			assert.True(t, res.IsBlocked())
		})
	}
}

func TestEngine_NoMatchIsClear(t *testing.T) {
	empty := fixedReference{snap: sanctions.NewSnapshot(1, nil)}

	for name, ref := range map[string]fixedReference{"empty list": empty, "sample list": sampleReference()} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, ref, nil)
			res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "Emily Watson"})
			require.NoError(t, err)

			assert.Empty(t, res.Matches)
			assert.Equal(t, 0.0, res.OverallRiskScore)
			assert.Equal(t, domain.DecisionClear, res.Decision)
			assert.Equal(t, 1.0, res.ConfidenceScore)
		})
	}

	e := newTestEngine(t, empty, nil)
	res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "John Doe"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.OverallRiskScore)
	assert.Equal(t, domain.DecisionClear, res.Decision)
}

func TestEngine_FuzzyMatchNeedsReview(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "Jon Smith"})
	require.NoError(t, err)

	top, ok := res.TopMatch()
	require.True(t, ok)
	assert.Equal(t, domain.MatchTypeFuzzy, top.MatchType)
	assert.InDelta(t, 0.859, res.OverallRiskScore, 0.001)
	assert.Equal(t, domain.DecisionReview, res.Decision)
	assert.Equal(t, domain.ReviewPriorityHigh, res.ReviewPriority)
	assert.False(t, res.Degraded)
}

func TestEngine_FieldBonusRaisesRisk(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	res, err := e.ScreenEntity(context.Background(), domain.Entity{
		Name:           "Jon Smith",
		DateOfBirth:    "1980-05-15",
		PassportNumber: "A12345678",
	})
	require.NoError(t, err)

	top, _ := res.TopMatch()
	assert.Equal(t, []string{domain.FieldDateOfBirth, domain.FieldPassportNumber}, top.MatchedFields)
	assert.InDelta(t, top.MatchScore+0.1, res.OverallRiskScore, 1e-9)
	assert.Equal(t, domain.DecisionBlock, res.Decision)
}

func TestEngine_ThresholdOverride(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	strict, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "Jon Smith"}, WithThresholdOverride(0.9))
	require.NoError(t, err)
	assert.Empty(t, strict.Matches)
	assert.Equal(t, domain.DecisionClear, strict.Decision)

	_, err = e.ScreenEntity(context.Background(), domain.Entity{Name: "Jon Smith"}, WithThresholdOverride(1.5))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_InvalidEntity(t *testing.T) {
	e := newTestEngine(t, sampleReference(), nil)

	for _, entity := range []domain.Entity{
		{Name: ""},
		{Name: "   "},
		{Name: "!!! ???"},
		{Name: "John Smith", EntityType: "vessel"},
		{Name: "John Smith", DateOfBirth: "15/05/1980"},
	} {
		_, err := e.ScreenEntity(context.Background(), entity)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", entity)
	}
}

func TestEngine_ResultsAreBoundedAndDeterministic(t *testing.T) {
	e := newTestEngine(t, sampleReference(), NewSemanticMatcher(newIdentityEmbeddings(nil), time.Second, testLogger(t)))

	names := []string{
		"John Smith", "Jon Smith", "Jhon Smyth", "Kim Jong Eun", "Vladimir Putin",
		"Putin", "Hizbollah", "Emily Watson", "Maria Rodriguez", "Bob Johnson", "A",
		"Talibans", "Islamic Emirate", "Robert Johnston", "Zawahiri",
	}
	for _, name := range names {
		first, err := e.ScreenEntity(context.Background(), domain.Entity{Name: name})
		require.NoError(t, err)
		second, err := e.ScreenEntity(context.Background(), domain.Entity{Name: name})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, first.OverallRiskScore, 0.0, name)
		assert.LessOrEqual(t, first.OverallRiskScore, 1.0, name)
		assert.Contains(t, []domain.Decision{domain.DecisionClear, domain.DecisionReview, domain.DecisionBlock}, first.Decision)
		for i := 1; i < len(first.Matches); i++ {
			assert.GreaterOrEqual(t, first.Matches[i-1].MatchScore, first.Matches[i].MatchScore, name)
		}

		first.ProcessingTimeMs, second.ProcessingTimeMs = 0, 0
		assert.Equal(t, first, second, name)
	}
}

func TestEngine_SemanticCandidate(t *testing.T) {
	source := newIdentityEmbeddings(map[string][]float64{
		"the sheikh":      {1, 0},
		"osama bin laden": {0.95, 0.31},
	})
	e := newTestEngine(t, sampleReference(), NewSemanticMatcher(source, time.Second, testLogger(t)))

	res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "The Sheikh"})
	require.NoError(t, err)

	top, ok := res.TopMatch()
	require.True(t, ok)
	assert.Equal(t, "OFAC-SDGT-001", top.SanctionsEntryID)
	assert.Equal(t, domain.MatchTypeSemantic, top.MatchType)
	assert.InDelta(t, 0.9507, top.MatchScore, 0.001)
	assert.Equal(t, domain.DecisionBlock, res.Decision)
	assert.False(t, res.Degraded)
}

func TestEngine_DegradesWhenProviderStalls(t *testing.T) {
	e := newTestEngine(t, sampleReference(), NewSemanticMatcher(stalledEmbeddings{}, 20*time.Millisecond, testLogger(t)))

	res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "Jon Smith"})
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	top, ok := res.TopMatch()
	require.True(t, ok)
	assert.Equal(t, domain.MatchTypeFuzzy, top.MatchType)
	assert.Equal(t, "OFAC-SDNT-001", top.SanctionsEntryID)
	assert.Greater(t, res.OverallRiskScore, 0.0)
}

func TestEngine_DegradesWhenProviderFails(t *testing.T) {
	semantic := NewSemanticMatcher(failingEmbeddings{err: domain.ErrProviderUnavailable}, time.Second, testLogger(t))
	e := newTestEngine(t, sampleReference(), semantic)

	res, err := e.ScreenEntity(context.Background(), domain.Entity{Name: "John Smith"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, domain.DecisionBlock, res.Decision)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := newTestEngine(t, sampleReference(), NewSemanticMatcher(stalledEmbeddings{}, time.Second, testLogger(t)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScreenEntity(ctx, domain.Entity{Name: "John Smith"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
