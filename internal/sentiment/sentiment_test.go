package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	s := NewSplitter(nil)
	got := s.Split("Great place to visit. The food was terrible! Would we come back? Yes.")
	require.Len(t, got, 4)
	assert.Equal(t, "Great place to visit.", got[0])
	assert.Equal(t, "The food was terrible!", got[1])

	assert.Empty(t, s.Split("   "))
}

func TestExtractSkipsOrdinalsAndNumerals(t *testing.T) {
	e := NewAdjectiveExtractor(nil)
	got := e.Extract("The first dog is bigger than the second beautiful dog, but the 11th dog is the smallest.")
	assert.Contains(t, got, "beautiful")
	assert.Contains(t, got, "bigger")
	assert.NotContains(t, got, "first")
	assert.NotContains(t, got, "second")
	assert.NotContains(t, got, "11th")
}

func TestExtractCoordinatedAdjectives(t *testing.T) {
	e := NewAdjectiveExtractor(nil)
	got := e.Extract("It was a wonderful and peaceful afternoon.")
	assert.Contains(t, got, "wonderful")
	assert.Contains(t, got, "peaceful")
	assert.Empty(t, e.Extract(""))
}

func TestScorePolarity(t *testing.T) {
	s := NewLexiconScorer()

	pos := s.Score("The view was wonderful.")
	assert.Greater(t, pos.Compound, 0.5)
	assert.Greater(t, pos.Positive, 0.0)
	assert.Zero(t, pos.Negative)

	neg := s.Score("The queue was horrendous and the guide was incompetent.")
	assert.Less(t, neg.Compound, -0.3)
	assert.Greater(t, neg.Negative, 0.0)

	neutral := s.Score("We arrived at noon.")
	assert.Zero(t, neutral.Compound)
	assert.InDelta(t, 1.0, neutral.Neutral, 1e-9)

	empty := s.Score("")
	assert.Equal(t, 1.0, empty.Neutral)
}

func TestScoreModifiers(t *testing.T) {
	s := NewLexiconScorer()
	good := s.Score("The tour was good.").Compound

	assert.Greater(t, s.Score("The tour was very good.").Compound, good, "booster")
	assert.Less(t, s.Score("The tour was not good.").Compound, 0.0, "negation")
	assert.Greater(t, s.Score("The tour was good!!").Compound, good, "exclamation")
	assert.Greater(t, s.Score("The food was bad but the view was beautiful.").Compound, 0.0, "clause after but dominates")
}

func TestScoreCompoundBounded(t *testing.T) {
	s := NewLexiconScorer()
	r := s.Score("Best tour ever, amazing guide, wonderful views, perfect lunch, superb!!!!")
	assert.LessOrEqual(t, r.Compound, 1.0)
	assert.Greater(t, r.Compound, 0.9)

	r = s.Score("Worst museum ever, horrible staff, filthy toilets, awful and terrible.")
	assert.GreaterOrEqual(t, r.Compound, -1.0)
	assert.Less(t, r.Compound, -0.9)
}
