package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// LexiconScorer scores sentence polarity with the VADER lexicon and rules.
type LexiconScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewLexiconScorer loads the VADER lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the negative, neutral and positive proportions and the
// normalized compound score in [-1, 1] for sentence.
func (s *LexiconScorer) Score(sentence string) model.Sentiment {
	if strings.TrimSpace(sentence) == "" {
		return model.Sentiment{Neutral: 1}
	}
	p := s.analyzer.PolarityScores(sentence)
	return model.Sentiment{
		Negative: p.Negative,
		Neutral:  p.Neutral,
		Positive: p.Positive,
		Compound: clamp(p.Compound),
	}
}

func clamp(v float64) float64 {
	return max(-1, min(1, v))
}
