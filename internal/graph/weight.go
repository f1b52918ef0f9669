package graph

import "math"

// AdequacyWeight scores how consistently a sentence's sentiment agrees with
// the star rating of its review, as an integer in [1,5]. Agreeing signals
// (positive sentence in a 5-star review, negative sentence in a 1-star review)
// score 5; contradicting signals score 1; neutral ones score 3.
func AdequacyWeight(sentiment, rating float64) int {
	if math.IsNaN(sentiment) {
		sentiment = 0
	}
	if math.IsNaN(rating) {
		rating = 3
	}
	score := clamp(sentiment, -1, 1)
	polarity := (clamp(rating, 1, 5) - 3) / 2
	raw := 3 + 2*score*polarity
	return int(math.Round(clamp(raw, 1, 5)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
