package classifier

import (
	"fmt"
	"strings"
)

// emotion is a canonical label with the hints shown to the model.
type emotion struct {
	Name  string
	Hints string
}

var emotions = []emotion{
	{"Happiness", ""},
	{"Joy", ""},
	{"Excitement", ""},
	{"Wonder", "awe, amazement"},
	{"Peace", "calm, tranquility"},
	{"Relaxation", ""},
	{"Satisfaction", "contentment"},
	{"Love", "affection, admiration"},
	{"Pride", "cultural, historical value, achievement"},
	{"Gratitude", ""},
	{"Trust", "safety, reliability"},
	{"Inspiration", "uplift, creativity"},
	{"Curiosity", ""},
	{"Anticipation", "expectation, suspense"},
	{"Nostalgia", ""},
	{"Surprise", "can be positive or negative"},
	{"Loneliness", "esp. if attraction feels empty or isolating"},
	{"Boredom", ""},
	{"Confusion", ""},
	{"Sadness", ""},
	{"Disappointment", ""},
	{"Frustration", ""},
	{"Annoyance", ""},
	{"Anger", ""},
	{"Fear", ""},
	{"Anxiety", ""},
	{"Stress", "crowds, waiting, noise"},
	{"Disgust", "dirty, smelly"},
	{"Regret", "waste of time/money"},
	{"Insecurity", "unsafe, unwelcoming"},
}

// Emotions returns the canonical emotion labels in prompt order.
func Emotions() []string {
	out := make([]string, len(emotions))
	for i, e := range emotions {
		out[i] = e.Name
	}
	return out
}

const systemPrompt = `You classify adjectives taken from tourist attraction reviews into the emotion a visitor most likely felt. Reply with the emotion name only.`

func buildPrompt(adjective string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify the adjective %q into one of the emotions:\n", adjective)
	for i, e := range emotions {
		if e.Hints != "" {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, e.Name, e.Hints)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e.Name)
		}
	}
	b.WriteString("\nYou must choose only one emotion that best represents the adjective. Reply with only the emotion name, ignoring any other text.")
	return b.String()
}
