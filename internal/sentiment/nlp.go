// Package sentiment splits review text into sentences, extracts adjectives
// and scores sentence polarity.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// Splitter segments text into sentences.
type Splitter struct {
	log *zap.Logger
}

// NewSplitter returns a sentence splitter.
func NewSplitter(log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{log: log}
}

// Split returns the non-empty sentences of text. If segmentation fails the
// whole text is returned as one sentence.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		s.log.Warn("sentence segmentation failed", zap.Error(err))
		return []string{text}
	}
	var out []string
	for _, sent := range doc.Sentences() {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AdjectiveExtractor finds adjectives with a part-of-speech tagger.
type AdjectiveExtractor struct {
	log *zap.Logger
}

// NewAdjectiveExtractor returns an extractor.
func NewAdjectiveExtractor(log *zap.Logger) *AdjectiveExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdjectiveExtractor{log: log}
}

var adjectiveTags = map[string]bool{"JJ": true, "JJR": true, "JJS": true}

var numericRe = regexp.MustCompile(`^[\d.,]+(st|nd|rd|th)?$`)

var ordinals = map[string]bool{
	"first": true, "second": true, "third": true, "fourth": true, "fifth": true,
	"sixth": true, "seventh": true, "eighth": true, "ninth": true, "tenth": true,
	"eleventh": true, "twelfth": true, "twentieth": true, "hundredth": true,
	"thousandth": true,
}

// Extract returns the adjectives of sentence in order, lowercased. Numerals
// and ordinals tagged as adjectives are dropped.
func (a *AdjectiveExtractor) Extract(sentence string) []string {
	if strings.TrimSpace(sentence) == "" {
		return nil
	}
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		a.log.Warn("tagging failed", zap.Error(err))
		return nil
	}
	var out []string
	for _, tok := range doc.Tokens() {
		if !adjectiveTags[tok.Tag] {
			continue
		}
		w := strings.ToLower(strings.Trim(tok.Text, ".,;:!?\"'()"))
		if w == "" || numericRe.MatchString(w) || ordinals[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}
