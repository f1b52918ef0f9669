package classifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownEmotion is returned when a reply names no known emotion.
var ErrUnknownEmotion = errors.New("reply names no known emotion")

var byLower = func() map[string]string {
	m := make(map[string]string, len(emotions))
	for _, e := range emotions {
		m[strings.ToLower(e.Name)] = e.Name
	}
	return m
}()

var (
	numberingRe   = regexp.MustCompile(`^\s*\d+\s*[.):-]\s*`)
	parentheticRe = regexp.MustCompile(`\([^)]*\)`)
	wordRe        = regexp.MustCompile(`[A-Za-z]+`)
)

// ParseEmotion maps a model reply to a canonical emotion label. It tries, in
// order: the cleaned first line as a whole, then a single emotion name
// appearing anywhere in the reply.
func ParseEmotion(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUnknownEmotion)
	}

	first := text
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	first = numberingRe.ReplaceAllString(first, "")
	first = parentheticRe.ReplaceAllString(first, "")
	first = strings.Trim(strings.TrimSpace(first), "*_`\"'.,;:!")
	if name, ok := byLower[strings.ToLower(strings.TrimSpace(first))]; ok {
		return name, nil
	}

	found := ""
	for _, w := range wordRe.FindAllString(parentheticRe.ReplaceAllString(text, ""), -1) {
		name, ok := byLower[strings.ToLower(w)]
		if !ok || name == found {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: ambiguous reply %.80q", ErrUnknownEmotion, text)
		}
		found = name
	}
	if found == "" {
		return "", fmt.Errorf("%w: %.80q", ErrUnknownEmotion, text)
	}
	return found, nil
}
