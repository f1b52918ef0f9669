package graph

import (
	"fmt"
	"strings"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// Emotion is a catalog entry: an adjective or derived emotion with a stable id.
type Emotion struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Type              model.EmotionType `json:"type"`
	AssociatedEmotion *string           `json:"associated_emotion,omitempty"`
}

// EmotionCatalog maps normalized names to emotions. Entries are only ever
// added, and new ids are minted from the catalog size at insertion time.
type EmotionCatalog struct {
	byName map[string]*Emotion
	order  []*Emotion
}

// NewEmotionCatalog returns an empty catalog.
func NewEmotionCatalog() *EmotionCatalog {
	return &EmotionCatalog{byName: make(map[string]*Emotion)}
}

// Len returns the number of entries.
func (c *EmotionCatalog) Len() int {
	return len(c.order)
}

// Lookup finds an emotion by name, case-insensitively.
func (c *EmotionCatalog) Lookup(name string) (*Emotion, bool) {
	e, ok := c.byName[normalizeName(name)]
	return e, ok
}

// Ensure returns the entry for name, creating it with id "{type}_{size+1}"
// when absent. The associated emotion only applies to newly created entries.
func (c *EmotionCatalog) Ensure(name string, typ model.EmotionType, associated *string) (*Emotion, bool) {
	key := normalizeName(name)
	if e, ok := c.byName[key]; ok {
		return e, false
	}
	e := &Emotion{
		ID:                fmt.Sprintf("%s_%d", typ, len(c.order)+1),
		Name:              key,
		Type:              typ,
		AssociatedEmotion: cloneString(associated),
	}
	c.byName[key] = e
	c.order = append(c.order, e)
	return e, true
}

// add inserts a previously persisted entry as-is.
func (c *EmotionCatalog) add(e Emotion) {
	key := normalizeName(e.Name)
	if _, ok := c.byName[key]; ok {
		return
	}
	e.Name = key
	c.byName[key] = &e
	c.order = append(c.order, &e)
}

// Emotions returns a copy of all entries in insertion order.
func (c *EmotionCatalog) Emotions() []Emotion {
	out := make([]Emotion, len(c.order))
	for i, e := range c.order {
		out[i] = *e
		out[i].AssociatedEmotion = cloneString(e.AssociatedEmotion)
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
