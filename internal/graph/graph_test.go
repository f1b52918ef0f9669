package graph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

func strPtr(s string) *string { return &s }

var belem = model.Place{
	ID:          "place-belem",
	DisplayName: "Belém Tower",
	Rating:      4.6,
	Location:    model.LatLng{Latitude: 38.6916, Longitude: -9.2160},
	Categories:  []string{"culture"},
}

func TestAdequacyWeight(t *testing.T) {
	tests := []struct {
		score, rating float64
		want          int
	}{
		{1.0, 5.0, 5},
		{-1.0, 5.0, 1},
		{0.0, 3.0, 3},
		{-1.0, 1.0, 5},
		{1.0, 1.0, 1},
		{0.8, 5.0, 5},
		{0.5, 4.0, 4},
		{0.0, 5.0, 3},
		{7.0, 9.0, 5},
		{-7.0, -2.0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdequacyWeight(tt.score, tt.rating), "score=%v rating=%v", tt.score, tt.rating)
	}
}

func TestAdequacyWeightAlwaysInRange(t *testing.T) {
	for s := -1.5; s <= 1.5; s += 0.05 {
		for r := 0.0; r <= 6.0; r += 0.25 {
			w := AdequacyWeight(s, r)
			assert.GreaterOrEqual(t, w, 1)
			assert.LessOrEqual(t, w, 5)
		}
	}
}

func TestRecordObservationCreatesNodesAndEdge(t *testing.T) {
	g := New()
	err := g.RecordObservation(Observation{
		Attraction:        belem,
		EmotionName:       "Wonderful",
		EmotionType:       model.EmotionAdjective,
		Sentiment:         0.8,
		Rating:            5,
		AssociatedEmotion: strPtr("Joy"),
		Date:              "2025-03-01",
		Labels:            &model.LocationLabels{Continent: "Europe", Country: "Portugal", City: "Lisbon"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())

	a, ok := g.Node("place-belem")
	require.True(t, ok)
	assert.Equal(t, KindAttraction, a.Kind)
	assert.Equal(t, "Belém Tower", a.Name)
	assert.Equal(t, "Lisbon", a.Attraction.City)
	assert.Equal(t, []string{"culture"}, a.Attraction.Categories)

	e, ok := g.Node("adjective_1")
	require.True(t, ok)
	assert.Equal(t, "wonderful", e.Name)
	require.NotNil(t, e.Emotion.AssociatedEmotion)
	assert.Equal(t, "Joy", *e.Emotion.AssociatedEmotion)

	edge, ok := g.Edge("adjective_1", "place-belem")
	require.True(t, ok)
	assert.Equal(t, 5, edge.Weight)
	assert.Equal(t, 1, edge.Count)
	assert.Equal(t, []string{"2025-03-01"}, edge.Dates)
}

func TestRecordObservationAccumulates(t *testing.T) {
	g := New()
	obs := Observation{Attraction: belem, EmotionName: "crowded", Sentiment: -0.4, Rating: 2, Date: "d"}
	single := AdequacyWeight(obs.Sentiment, obs.Rating)

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, g.RecordObservation(obs))
	}

	edge, ok := g.Edge("place-belem", "adjective_1")
	require.True(t, ok)
	assert.Equal(t, n, edge.Count)
	assert.Equal(t, n*single, edge.Weight)
	assert.Len(t, edge.Dates, n)
	assert.Equal(t, 2, g.NumNodes())
}

func TestRecordObservationFirstWriterWins(t *testing.T) {
	g := New()
	require.NoError(t, g.RecordObservation(Observation{
		Attraction:        belem,
		EmotionName:       "calm",
		AssociatedEmotion: strPtr("Peace"),
		Labels:            &model.LocationLabels{City: "Lisbon"},
	}))

	renamed := belem
	renamed.DisplayName = "Torre de Belém"
	renamed.Rating = 1
	require.NoError(t, g.RecordObservation(Observation{
		Attraction:        renamed,
		EmotionName:       "CALM",
		AssociatedEmotion: strPtr("Relaxation"),
		Labels:            &model.LocationLabels{City: "Porto"},
	}))

	a, _ := g.Node("place-belem")
	assert.Equal(t, "Belém Tower", a.Name)
	assert.Equal(t, 4.6, a.Attraction.Rating)
	assert.Equal(t, "Lisbon", a.Attraction.City)

	e, _ := g.Node("adjective_1")
	assert.Equal(t, "Peace", *e.Emotion.AssociatedEmotion)
	assert.Equal(t, 1, g.Catalog().Len())

	edge, _ := g.Edge("place-belem", "adjective_1")
	assert.Equal(t, 2, edge.Count)
	assert.Empty(t, edge.Dates)
}

func TestRecordObservationRejectsIncomplete(t *testing.T) {
	g := New()
	assert.Error(t, g.RecordObservation(Observation{EmotionName: "nice"}))
	assert.Error(t, g.RecordObservation(Observation{Attraction: belem, EmotionName: "  "}))
	assert.Zero(t, g.NumNodes())
}

func TestEmotionCatalogIDs(t *testing.T) {
	c := NewEmotionCatalog()
	a, created := c.Ensure("Beautiful", model.EmotionAdjective, nil)
	assert.True(t, created)
	assert.Equal(t, "adjective_1", a.ID)

	b, _ := c.Ensure("Joy", model.EmotionDerived, nil)
	assert.Equal(t, "emotion_2", b.ID)

	again, created := c.Ensure(" beautiful ", model.EmotionAdjective, nil)
	assert.False(t, created)
	assert.Same(t, a, again)
	assert.Equal(t, 2, c.Len())
}

func TestStats(t *testing.T) {
	g := New()
	assert.Equal(t, Stats{}, g.Stats())

	lisbon := belem
	other := model.Place{ID: "place-jeronimos", DisplayName: "Jerónimos Monastery"}
	isolated := model.Place{ID: "place-far", DisplayName: "Far Away Park"}

	for _, o := range []Observation{
		{Attraction: lisbon, EmotionName: "beautiful", Sentiment: 0.9, Rating: 5},
		{Attraction: lisbon, EmotionName: "beautiful", Sentiment: 0.9, Rating: 5},
		{Attraction: lisbon, EmotionName: "crowded", Sentiment: -0.5, Rating: 4},
		{Attraction: other, EmotionName: "beautiful", Sentiment: 0.2, Rating: 3},
		{Attraction: isolated, EmotionName: "quiet", Sentiment: 0.1, Rating: 4},
	} {
		require.NoError(t, g.RecordObservation(o))
	}

	s := g.Stats()
	assert.Equal(t, 6, s.NumNodes)
	assert.Equal(t, 4, s.NumEdges)
	assert.InDelta(t, 8.0/6.0, s.AvgDegree, 1e-9)
	assert.Equal(t, 2, s.NumComponents)

	require.NotNil(t, s.AvgAttractionDegree)
	assert.InDelta(t, 4.0/3.0, *s.AvgAttractionDegree, 1e-9)
	require.NotNil(t, s.AvgEmotionDegree)
	assert.InDelta(t, 4.0/3.0, *s.AvgEmotionDegree, 1e-9)

	require.NotNil(t, s.HighestDegreeAttraction)
	assert.Equal(t, "place-belem", s.HighestDegreeAttraction.ID)
	assert.Equal(t, 2, s.HighestDegreeAttraction.Degree)
	require.NotNil(t, s.HighestDegreeEmotion)
	assert.Equal(t, "beautiful", s.HighestDegreeEmotion.Name)

	require.NotNil(t, s.HighestWeightEdge)
	assert.Equal(t, "place-belem", s.HighestWeightEdge.Source)
	assert.Equal(t, 10, s.HighestWeightEdge.Weight)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.json")
	catalogPath := filepath.Join(dir, "emotions.json")

	g := New()
	require.NoError(t, g.RecordObservation(Observation{Attraction: belem, EmotionName: "wonderful", AssociatedEmotion: strPtr("Joy"), Sentiment: 0.8, Rating: 5, Date: "2025-01-02"}))
	require.NoError(t, g.RecordObservation(Observation{Attraction: belem, EmotionName: "busy", Sentiment: -0.3, Rating: 3}))
	require.NoError(t, g.Save(graphPath, catalogPath))

	loaded, err := Load(graphPath, catalogPath)
	require.NoError(t, err)
	assert.Equal(t, g.Document(), loaded.Document())
	assert.Equal(t, g.Catalog().Emotions(), loaded.Catalog().Emotions())

	// Accumulation continues on the reloaded graph with stable ids.
	require.NoError(t, loaded.RecordObservation(Observation{Attraction: belem, EmotionName: "Wonderful", Sentiment: 0.8, Rating: 5}))
	edge, _ := loaded.Edge("place-belem", "adjective_1")
	assert.Equal(t, 10, edge.Weight)
	assert.Equal(t, 2, edge.Count)

	require.NoError(t, loaded.RecordObservation(Observation{Attraction: belem, EmotionName: "grand", Sentiment: 0.5, Rating: 5}))
	_, ok := loaded.Node("adjective_3")
	assert.True(t, ok)
}

func TestLoadRebuildsCatalogFromNodes(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.json")

	g := New()
	require.NoError(t, g.RecordObservation(Observation{Attraction: belem, EmotionName: "lovely"}))
	require.NoError(t, g.Save(graphPath, filepath.Join(dir, "emotions.json")))

	loaded, err := Load(graphPath, filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	e, ok := loaded.Catalog().Lookup("lovely")
	require.True(t, ok)
	assert.Equal(t, "adjective_1", e.ID)
}

func TestFromDocumentRejectsDanglingEdge(t *testing.T) {
	_, err := FromDocument(Document{
		Nodes: []Node{{ID: "a", Kind: KindAttraction}},
		Edges: []Edge{{Source: "a", Target: "ghost", Weight: 1, Count: 1}},
	}, nil)
	assert.Error(t, err)
}
