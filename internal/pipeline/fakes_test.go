package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/progress"
)

type fakeCatalog struct {
	continents []model.Continent
	err        error
}

func (f fakeCatalog) Get(context.Context) ([]model.Continent, error) {
	return f.continents, f.err
}

type fakeFinder struct {
	mu      sync.Mutex
	byCity  map[string][]model.Place
	errs    map[string]error
	queried []string
}

func (f *fakeFinder) NearbyAttractions(_ context.Context, city model.City, _ int) ([]model.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, city.Name)
	if err := f.errs[city.Name]; err != nil {
		return nil, err
	}
	return f.byCity[city.Name], nil
}

type fakeReviews struct {
	byPlace map[string][]model.Review
	fetched []string
	onFetch func(model.Place)
}

func (f *fakeReviews) Fetch(_ context.Context, p model.Place) ([]model.Review, error) {
	f.fetched = append(f.fetched, p.ID)
	if f.onFetch != nil {
		f.onFetch(p)
	}
	return f.byPlace[p.ID], nil
}

// sentenceSplitter splits on ". ".
type sentenceSplitter struct{}

func (sentenceSplitter) Split(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// wordAdjectives treats every word listed in known as an adjective.
type wordAdjectives struct {
	known map[string]bool
}

func (w wordAdjectives) Extract(sentence string) []string {
	var out []string
	for _, f := range strings.Fields(sentence) {
		f = strings.Trim(strings.ToLower(f), ".,!?")
		if w.known[f] {
			out = append(out, f)
		}
	}
	return out
}

// fixedScorer returns the compound score configured for a sentence, or zero.
type fixedScorer map[string]float64

func (f fixedScorer) Score(sentence string) model.Sentiment {
	return model.Sentiment{Compound: f[sentence]}
}

type fakeClassifier struct {
	labels map[string]string
	fail   map[string]error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, adj string) (string, error) {
	f.calls++
	if err := f.fail[adj]; err != nil {
		return "", err
	}
	if l, ok := f.labels[adj]; ok {
		return l, nil
	}
	return "", errors.New("unknown adjective")
}

// memCheckpointer keeps JSON copies of everything saved so tests observe
// exactly what would have reached disk.
type memCheckpointer struct {
	progress   []byte
	graphDoc   []byte
	catalog    []byte
	stats      []graph.Stats
	scopes     []string
	progSaves  int
	graphSaves int
}

func (m *memCheckpointer) LoadProgress() *progress.Tree {
	if m.progress == nil {
		return nil
	}
	var t progress.Tree
	if err := json.Unmarshal(m.progress, &t); err != nil {
		return nil
	}
	return &t
}

func (m *memCheckpointer) LoadGraph() *graph.Graph {
	if m.graphDoc == nil {
		return graph.New()
	}
	var doc graph.Document
	var emotions []graph.Emotion
	if err := json.Unmarshal(m.graphDoc, &doc); err != nil {
		return graph.New()
	}
	_ = json.Unmarshal(m.catalog, &emotions)
	g, err := graph.FromDocument(doc, emotions)
	if err != nil {
		return graph.New()
	}
	return g
}

func (m *memCheckpointer) SaveProgress(t *progress.Tree) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	m.progress = b
	m.progSaves++
	return nil
}

func (m *memCheckpointer) SaveGraph(g *graph.Graph) error {
	doc, err := json.Marshal(g.Document())
	if err != nil {
		return err
	}
	cat, err := json.Marshal(g.Catalog().Emotions())
	if err != nil {
		return err
	}
	m.graphDoc, m.catalog = doc, cat
	m.graphSaves++
	return nil
}

func (m *memCheckpointer) SaveStats(scope string, st graph.Stats) error {
	m.stats = append(m.stats, st)
	m.scopes = append(m.scopes, scope)
	return nil
}

func (m *memCheckpointer) saves() int {
	return m.progSaves + m.graphSaves + len(m.stats)
}

func (m *memCheckpointer) savedTree() *progress.Tree {
	return m.LoadProgress()
}
