// Package pipeline walks the location catalog, turns attraction reviews into
// attraction/emotion observations and checkpoints its progress so a stopped
// run resumes without reprocessing or double counting.
package pipeline

import (
	"context"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/progress"
)

// LocationCatalog supplies the continents, countries and cities to walk.
type LocationCatalog interface {
	Get(ctx context.Context) ([]model.Continent, error)
}

// AttractionFinder lists the attractions around a city. Results are fully
// materialized before they are returned.
type AttractionFinder interface {
	NearbyAttractions(ctx context.Context, city model.City, maxResults int) ([]model.Place, error)
}

// ReviewSource fetches the reviews of one attraction.
type ReviewSource interface {
	Fetch(ctx context.Context, place model.Place) ([]model.Review, error)
}

// SentenceSplitter splits review text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// AdjectiveExtractor returns the adjectives of one sentence.
type AdjectiveExtractor interface {
	Extract(sentence string) []string
}

// SentimentScorer scores the polarity of one sentence.
type SentimentScorer interface {
	Score(sentence string) model.Sentiment
}

// EmotionClassifier maps an adjective to an emotion label. Implementations
// that call out over the network retry transient failures themselves.
type EmotionClassifier interface {
	Classify(ctx context.Context, adjective string) (string, error)
}

// Checkpointer loads and persists the run state.
type Checkpointer interface {
	// LoadProgress returns the saved tree, or nil when there is none or it
	// cannot be read.
	LoadProgress() *progress.Tree
	// LoadGraph returns the saved graph, or an empty one.
	LoadGraph() *graph.Graph
	SaveProgress(t *progress.Tree) error
	// SaveGraph writes the graph and its emotion catalog.
	SaveGraph(g *graph.Graph) error
	// SaveStats writes the aggregate statistics. scope names the flush.
	SaveStats(scope string, st graph.Stats) error
}

// Collaborators groups the external services the orchestrator drives.
type Collaborators struct {
	Catalog     LocationCatalog
	Attractions AttractionFinder
	Reviews     ReviewSource
	Splitter    SentenceSplitter
	Adjectives  AdjectiveExtractor
	Sentiment   SentimentScorer
	Classifier  EmotionClassifier
}
