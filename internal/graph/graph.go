// Package graph accumulates the weighted bipartite graph linking attractions
// to the adjectives and emotions visitors use about them.
package graph

import (
	"errors"
	"slices"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// NodeKind distinguishes the two sides of the graph.
type NodeKind string

const (
	KindAttraction NodeKind = "attraction"
	KindEmotion    NodeKind = "emotion"
)

// AttractionAttrs are the attributes of an attraction node.
type AttractionAttrs struct {
	Rating     float64      `json:"rating"`
	Location   model.LatLng `json:"location"`
	Continent  string       `json:"continent,omitempty"`
	Country    string       `json:"country,omitempty"`
	City       string       `json:"city,omitempty"`
	Categories []string     `json:"categories,omitempty"`
}

// EmotionAttrs are the attributes of an emotion node.
type EmotionAttrs struct {
	Type              model.EmotionType `json:"type"`
	AssociatedEmotion *string           `json:"associated_emotion,omitempty"`
}

// Node is a graph vertex. Exactly one of Attraction and Emotion is set,
// matching Kind.
type Node struct {
	ID         string           `json:"id"`
	Kind       NodeKind         `json:"kind"`
	Name       string           `json:"name"`
	Attraction *AttractionAttrs `json:"attraction,omitempty"`
	Emotion    *EmotionAttrs    `json:"emotion,omitempty"`
}

// Edge is an undirected attraction–emotion link. Weight is the sum of the
// adequacy weights of its observations and Count their number.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight int      `json:"weight"`
	Count  int      `json:"count"`
	Dates  []string `json:"dates"`
}

// Observation is one adjective found in one sentence of one review.
type Observation struct {
	Attraction        model.Place
	EmotionName       string
	EmotionType       model.EmotionType
	Sentiment         float64
	Rating            float64
	AssociatedEmotion *string
	Date              string
	Labels            *model.LocationLabels
}

var (
	errNoAttraction = errors.New("observation has no attraction id")
	errNoEmotion    = errors.New("observation has no emotion name")
)

// Graph owns the nodes, edges and emotion catalog. It is not safe for
// concurrent use; a single pipeline goroutine mutates it.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	adj     map[string]map[string]*Edge
	edges   []*Edge
	catalog *EmotionCatalog
}

// New returns an empty graph with an empty catalog.
func New() *Graph {
	return NewWithCatalog(NewEmotionCatalog())
}

// NewWithCatalog returns an empty graph sharing the given catalog.
func NewWithCatalog(c *EmotionCatalog) *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		adj:     make(map[string]map[string]*Edge),
		catalog: c,
	}
}

// Catalog returns the emotion catalog backing the graph.
func (g *Graph) Catalog() *EmotionCatalog {
	return g.catalog
}

// RecordObservation adds one observation: it creates the attraction and
// emotion nodes when missing (node attributes are never overwritten) and
// accumulates the adequacy weight onto their edge. It has no deduplication
// memory; callers must apply each observation once.
func (g *Graph) RecordObservation(obs Observation) error {
	if obs.Attraction.ID == "" {
		return errNoAttraction
	}
	if normalizeName(obs.EmotionName) == "" {
		return errNoEmotion
	}
	if obs.EmotionType == "" {
		obs.EmotionType = model.EmotionAdjective
	}

	if _, ok := g.nodes[obs.Attraction.ID]; !ok {
		attrs := &AttractionAttrs{
			Rating:     obs.Attraction.Rating,
			Location:   obs.Attraction.Location,
			Categories: slices.Clone(obs.Attraction.Categories),
		}
		if obs.Labels != nil {
			attrs.Continent = obs.Labels.Continent
			attrs.Country = obs.Labels.Country
			attrs.City = obs.Labels.City
		}
		g.addNode(&Node{
			ID:         obs.Attraction.ID,
			Kind:       KindAttraction,
			Name:       obs.Attraction.DisplayName,
			Attraction: attrs,
		})
	}

	emotion, _ := g.catalog.Ensure(obs.EmotionName, obs.EmotionType, obs.AssociatedEmotion)
	if _, ok := g.nodes[emotion.ID]; !ok {
		g.addNode(&Node{
			ID:   emotion.ID,
			Kind: KindEmotion,
			Name: emotion.Name,
			Emotion: &EmotionAttrs{
				Type:              emotion.Type,
				AssociatedEmotion: cloneString(emotion.AssociatedEmotion),
			},
		})
	}

	weight := AdequacyWeight(obs.Sentiment, obs.Rating)
	if e := g.adj[obs.Attraction.ID][emotion.ID]; e != nil {
		e.Weight += weight
		e.Count++
		if obs.Date != "" {
			e.Dates = append(e.Dates, obs.Date)
		}
		return nil
	}

	e := &Edge{
		Source: obs.Attraction.ID,
		Target: emotion.ID,
		Weight: weight,
		Count:  1,
		Dates:  []string{},
	}
	if obs.Date != "" {
		e.Dates = append(e.Dates, obs.Date)
	}
	g.addEdge(e)
	return nil
}

func (g *Graph) addNode(n *Node) {
	if _, ok := g.nodes[n.ID]; ok {
		return
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

func (g *Graph) addEdge(e *Edge) {
	if g.adj[e.Source] == nil {
		g.adj[e.Source] = make(map[string]*Edge)
	}
	if g.adj[e.Target] == nil {
		g.adj[e.Target] = make(map[string]*Edge)
	}
	g.adj[e.Source][e.Target] = e
	g.adj[e.Target][e.Source] = e
	g.edges = append(g.edges, e)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns a copy of the edge between a and b, in either order.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	e := g.adj[a][b]
	if e == nil {
		return Edge{}, false
	}
	out := *e
	out.Dates = slices.Clone(e.Dates)
	return out, true
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.order)
}

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Degree returns the number of neighbors of id.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		c := *e
		c.Dates = slices.Clone(e.Dates)
		out = append(out, c)
	}
	return out
}
