package graph

import (
	"fmt"

	"github.com/intelligrit/emotion-atlas/internal/snapshot"
)

// Document is the on-disk form of a graph.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Document returns a serializable copy of the graph.
func (g *Graph) Document() Document {
	return Document{Nodes: g.Nodes(), Edges: g.Edges()}
}

// FromDocument rebuilds a graph from doc, sharing catalog. Catalog entries are
// added for any emotion node the catalog does not already know, so a graph
// saved without its catalog still resumes with stable ids. Edges whose
// endpoints are unknown are rejected.
func FromDocument(doc Document, catalog []Emotion) (*Graph, error) {
	c := NewEmotionCatalog()
	for _, e := range catalog {
		c.add(e)
	}

	g := NewWithCatalog(c)
	for i := range doc.Nodes {
		n := doc.Nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if n.Kind == KindEmotion && n.Emotion != nil {
			if _, ok := c.Lookup(n.Name); !ok {
				c.add(Emotion{
					ID:                n.ID,
					Name:              n.Name,
					Type:              n.Emotion.Type,
					AssociatedEmotion: cloneString(n.Emotion.AssociatedEmotion),
				})
			}
		}
		g.addNode(&n)
	}
	for i := range doc.Edges {
		e := doc.Edges[i]
		if g.nodes[e.Source] == nil || g.nodes[e.Target] == nil {
			return nil, fmt.Errorf("edge %s-%s references unknown node", e.Source, e.Target)
		}
		if e.Dates == nil {
			e.Dates = []string{}
		}
		g.addEdge(&e)
	}
	return g, nil
}

// Save writes the graph and its emotion catalog atomically.
func (g *Graph) Save(graphPath, catalogPath string) error {
	if err := snapshot.WriteJSON(graphPath, g.Document()); err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	if err := snapshot.WriteJSON(catalogPath, g.catalog.Emotions()); err != nil {
		return fmt.Errorf("saving emotion catalog: %w", err)
	}
	return nil
}

// Load reads a graph and catalog written by Save. A missing catalog file is
// tolerated; a missing or corrupt graph file is returned as an error for the
// caller to classify.
func Load(graphPath, catalogPath string) (*Graph, error) {
	var doc Document
	if err := snapshot.ReadJSON(graphPath, &doc); err != nil {
		return nil, err
	}
	var emotions []Emotion
	if err := snapshot.ReadJSON(catalogPath, &emotions); err != nil {
		emotions = nil
	}
	return FromDocument(doc, emotions)
}
