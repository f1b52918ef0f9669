package graph

// NodeDegree names a node and its degree.
type NodeDegree struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

// EdgeWeight names an edge and its cumulative weight.
type EdgeWeight struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceName string `json:"source_name"`
	TargetName string `json:"target_name"`
	Weight     int    `json:"weight"`
	Count      int    `json:"count"`
}

// Stats is the aggregate network summary persisted alongside the graph.
type Stats struct {
	NumNodes                int         `json:"num_nodes"`
	NumEdges                int         `json:"num_edges"`
	AvgDegree               float64     `json:"avg_degree"`
	NumComponents           int         `json:"num_components"`
	AvgAttractionDegree     *float64    `json:"avg_attraction_degree,omitempty"`
	AvgEmotionDegree        *float64    `json:"avg_emotion_degree,omitempty"`
	HighestDegreeAttraction *NodeDegree `json:"highest_degree_attraction,omitempty"`
	HighestDegreeEmotion    *NodeDegree `json:"highest_degree_emotion,omitempty"`
	HighestWeightEdge       *EdgeWeight `json:"highest_weight_edge,omitempty"`
}

// Stats computes the aggregate statistics over the current graph. Ties are
// broken by insertion order.
func (g *Graph) Stats() Stats {
	s := Stats{
		NumNodes:      g.NumNodes(),
		NumEdges:      g.NumEdges(),
		NumComponents: g.components(),
	}
	if s.NumNodes > 0 {
		s.AvgDegree = float64(2*s.NumEdges) / float64(s.NumNodes)
	}

	type acc struct {
		sum, n int
		best   *NodeDegree
	}
	byKind := map[NodeKind]*acc{KindAttraction: {}, KindEmotion: {}}
	for _, id := range g.order {
		n := g.nodes[id]
		a := byKind[n.Kind]
		if a == nil {
			continue
		}
		d := g.Degree(id)
		a.sum += d
		a.n++
		if a.best == nil || d > a.best.Degree {
			a.best = &NodeDegree{ID: id, Name: n.Name, Degree: d}
		}
	}
	if a := byKind[KindAttraction]; a.n > 0 {
		avg := float64(a.sum) / float64(a.n)
		s.AvgAttractionDegree = &avg
		s.HighestDegreeAttraction = a.best
	}
	if a := byKind[KindEmotion]; a.n > 0 {
		avg := float64(a.sum) / float64(a.n)
		s.AvgEmotionDegree = &avg
		s.HighestDegreeEmotion = a.best
	}

	var heaviest *Edge
	for _, e := range g.edges {
		if heaviest == nil || e.Weight > heaviest.Weight {
			heaviest = e
		}
	}
	if heaviest != nil {
		s.HighestWeightEdge = &EdgeWeight{
			Source:     heaviest.Source,
			Target:     heaviest.Target,
			SourceName: g.nodes[heaviest.Source].Name,
			TargetName: g.nodes[heaviest.Target].Name,
			Weight:     heaviest.Weight,
			Count:      heaviest.Count,
		}
	}
	return s
}

// components counts connected components with an iterative DFS.
func (g *Graph) components() int {
	seen := make(map[string]bool, len(g.order))
	count := 0
	var stack []string
	for _, start := range g.order {
		if seen[start] {
			continue
		}
		count++
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for next := range g.adj[id] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
	}
	return count
}
