package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/progress"
	"github.com/intelligrit/emotion-atlas/internal/store"
)

const defaultHistoryLimit = 50

type progressResponse struct {
	Summary progress.Summary `json:"summary"`
	Tree    *progress.Tree   `json:"tree,omitempty"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	tree, err := progress.Open(s.Files.Progress)
	if errors.Is(err, progress.ErrNotFound) {
		http.Error(w, "no progress checkpoint yet", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "reading progress", err)
		return
	}

	resp := progressResponse{Summary: tree.Summarize()}
	// The full tree can be large; only send it when asked.
	if r.URL.Query().Get("tree") == "true" {
		resp.Tree = tree
	}
	writeJSON(w, resp)
}

// loadGraph reads the saved graph. ok is false when nothing has been saved.
func (s *Server) loadGraph(w http.ResponseWriter) (g *graph.Graph, ok bool) {
	g, err := graph.Load(s.Files.Graph, s.Files.Catalog)
	if errors.Is(err, os.ErrNotExist) {
		return graph.New(), true
	}
	if err != nil {
		s.fail(w, "reading graph", err)
		return nil, false
	}
	return g, true
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGraph(w)
	if !ok {
		return
	}
	doc := g.Document()

	// ?min_weight=N drops lighter edges, keeping every node.
	if v := r.URL.Query().Get("min_weight"); v != "" {
		minWeight, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid 'min_weight' parameter", http.StatusBadRequest)
			return
		}
		kept := doc.Edges[:0]
		for _, e := range doc.Edges {
			if e.Weight >= minWeight {
				kept = append(kept, e)
			}
		}
		doc.Edges = kept
	}
	if doc.Nodes == nil {
		doc.Nodes = []graph.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []graph.Edge{}
	}
	writeJSON(w, doc)
}

type statsResponse struct {
	Current graph.Stats         `json:"current"`
	History []store.StatsRecord `json:"history"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	g, ok := s.loadGraph(w)
	if !ok {
		return
	}
	resp := statsResponse{Current: g.Stats(), History: []store.StatsRecord{}}
	if s.History != nil && limit > 0 {
		records, err := s.History.StatsHistory(limit)
		if err != nil {
			s.fail(w, "reading stats history", err)
			return
		}
		if records != nil {
			resp.History = records
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGraph(w)
	if !ok {
		return
	}
	emotions := g.Catalog().Emotions()
	if kind := r.URL.Query().Get("type"); kind != "" {
		var filtered []graph.Emotion
		for _, e := range emotions {
			if string(e.Type) == kind {
				filtered = append(filtered, e)
			}
		}
		emotions = filtered
	}
	if emotions == nil {
		emotions = []graph.Emotion{}
	}
	writeJSON(w, emotions)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger().Error(what, zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS: local analysis tool, not a public API.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(v)
}
