package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/progress"
	"github.com/intelligrit/emotion-atlas/internal/snapshot"
)

// Files names the checkpoint files of a data directory.
type Files struct {
	Progress string
	Graph    string
	Catalog  string
	Stats    string
}

// FilesIn returns the checkpoint file paths under dir.
func FilesIn(dir string) Files {
	return Files{
		Progress: filepath.Join(dir, "progress.json"),
		Graph:    filepath.Join(dir, "graph.json"),
		Catalog:  filepath.Join(dir, "emotions.json"),
		Stats:    filepath.Join(dir, "network_stats.json"),
	}
}

// All returns every path.
func (f Files) All() []string {
	return []string{f.Progress, f.Graph, f.Catalog, f.Stats}
}

// StatsRecorder keeps a history of flushed statistics.
type StatsRecorder interface {
	AppendStats(runID, scope string, st graph.Stats) error
}

// FileCheckpointer persists run state as JSON files, written atomically.
type FileCheckpointer struct {
	files   Files
	history StatsRecorder
	runID   string
	log     *zap.Logger
}

// NewFileCheckpointer returns a checkpointer over files. history may be nil.
func NewFileCheckpointer(files Files, history StatsRecorder, runID string, log *zap.Logger) *FileCheckpointer {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileCheckpointer{files: files, history: history, runID: runID, log: log}
}

func (c *FileCheckpointer) LoadProgress() *progress.Tree {
	return progress.LoadOrNil(c.files.Progress, c.log)
}

func (c *FileCheckpointer) LoadGraph() *graph.Graph {
	g, err := graph.Load(c.files.Graph, c.files.Catalog)
	switch {
	case err == nil:
		c.log.Info("loaded graph checkpoint",
			zap.Int("nodes", g.NumNodes()),
			zap.Int("edges", g.NumEdges()),
			zap.Int("emotions", g.Catalog().Len()))
		return g
	case errors.Is(err, os.ErrNotExist):
		c.log.Info("no graph checkpoint, starting empty", zap.String("path", c.files.Graph))
	default:
		c.log.Warn("unreadable graph checkpoint, starting empty", zap.String("path", c.files.Graph), zap.Error(err))
	}
	return graph.New()
}

func (c *FileCheckpointer) SaveProgress(t *progress.Tree) error {
	return t.Save(c.files.Progress)
}

func (c *FileCheckpointer) SaveGraph(g *graph.Graph) error {
	return g.Save(c.files.Graph, c.files.Catalog)
}

func (c *FileCheckpointer) SaveStats(scope string, st graph.Stats) error {
	if err := snapshot.WriteJSON(c.files.Stats, st); err != nil {
		return fmt.Errorf("saving network stats: %w", err)
	}
	if c.history == nil {
		return nil
	}
	if err := c.history.AppendStats(c.runID, scope, st); err != nil {
		// The JSON snapshot is authoritative; history is best effort.
		c.log.Warn("recording stats history", zap.String("scope", scope), zap.Error(err))
	}
	return nil
}

// Reset removes every checkpoint file.
func (c *FileCheckpointer) Reset() error {
	return snapshot.Remove(c.files.All()...)
}
