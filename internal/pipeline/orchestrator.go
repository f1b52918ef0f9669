package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/metrics"
	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/progress"
)

// State is the lifecycle state of an Orchestrator.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is how a walk ended.
type Outcome int

const (
	Completed Outcome = iota
	Interrupted
)

func (o Outcome) String() string {
	if o == Interrupted {
		return "interrupted"
	}
	return "completed"
}

// DefaultMaxAttractions is the number of attractions requested per city.
const DefaultMaxAttractions = 15

// Orchestrator owns the progress tree and graph for one run and is their only
// writer.
type Orchestrator struct {
	c              Collaborators
	cp             Checkpointer
	log            *zap.Logger
	metrics        *metrics.Metrics
	shouldStop     func() bool
	maxAttractions int
	now            func() time.Time

	state State
	tree  *progress.Tree
	graph *graph.Graph
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records run counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithStop sets the function polled after each attraction; returning true
// ends the walk gracefully.
func WithStop(fn func() bool) Option {
	return func(o *Orchestrator) { o.shouldStop = fn }
}

// WithMaxAttractions sets how many attractions are requested per city.
func WithMaxAttractions(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttractions = n
		}
	}
}

// WithClock overrides time.Now for elapsed-time logging.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New returns an idle orchestrator.
func New(c Collaborators, cp Checkpointer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		c:              c,
		cp:             cp,
		log:            zap.NewNop(),
		shouldStop:     func() bool { return false },
		maxAttractions: DefaultMaxAttractions,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Tree returns the progress tree of the current or last run.
func (o *Orchestrator) Tree() *progress.Tree { return o.tree }

// Graph returns the graph of the current or last run.
func (o *Orchestrator) Graph() *graph.Graph { return o.graph }

// Run reconciles the saved progress against the catalog, walks every
// unfinished unit and finalizes. Per-unit failures are logged and left for
// the next run; the returned error only reports startup or persistence
// failures. Finalization runs on both completion and interruption.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	if o.state == StateRunning {
		return Completed, errors.New("orchestrator already running")
	}
	start := o.now()

	catalog, err := o.c.Catalog.Get(ctx)
	if err != nil {
		return Completed, fmt.Errorf("loading location catalog: %w", err)
	}

	o.state = StateRunning
	o.tree = progress.Reconcile(o.cp.LoadProgress(), catalog, o.log)
	o.graph = o.cp.LoadGraph()
	o.metrics.SetGraphSize(o.graph.NumNodes(), o.graph.NumEdges())
	o.log.Info("pipeline started",
		zap.Int("continents", len(catalog)),
		zap.Int("graph_nodes", o.graph.NumNodes()),
		zap.Int("graph_edges", o.graph.NumEdges()))

	outcome := o.walk(ctx, catalog)
	if outcome == Interrupted {
		o.state = StateInterrupted
		o.log.Info("pipeline interrupted, saving and exiting")
	} else {
		o.state = StateCompleted
		o.log.Info("pipeline completed")
	}

	return outcome, o.finalize(start)
}

// finalize persists the tree, the graph with its catalog and the statistics.
// Every write is attempted even if an earlier one fails.
func (o *Orchestrator) finalize(start time.Time) error {
	var errs []error
	if err := o.cp.SaveProgress(o.tree); err != nil {
		o.log.Error("saving progress", zap.Error(err))
		errs = append(errs, err)
	}
	if err := o.cp.SaveGraph(o.graph); err != nil {
		o.log.Error("saving graph", zap.Error(err))
		errs = append(errs, err)
	}
	if err := o.cp.SaveStats("final", o.graph.Stats()); err != nil {
		o.log.Error("saving network stats", zap.Error(err))
		errs = append(errs, err)
	}
	o.log.Info("run finished",
		zap.Duration("elapsed", o.now().Sub(start)),
		zap.Int("graph_nodes", o.graph.NumNodes()),
		zap.Int("graph_edges", o.graph.NumEdges()))
	return errors.Join(errs...)
}

// stopRequested is polled after each processed attraction.
func (o *Orchestrator) stopRequested(ctx context.Context) bool {
	return o.shouldStop() || ctx.Err() != nil
}

func (o *Orchestrator) walk(ctx context.Context, catalog []model.Continent) Outcome {
	for _, cc := range catalog {
		cont, _ := o.tree.UpsertContinent(cc.Name)
		if cont.IsDone() {
			o.log.Debug("skipping completed continent", zap.String("continent", cc.Name))
			continue
		}
		for _, kc := range cc.Countries {
			country, _ := cont.UpsertCountry(kc.Name)
			if country.IsDone() {
				o.log.Debug("skipping completed country", zap.String("country", kc.Name))
				continue
			}
			for _, city := range kc.Cities {
				node, _ := country.UpsertCity(city.Name)
				if node.IsDone() {
					o.log.Debug("skipping completed city", zap.String("city", city.Name))
					continue
				}
				labels := model.LocationLabels{Continent: cc.Name, Country: kc.Name, City: city.Name}
				outcome, found := o.walkCity(ctx, labels, city, node)
				if outcome == Interrupted {
					return Interrupted
				}
				if found && node.MarkDone() {
					o.log.Info("finished city", zap.String("city", city.Name), zap.String("country", kc.Name))
				}
			}
			if country.MarkDone() {
				o.log.Info("finished country", zap.String("country", kc.Name))
				o.flushCountry(kc.Name)
			}
		}
		if cont.MarkDone() {
			o.log.Info("finished continent", zap.String("continent", cc.Name))
		}
	}
	return Completed
}

// flushCountry writes the graph and statistics as a partial checkpoint once a
// country completes. The progress tree is only written at finalization.
func (o *Orchestrator) flushCountry(country string) {
	if err := o.cp.SaveGraph(o.graph); err != nil {
		o.log.Error("saving graph after country", zap.String("country", country), zap.Error(err))
	}
	if err := o.cp.SaveStats("country:"+country, o.graph.Stats()); err != nil {
		o.log.Error("saving network stats after country", zap.String("country", country), zap.Error(err))
	}
}

// walkCity processes the attractions around one city. found is false when
// the lookup failed or returned nothing, in which case the city stays open.
func (o *Orchestrator) walkCity(ctx context.Context, labels model.LocationLabels, city model.City, node *progress.City) (outcome Outcome, found bool) {
	log := o.log.With(zap.String("city", city.Name), zap.String("country", labels.Country))
	log.Info("processing city")

	places, err := o.c.Attractions.NearbyAttractions(ctx, city, o.maxAttractions)
	if err != nil {
		log.Warn("finding attractions failed, city left open", zap.Error(err))
		o.metrics.Failure(metrics.StageAttractions)
		return o.outcome(ctx), false
	}
	if len(places) == 0 {
		log.Warn("no attractions found, city left open")
		return o.outcome(ctx), false
	}
	log.Info("found attractions", zap.Int("count", len(places)))

	for _, place := range places {
		a, _ := node.UpsertAttraction(place.ID, place.DisplayName)
		if a.Resumable() {
			log.Debug("skipping completed attraction", zap.String("attraction", place.DisplayName))
			continue
		}
		o.processAttraction(ctx, log, labels, place, a)
		if o.stopRequested(ctx) {
			return Interrupted, true
		}
	}
	return Completed, true
}

func (o *Orchestrator) outcome(ctx context.Context) Outcome {
	if o.stopRequested(ctx) {
		return Interrupted
	}
	return Completed
}

// processAttraction applies every unfinished review. The attraction is marked
// done only when all of its reviews are.
func (o *Orchestrator) processAttraction(ctx context.Context, log *zap.Logger, labels model.LocationLabels, place model.Place, a *progress.Attraction) {
	log = log.With(zap.String("attraction", place.DisplayName), zap.String("attraction_id", place.ID))

	reviews, err := o.c.Reviews.Fetch(ctx, place)
	if err != nil {
		log.Warn("fetching reviews failed, attraction left open", zap.Error(err))
		o.metrics.Failure(metrics.StageReviews)
		return
	}

	failed := 0
	for _, r := range reviews {
		rs, _ := a.UpsertReview(r.ID)
		if rs.IsDone() {
			log.Debug("skipping completed review", zap.String("review", r.ID))
			continue
		}
		if stage, err := o.processReview(ctx, labels, place, r); err != nil {
			failed++
			log.Warn("review failed, left open", zap.String("review", r.ID), zap.String("stage", stage), zap.Error(err))
			o.metrics.Failure(stage)
			continue
		}
		rs.MarkDone()
		o.metrics.ReviewDone()
	}
	o.metrics.SetGraphSize(o.graph.NumNodes(), o.graph.NumEdges())

	if a.MarkDone() {
		o.metrics.AttractionDone()
		log.Info("finished attraction", zap.Int("reviews", len(reviews)))
		return
	}
	log.Warn("attraction left open", zap.Int("reviews", len(reviews)), zap.Int("failed", failed))
}

// processReview classifies every adjective of the review before recording
// anything, so a review either contributes all of its observations or none.
func (o *Orchestrator) processReview(ctx context.Context, labels model.LocationLabels, place model.Place, r model.Review) (stage string, err error) {
	var pending []graph.Observation
	for _, sentence := range o.c.Splitter.Split(r.Text) {
		adjectives := o.c.Adjectives.Extract(sentence)
		if len(adjectives) == 0 {
			continue
		}
		score := o.c.Sentiment.Score(sentence)
		for _, adj := range adjectives {
			adj = strings.TrimSpace(adj)
			if adj == "" {
				continue
			}
			emotion, err := o.c.Classifier.Classify(ctx, adj)
			if err != nil {
				return metrics.StageClassify, fmt.Errorf("classifying %q: %w", adj, err)
			}
			associated := emotion
			l := labels
			pending = append(pending, graph.Observation{
				Attraction:        place,
				EmotionName:       adj,
				EmotionType:       model.EmotionAdjective,
				Sentiment:         score.Compound,
				Rating:            r.Rating,
				AssociatedEmotion: &associated,
				Date:              r.Date,
				Labels:            &l,
			})
		}
	}

	for i, obs := range pending {
		if err := o.graph.RecordObservation(obs); err != nil {
			if i > 0 {
				o.log.Error("review partially recorded", zap.String("review", r.ID), zap.Int("recorded", i))
			}
			return metrics.StageRecord, err
		}
		o.metrics.Observation()
	}
	return "", nil
}
