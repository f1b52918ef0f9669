package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/classifier"
	"github.com/intelligrit/emotion-atlas/internal/metrics"
	"github.com/intelligrit/emotion-atlas/internal/pipeline"
	"github.com/intelligrit/emotion-atlas/internal/places"
	"github.com/intelligrit/emotion-atlas/internal/placesapi"
	"github.com/intelligrit/emotion-atlas/internal/ratelimit"
	"github.com/intelligrit/emotion-atlas/internal/retry"
	"github.com/intelligrit/emotion-atlas/internal/scraper"
	"github.com/intelligrit/emotion-atlas/internal/sentiment"
	"github.com/intelligrit/emotion-atlas/internal/store"
)

// runPipeline wires the collaborators and runs the orchestrator once. A
// graceful interrupt is a successful run; only startup and save failures are
// errors.
func runPipeline(ctx context.Context) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := log.With(zap.String("run_id", runID))

	s, err := store.New(dataDir)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SetMeta("last_run_id", runID); err != nil {
		log.Warn("recording run id", zap.Error(err))
	}

	m := metrics.New()
	if metricsAddr != "" {
		stopMetrics := serveMetrics(m, log)
		defer stopMetrics()
	}

	policy := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay.Duration,
		MaxJitter:  cfg.Retry.MaxJitter.Duration,
	}
	exec := retry.New(policy, log, retry.OnRetry(func(int, time.Duration, error) { m.Retry() }))

	provider, err := classifier.NewProvider(cfg.Classifier.Provider, cfg.ClassifierAPIKey(),
		cfg.Classifier.Model, cfg.Classifier.BaseURL, cfg.Classifier.MaxTokens)
	if err != nil {
		return err
	}

	collab := pipeline.Collaborators{
		Catalog: places.NewCatalog(cfg.Catalog.CitiesFile, cfg.Catalog.CountryInfoFile, places.RankOptions{
			CountriesPerContinent: cfg.Catalog.CountriesPerContinent,
			ContinentQuota:        cfg.Catalog.ContinentQuota,
			CitiesPerCountry:      cfg.Catalog.CitiesPerCountry,
			ExcludedCountries:     cfg.Catalog.ExcludedCountries,
			IncludedCities:        cfg.Catalog.IncludedCities,
		}, s, log),
		Attractions: placesapi.NewClient(cfg.Places.BaseURL, cfg.PlacesAPIKey(), log,
			placesapi.WithCache(s),
			placesapi.WithRetry(exec),
			placesapi.WithLimiter(ratelimit.New(cfg.Places.RateLimit, cfg.Places.Workers)),
			placesapi.WithWorkers(cfg.Places.Workers),
			placesapi.WithPerGroupLimit(cfg.Places.PerGroupLimit),
			placesapi.WithRadius(cfg.Places.RadiusMeters)),
		Reviews: scraper.NewSource(log,
			scraper.WithCache(s),
			scraper.WithRetry(exec),
			scraper.WithLimiter(ratelimit.New(cfg.Scrape.RateLimit, 1)),
			scraper.WithLanguage(cfg.Scrape.Language),
			scraper.WithUserAgent(cfg.Scrape.UserAgent)),
		Splitter:   sentiment.NewSplitter(log),
		Adjectives: sentiment.NewAdjectiveExtractor(log),
		Sentiment:  sentiment.NewLexiconScorer(),
		Classifier: classifier.NewCached(provider, s, exec, log),
	}

	cp := pipeline.NewFileCheckpointer(pipeline.FilesIn(dataDir), s, runID, log)

	intr := pipeline.NewInterrupter(log, nil)
	stopListening := intr.Listen(ctx)
	defer stopListening()

	o := pipeline.New(collab, cp,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
		pipeline.WithStop(intr.ShouldStop),
		pipeline.WithMaxAttractions(cfg.Places.MaxResults))

	outcome, err := o.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("run ended", zap.Stringer("outcome", outcome))
	return nil
}

// serveMetrics exposes m on metricsAddr for the duration of the run.
func serveMetrics(m *metrics.Metrics, log *zap.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("url", fmt.Sprintf("http://%s/metrics", metricsAddr)))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// resetState removes every checkpoint file and empties the caches.
func resetState() error {
	cp := pipeline.NewFileCheckpointer(pipeline.FilesIn(dataDir), nil, "", log)
	if err := cp.Reset(); err != nil {
		return fmt.Errorf("removing checkpoints: %w", err)
	}

	s, err := store.New(dataDir)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Reset(); err != nil {
		return fmt.Errorf("clearing caches: %w", err)
	}
	log.Info("reset complete", zap.String("data_dir", dataDir))
	return nil
}
