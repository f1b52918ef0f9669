// Package placesapi finds tourist attractions around a city with the Places
// API nearby search.
package placesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/ratelimit"
	"github.com/intelligrit/emotion-atlas/internal/retry"
)

// DefaultBaseURL is the Places API (New) endpoint.
const DefaultBaseURL = "https://places.googleapis.com/v1"

// Cache stores search results per city key and result limit.
type Cache interface {
	ReadNearby(city string, maxResults int) ([]model.Place, bool, error)
	WriteNearby(city string, maxResults int, places []model.Place) error
}

// Client searches each attraction Group around a city concurrently.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	limiter  *ratelimit.Limiter
	retry    *retry.Executor
	cache    Cache
	workers  int
	perGroup int
	radius   float64
	shuffle  func([]model.Place)
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option    { return func(cl *Client) { cl.http = c } }
func WithLimiter(l *ratelimit.Limiter) Option { return func(cl *Client) { cl.limiter = l } }
func WithRetry(e *retry.Executor) Option      { return func(cl *Client) { cl.retry = e } }
func WithCache(c Cache) Option                { return func(cl *Client) { cl.cache = c } }

// WithWorkers bounds how many group searches run at once.
func WithWorkers(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.workers = n
		}
	}
}

// WithPerGroupLimit sets maxResultCount for each group search (1 to 20).
func WithPerGroupLimit(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.perGroup = n
		}
	}
}

// WithRadius sets the search circle radius in meters.
func WithRadius(m float64) Option {
	return func(cl *Client) {
		if m > 0 {
			cl.radius = m
		}
	}
}

// WithShuffle replaces the random shuffle applied before truncation.
func WithShuffle(fn func([]model.Place)) Option { return func(cl *Client) { cl.shuffle = fn } }

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, log *zap.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		workers:  4,
		perGroup: 20,
		radius:   10000,
		shuffle: func(p []model.Place) {
			rand.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
		},
		log: log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CityKey identifies a city in the cache. Coordinates disambiguate cities
// that share a name.
func CityKey(city model.City) string {
	return fmt.Sprintf("%s@%.4f,%.4f", city.Name, city.Latitude, city.Longitude)
}

// NearbyAttractions returns up to maxResults attractions around city. Groups
// that fail are logged and skipped; the call fails only when every group
// does. Results are cached only when every group succeeded and something was
// found.
func (c *Client) NearbyAttractions(ctx context.Context, city model.City, maxResults int) ([]model.Place, error) {
	key := CityKey(city)
	log := c.log.With(zap.String("city", city.Name))

	if c.cache != nil {
		cached, ok, err := c.cache.ReadNearby(key, maxResults)
		if err != nil {
			log.Warn("reading attraction cache", zap.Error(err))
		} else if ok && len(cached) > 0 {
			log.Debug("attractions from cache", zap.Int("count", len(cached)))
			return cached, nil
		}
	}

	results := make([][]model.Place, len(Groups))
	errs := make([]error, len(Groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, group := range Groups {
		g.Go(func() error {
			places, err := c.searchGroup(gctx, city, group)
			if err != nil {
				log.Warn("attraction search failed", zap.String("group", group.Name), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", group.Name, err)
				return nil
			}
			results[i] = places
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(Groups) {
		return nil, fmt.Errorf("searching attractions near %s: %w", city.Name, errors.Join(errs...))
	}

	places := merge(results)
	c.shuffle(places)
	if maxResults > 0 && len(places) > maxResults {
		places = places[:maxResults]
	}
	log.Info("found nearby attractions", zap.Int("count", len(places)), zap.Int("failed_groups", failed))

	if c.cache != nil && failed == 0 && len(places) > 0 {
		if err := c.cache.WriteNearby(key, maxResults, places); err != nil {
			log.Warn("writing attraction cache", zap.Error(err))
		}
	}
	return places, nil
}

// merge deduplicates by place id in group order, collecting the categories
// of every group a place was found in.
func merge(results [][]model.Place) []model.Place {
	var out []model.Place
	index := make(map[string]int)
	for _, group := range results {
		for _, p := range group {
			if p.ID == "" {
				continue
			}
			if i, ok := index[p.ID]; ok {
				for _, cat := range p.Categories {
					if !slices.Contains(out[i].Categories, cat) {
						out[i].Categories = append(out[i].Categories, cat)
					}
				}
				continue
			}
			index[p.ID] = len(out)
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) searchGroup(ctx context.Context, city model.City, group Group) ([]model.Place, error) {
	body, err := json.Marshal(searchRequest{
		IncludedTypes:  group.Types,
		MaxResultCount: c.perGroup,
		RankPreference: "POPULARITY",
		LocationRestriction: locationRestriction{Circle: circle{
			Center: latLng{Latitude: city.Latitude, Longitude: city.Longitude},
			Radius: c.radius,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	search := func(ctx context.Context) ([]model.Place, error) {
		return c.post(ctx, body, group.Name)
	}
	if c.retry == nil {
		return search(ctx)
	}
	return retry.Execute(ctx, c.retry, search)
}

func (c *Client) post(ctx context.Context, body []byte, group string) ([]model.Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nearby search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var sr searchResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	places := make([]model.Place, 0, len(sr.Places))
	for _, p := range sr.Places {
		places = append(places, p.toModel(group))
	}
	return places, nil
}
