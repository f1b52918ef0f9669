// Package scraper fetches attraction reviews from their public review pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/ratelimit"
	"github.com/intelligrit/emotion-atlas/internal/retry"
)

// Cache stores reviews per place id.
type Cache interface {
	ReadReviews(placeID string) ([]model.Review, bool, error)
	WriteReviews(placeID string, reviews []model.Review) error
}

// Source scrapes reviews from a place's Maps page.
type Source struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	retry     *retry.Executor
	cache     Cache
	language  string
	userAgent string
	now       func() time.Time
	log       *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

func WithHTTPClient(c *http.Client) Option    { return func(s *Source) { s.client = c } }
func WithLimiter(l *ratelimit.Limiter) Option { return func(s *Source) { s.limiter = l } }
func WithRetry(e *retry.Executor) Option      { return func(s *Source) { s.retry = e } }
func WithCache(c Cache) Option                { return func(s *Source) { s.cache = c } }
func WithLanguage(lang string) Option         { return func(s *Source) { s.language = lang } }
func WithUserAgent(ua string) Option          { return func(s *Source) { s.userAgent = ua } }
func WithClock(now func() time.Time) Option   { return func(s *Source) { s.now = now } }

// NewSource returns a Source. Without WithRetry a failed fetch is not retried.
func NewSource(log *zap.Logger, opts ...Option) *Source {
	s := &Source{
		client:   &http.Client{Timeout: 60 * time.Second},
		language: "en",
		now:      time.Now,
		log:      log,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fetch returns the reviews of place, from cache when available. Empty
// results are not cached so the next run tries again.
func (s *Source) Fetch(ctx context.Context, place model.Place) ([]model.Review, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.ReadReviews(place.ID)
		if err != nil {
			s.log.Warn("reading review cache", zap.String("place_id", place.ID), zap.Error(err))
		} else if ok && len(cached) > 0 {
			s.log.Debug("reviews from cache", zap.String("place_id", place.ID), zap.Int("count", len(cached)))
			return cached, nil
		}
	}

	pageURL, err := s.reviewURL(place)
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	fetch := func(ctx context.Context) error {
		var err error
		reviews, err = s.scrape(ctx, pageURL)
		return err
	}
	if s.retry != nil {
		err = s.retry.Do(ctx, fetch)
	} else {
		err = fetch(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("scraping reviews for %s: %w", place.DisplayName, err)
	}

	s.log.Info("scraped reviews", zap.String("place", place.DisplayName), zap.Int("count", len(reviews)))
	if s.cache != nil && len(reviews) > 0 {
		if err := s.cache.WriteReviews(place.ID, reviews); err != nil {
			s.log.Warn("writing review cache", zap.String("place_id", place.ID), zap.Error(err))
		}
	}
	return reviews, nil
}

func (s *Source) reviewURL(place model.Place) (string, error) {
	if place.GoogleMapsURI == "" {
		return "", fmt.Errorf("place %s has no maps url", place.ID)
	}
	u, err := url.Parse(place.GoogleMapsURI)
	if err != nil {
		return "", fmt.Errorf("parsing maps url for %s: %w", place.ID, err)
	}
	q := u.Query()
	q.Set("hl", s.language)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Source) scrape(ctx context.Context, pageURL string) ([]model.Review, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept-Language", s.language)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching review page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &retry.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing review page HTML: %w", err)
	}
	return ParseReviews(doc, s.now()), nil
}

// NeutralRating stands in for a review whose star label is missing or
// unreadable. It leaves the adequacy weight at its midpoint.
const NeutralRating = 3

// ParseReviews extracts the reviews of a review page. Nested elements that
// repeat a review's id are ignored, as are duplicate ids.
func ParseReviews(doc *goquery.Document, now time.Time) []model.Review {
	var reviews []model.Review
	seen := make(map[string]bool)

	doc.Find("[data-review-id]").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered("[data-review-id]").Length() > 0 {
			return
		}
		id, _ := sel.Attr("data-review-id")
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		r := model.Review{
			ID:     id,
			Text:   strings.TrimSpace(sel.Find(".wiI7pd").First().Text()),
			Date:   ResolveRelativeDate(sel.Find(".rsqaWe").First().Text(), now),
			Rating: NeutralRating,
		}
		sel.Find("[role=img][aria-label]").EachWithBreak(func(_ int, star *goquery.Selection) bool {
			label, _ := star.Attr("aria-label")
			if rating, ok := ParseRating(label); ok {
				r.Rating = rating
				return false
			}
			return true
		})
		reviews = append(reviews, r)
	})
	return reviews
}

var ratingRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*stars?`)

// ParseRating reads a star rating from an aria label such as "4 stars".
func ParseRating(label string) (float64, bool) {
	m := ratingRe.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || v < 0 || v > 5 {
		return 0, false
	}
	return v, true
}

var relativeRe = regexp.MustCompile(`(?i)\b(a|an|one|\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago\b`)

var errNoDate = errors.New("no relative date")

// ResolveRelativeDate turns labels like "3 weeks ago" or "Edited a year ago"
// into a YYYY-MM-DD date relative to now. Unrecognized labels yield "".
func ResolveRelativeDate(label string, now time.Time) string {
	t, err := resolve(label, now)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func resolve(label string, now time.Time) (time.Time, error) {
	m := relativeRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return time.Time{}, errNoDate
	}
	n := 1
	if v, err := strconv.Atoi(m[1]); err == nil {
		n = v
	}
	switch strings.ToLower(m[2]) {
	case "second":
		return now.Add(-time.Duration(n) * time.Second), nil
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), nil
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), nil
	case "day":
		return now.AddDate(0, 0, -n), nil
	case "week":
		return now.AddDate(0, 0, -7*n), nil
	case "month":
		return now.AddDate(0, -n, 0), nil
	case "year":
		return now.AddDate(-n, 0, 0), nil
	}
	return time.Time{}, errNoDate
}
