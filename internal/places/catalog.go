package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// Cache stores ranked catalogs by key.
type Cache interface {
	ReadCatalog(key string) ([]model.Continent, bool, error)
	WriteCatalog(key string, continents []model.Continent) error
}

// Catalog ranks the GeoNames files once and serves the same result for the
// rest of the process.
type Catalog struct {
	citiesPath    string
	countriesPath string
	opts          RankOptions
	cache         Cache
	log           *zap.Logger

	once   sync.Once
	result []model.Continent
	err    error
}

// NewCatalog returns a catalog over the given GeoNames files. cache may be nil.
func NewCatalog(citiesPath, countriesPath string, opts RankOptions, cache Cache, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		citiesPath:    citiesPath,
		countriesPath: countriesPath,
		opts:          opts,
		cache:         cache,
		log:           log,
	}
}

// Key identifies the ranking options so a changed configuration is not served
// a stale cached catalog.
func (o RankOptions) Key() string {
	b, _ := json.Marshal(o)
	sum := sha256.Sum256(b)
	return "geonames:" + hex.EncodeToString(sum[:8])
}

// Get returns the ranked catalog, from cache when available.
func (c *Catalog) Get(ctx context.Context) ([]model.Continent, error) {
	c.once.Do(func() {
		c.result, c.err = c.load(ctx)
	})
	return c.result, c.err
}

func (c *Catalog) load(ctx context.Context) ([]model.Continent, error) {
	key := c.opts.Key()
	if c.cache != nil {
		cached, ok, err := c.cache.ReadCatalog(key)
		if err != nil {
			c.log.Warn("reading catalog cache", zap.Error(err))
		} else if ok && len(cached) > 0 {
			c.log.Info("loaded location catalog from cache", zap.Int("continents", len(cached)))
			return cached, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	countries, err := readFile(c.countriesPath, ReadCountries)
	if err != nil {
		return nil, err
	}
	cities, err := readFile(c.citiesPath, ReadCities)
	if err != nil {
		return nil, err
	}

	continents := Rank(countries, cities, c.opts)
	if len(continents) == 0 {
		return nil, fmt.Errorf("no cities ranked from %s", c.citiesPath)
	}
	n := 0
	for _, cont := range continents {
		for _, country := range cont.Countries {
			n += len(country.Cities)
		}
	}
	c.log.Info("ranked location catalog", zap.Int("continents", len(continents)), zap.Int("cities", n))

	if c.cache != nil {
		if err := c.cache.WriteCatalog(key, continents); err != nil {
			c.log.Warn("writing catalog cache", zap.Error(err))
		}
	}
	return continents, nil
}

func readFile[T any](path string, read func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}
