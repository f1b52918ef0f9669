package progress

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/model"
	"github.com/intelligrit/emotion-atlas/internal/snapshot"
)

// Synthesize builds a fresh tree from the catalog with every node not done
// and no attractions below city level.
func Synthesize(catalog []model.Continent) *Tree {
	t := &Tree{Continents: []*Continent{}}
	merge(t, catalog)
	return t
}

// Reconcile prepares prior (or a fresh tree when prior is nil) for a run:
// catalog entries missing from the tree are appended, reopening their
// ancestors, and every attraction without reviews is reopened together with
// its city, country and continent. Reconcile mutates and returns prior.
// Running it twice with the same catalog yields the same tree.
func Reconcile(prior *Tree, catalog []model.Continent, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	if prior == nil {
		return Synthesize(catalog)
	}
	if prior.Continents == nil {
		prior.Continents = []*Continent{}
	}
	merge(prior, catalog)

	for _, cont := range prior.Continents {
		for _, country := range cont.Countries {
			for _, city := range country.Cities {
				for _, a := range city.Attractions {
					if len(a.Reviews) > 0 {
						continue
					}
					log.Info("attraction has no reviews, reopening",
						zap.String("attraction", a.Name),
						zap.String("city", city.Name),
						zap.String("country", country.Name),
						zap.String("continent", cont.Name))
					a.Done = false
					city.Done = false
					country.Done = false
					cont.Done = false
				}
			}
		}
	}
	return prior
}

// merge appends catalog entries the tree does not know yet. A parent that
// gains a new child is no longer complete, so it and its ancestors reopen.
func merge(t *Tree, catalog []model.Continent) {
	for _, cc := range catalog {
		cont, _ := t.UpsertContinent(cc.Name)
		for _, kc := range cc.Countries {
			country, created := cont.UpsertCountry(kc.Name)
			if created {
				cont.Done = false
			}
			for _, city := range kc.Cities {
				if _, created := country.UpsertCity(city.Name); created {
					country.Done = false
					cont.Done = false
				}
			}
		}
	}
}

// Load reads a tree written by Save. A file with null entries in any child
// list is reported as snapshot.ErrCorrupt.
func Load(path string) (*Tree, error) {
	var t Tree
	if err := snapshot.ReadJSON(path, &t); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", snapshot.ErrCorrupt, path, err)
	}
	return &t, nil
}

func (t *Tree) validate() error {
	for i, cont := range t.Continents {
		if cont == nil {
			return fmt.Errorf("null continent at index %d", i)
		}
		for j, country := range cont.Countries {
			if country == nil {
				return fmt.Errorf("null country at index %d in %s", j, cont.Name)
			}
			for k, city := range country.Cities {
				if city == nil {
					return fmt.Errorf("null city at index %d in %s", k, country.Name)
				}
				for m, a := range city.Attractions {
					if a == nil {
						return fmt.Errorf("null attraction at index %d in %s", m, city.Name)
					}
					for n, r := range a.Reviews {
						if r == nil {
							return fmt.Errorf("null review at index %d in %s", n, a.ID)
						}
					}
				}
			}
		}
	}
	return nil
}

// LoadOrNil reads the tree at path, returning nil when the file is missing or
// corrupt so the caller synthesizes a fresh one.
func LoadOrNil(path string, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	t, err := Load(path)
	switch {
	case err == nil:
		return t
	case errors.Is(err, os.ErrNotExist):
		log.Info("no progress checkpoint, starting fresh", zap.String("path", path))
	default:
		log.Warn("unreadable progress checkpoint, starting fresh", zap.String("path", path), zap.Error(err))
	}
	return nil
}

// Save writes the tree atomically.
func (t *Tree) Save(path string) error {
	if err := snapshot.WriteJSON(path, t); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}
