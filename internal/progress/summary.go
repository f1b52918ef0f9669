package progress

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotFound is returned by Open when no checkpoint has been written yet.
var ErrNotFound = errors.New("progress checkpoint not found")

// Open loads the checkpoint at path for read-only consumers such as the
// status command and the web API.
func Open(path string) (*Tree, error) {
	t, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return t, err
}

// Counts is a done/total pair.
type Counts struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func (c *Counts) add(done bool) {
	c.Total++
	if done {
		c.Done++
	}
}

// ContinentSummary aggregates completion below one continent.
type ContinentSummary struct {
	Name        string `json:"name"`
	Done        bool   `json:"done"`
	Countries   Counts `json:"countries"`
	Cities      Counts `json:"cities"`
	Attractions Counts `json:"attractions"`
	Reviews     Counts `json:"reviews"`
}

// Summary aggregates completion over the whole tree.
type Summary struct {
	Continents  []ContinentSummary `json:"continents"`
	Countries   Counts             `json:"countries"`
	Cities      Counts             `json:"cities"`
	Attractions Counts             `json:"attractions"`
	Reviews     Counts             `json:"reviews"`
}

// Summarize counts done and total nodes at every level.
func (t *Tree) Summarize() Summary {
	s := Summary{Continents: []ContinentSummary{}}
	for _, cont := range t.Continents {
		cs := ContinentSummary{Name: cont.Name, Done: cont.Done}
		for _, country := range cont.Countries {
			cs.Countries.add(country.Done)
			for _, city := range country.Cities {
				cs.Cities.add(city.Done)
				for _, a := range city.Attractions {
					cs.Attractions.add(a.Done)
					for _, r := range a.Reviews {
						cs.Reviews.add(r.Done)
					}
				}
			}
		}
		s.Continents = append(s.Continents, cs)
		s.Countries = s.Countries.plus(cs.Countries)
		s.Cities = s.Cities.plus(cs.Cities)
		s.Attractions = s.Attractions.plus(cs.Attractions)
		s.Reviews = s.Reviews.plus(cs.Reviews)
	}
	return s
}

func (c Counts) plus(o Counts) Counts {
	return Counts{Done: c.Done + o.Done, Total: c.Total + o.Total}
}
