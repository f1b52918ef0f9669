// Package progress tracks pipeline completion per continent, country, city,
// attraction and review so an interrupted run resumes where it left off.
//
// Children are matched across runs by key (name or id), never by position,
// and are only ever appended. A parent may be marked done only once every
// child it has at that moment is done.
package progress

// Review is the completion flag of one review.
type Review struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
}

// Attraction tracks the reviews of one attraction.
type Attraction struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Done    bool      `json:"done"`
	Reviews []*Review `json:"reviews"`
}

// City tracks the attractions discovered in one city.
type City struct {
	Name        string        `json:"name"`
	Done        bool          `json:"done"`
	Attractions []*Attraction `json:"attractions"`
}

// Country tracks its cities.
type Country struct {
	Name   string  `json:"name"`
	Done   bool    `json:"done"`
	Cities []*City `json:"cities"`
}

// Continent tracks its countries.
type Continent struct {
	Name      string     `json:"name"`
	Done      bool       `json:"done"`
	Countries []*Country `json:"countries"`
}

// Tree is the root of the progress hierarchy.
type Tree struct {
	Continents []*Continent `json:"continents"`
}

// upsert finds the child with the given key or appends a new one.
func upsert[T any](items *[]*T, key func(*T) string, k string, mk func() *T) (*T, bool) {
	for _, it := range *items {
		if key(it) == k {
			return it, false
		}
	}
	it := mk()
	*items = append(*items, it)
	return it, true
}

// UpsertContinent returns the continent named name, appending it if absent.
func (t *Tree) UpsertContinent(name string) (*Continent, bool) {
	return upsert(&t.Continents, func(c *Continent) string { return c.Name }, name,
		func() *Continent { return &Continent{Name: name, Countries: []*Country{}} })
}

// UpsertCountry returns the country named name, appending it if absent.
func (c *Continent) UpsertCountry(name string) (*Country, bool) {
	return upsert(&c.Countries, func(k *Country) string { return k.Name }, name,
		func() *Country { return &Country{Name: name, Cities: []*City{}} })
}

// UpsertCity returns the city named name, appending it if absent.
func (k *Country) UpsertCity(name string) (*City, bool) {
	return upsert(&k.Cities, func(c *City) string { return c.Name }, name,
		func() *City { return &City{Name: name, Attractions: []*Attraction{}} })
}

// UpsertAttraction returns the attraction with the given id, appending it if
// absent. The stored name is not updated for existing attractions.
func (c *City) UpsertAttraction(id, name string) (*Attraction, bool) {
	return upsert(&c.Attractions, func(a *Attraction) string { return a.ID }, id,
		func() *Attraction { return &Attraction{ID: id, Name: name, Reviews: []*Review{}} })
}

// UpsertReview returns the review with the given id, appending it if absent.
func (a *Attraction) UpsertReview(id string) (*Review, bool) {
	return upsert(&a.Reviews, func(r *Review) string { return r.ID }, id,
		func() *Review { return &Review{ID: id} })
}

// IsDone reports whether the review has been applied to the graph.
func (r *Review) IsDone() bool { return r.Done }

// MarkDone marks the review applied.
func (r *Review) MarkDone() { r.Done = true }

// IsDone reports the attraction's flag.
func (a *Attraction) IsDone() bool { return a.Done }

// Resumable reports whether the attraction can be skipped: it is done and has
// at least one review.
func (a *Attraction) Resumable() bool { return a.Done && len(a.Reviews) > 0 }

// MarkDone marks the attraction done if all of its reviews are. It reports
// whether the attraction is now done.
func (a *Attraction) MarkDone() bool {
	for _, r := range a.Reviews {
		if !r.Done {
			return false
		}
	}
	a.Done = true
	return true
}

// IsDone reports the city's flag.
func (c *City) IsDone() bool { return c.Done }

// MarkDone marks the city done if all of its attractions are.
func (c *City) MarkDone() bool {
	for _, a := range c.Attractions {
		if !a.Done {
			return false
		}
	}
	c.Done = true
	return true
}

// IsDone reports the country's flag.
func (k *Country) IsDone() bool { return k.Done }

// MarkDone marks the country done if all of its cities are.
func (k *Country) MarkDone() bool {
	for _, c := range k.Cities {
		if !c.Done {
			return false
		}
	}
	k.Done = true
	return true
}

// IsDone reports the continent's flag.
func (c *Continent) IsDone() bool { return c.Done }

// MarkDone marks the continent done if all of its countries are.
func (c *Continent) MarkDone() bool {
	for _, k := range c.Countries {
		if !k.Done {
			return false
		}
	}
	c.Done = true
	return true
}
