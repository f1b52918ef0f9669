package places

import (
	"slices"
	"sort"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// ContinentNames maps GeoNames continent codes to display names. Antarctica
// is absent and therefore never ranked.
var ContinentNames = map[string]string{
	"AF": "Africa",
	"AS": "Asia",
	"EU": "Europe",
	"NA": "North America",
	"OC": "Oceania",
	"SA": "South America",
}

// RankOptions selects how many countries and cities make the catalog.
type RankOptions struct {
	CountriesPerContinent int
	ContinentQuota        map[string]int
	CitiesPerCountry      int
	ExcludedCountries     []string
	IncludedCities        []string
}

// Rank builds the catalog. Per continent (ordered by code) it takes the most
// populous non-excluded countries up to the continent's quota; per country it
// takes the most populous cities plus any included city matched by name or
// ASCII name, ordered by population. Countries without cities are dropped.
func Rank(countries []CountryRecord, cities []CityRecord, opts RankOptions) []model.Continent {
	byCountry := make(map[string][]CityRecord)
	for _, c := range cities {
		byCountry[c.CountryCode] = append(byCountry[c.CountryCode], c)
	}

	ranked := make([]CountryRecord, 0, len(countries))
	for _, c := range countries {
		if _, ok := ContinentNames[c.Continent]; !ok {
			continue
		}
		if slices.Contains(opts.ExcludedCountries, c.ISO) {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Population > ranked[j].Population })

	codes := make([]string, 0, len(ContinentNames))
	for code := range ContinentNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []model.Continent
	for _, code := range codes {
		quota := opts.CountriesPerContinent
		if q, ok := opts.ContinentQuota[code]; ok {
			quota = q
		}
		cont := model.Continent{Name: ContinentNames[code]}
		taken := 0
		for _, c := range ranked {
			if taken >= quota {
				break
			}
			if c.Continent != code {
				continue
			}
			taken++
			selected := selectCities(byCountry[c.ISO], opts.CitiesPerCountry, opts.IncludedCities)
			if len(selected) == 0 {
				continue
			}
			cont.Countries = append(cont.Countries, model.Country{Name: c.Name, Cities: selected})
		}
		if len(cont.Countries) > 0 {
			out = append(out, cont)
		}
	}
	return out
}

func selectCities(cities []CityRecord, n int, included []string) []model.City {
	sorted := slices.Clone(cities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Population > sorted[j].Population })

	var picked []CityRecord
	seen := make(map[string]bool)
	add := func(c CityRecord) {
		if seen[c.Name] {
			return
		}
		seen[c.Name] = true
		picked = append(picked, c)
	}
	for _, c := range sorted {
		if slices.Contains(included, c.Name) || slices.Contains(included, c.ASCIIName) {
			add(c)
		}
	}
	for i := 0; i < n && i < len(sorted); i++ {
		add(sorted[i])
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Population > picked[j].Population })

	out := make([]model.City, len(picked))
	for i, c := range picked {
		out[i] = model.City{Name: c.Name, Latitude: c.Latitude, Longitude: c.Longitude, Population: c.Population}
	}
	return out
}
