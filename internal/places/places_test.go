package places

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelligrit/emotion-atlas/internal/model"
)

// cityRow renders a cities15000 line with the columns the reader uses.
func cityRow(name, ascii, cc, lat, lon, pop string) string {
	f := make([]string, 19)
	f[0] = "1"
	f[cityName] = name
	f[cityASCIIName] = ascii
	f[cityLatitude] = lat
	f[cityLongitude] = lon
	f[cityCountryCode] = cc
	f[cityPopulation] = pop
	return strings.Join(f, "\t")
}

func countryRow(iso, name, pop, continent string) string {
	f := make([]string, 19)
	f[countryISO] = iso
	f[countryName] = name
	f[countryPopulation] = pop
	f[countryContinent] = continent
	return strings.Join(f, "\t")
}

var testCountries = strings.Join([]string{
	"# ISO\tISO3\t...",
	countryRow("BR", "Brazil", "210000000", "SA"),
	countryRow("AR", "Argentina", "45000000", "SA"),
	countryRow("PT", "Portugal", "10000000", "EU"),
	countryRow("ES", "Spain", "47000000", "EU"),
	countryRow("PL", "Poland", "38000000", "EU"),
	countryRow("AQ", "Antarctica", "0", "AN"),
	countryRow("NA", "Namibia", "2500000", "AF"),
}, "\n")

var testCities = strings.Join([]string{
	cityRow("São Paulo", "Sao Paulo", "BR", "-23.5", "-46.6", "12000000"),
	cityRow("Rio de Janeiro", "Rio de Janeiro", "BR", "-22.9", "-43.2", "6700000"),
	cityRow("Brasília", "Brasilia", "BR", "-15.8", "-47.9", "3000000"),
	cityRow("Campinas", "Campinas", "BR", "-22.9", "-47.06", "1100000"),
	cityRow("Buenos Aires", "Buenos Aires", "AR", "-34.6", "-58.4", "3000000"),
	cityRow("Lisbon", "Lisboa", "PT", "38.7", "-9.1", "500000"),
	cityRow("Madrid", "Madrid", "ES", "40.4", "-3.7", "3200000"),
	cityRow("Barcelona", "Barcelona", "ES", "41.4", "2.2", "1600000"),
	cityRow("Warsaw", "Warszawa", "PL", "52.2", "21.0", "1700000"),
	cityRow("Windhoek", "Windhoek", "NA", "-22.6", "17.1", "270000"),
}, "\n")

func testOptions() RankOptions {
	return RankOptions{
		CountriesPerContinent: 4,
		ContinentQuota:        map[string]int{"SA": 1},
		CitiesPerCountry:      2,
		ExcludedCountries:     []string{"PL"},
		IncludedCities:        []string{"Campinas"},
	}
}

func rankTest(t *testing.T) []model.Continent {
	t.Helper()
	countries, err := ReadCountries(strings.NewReader(testCountries))
	require.NoError(t, err)
	cities, err := ReadCities(strings.NewReader(testCities))
	require.NoError(t, err)
	return Rank(countries, cities, testOptions())
}

func TestReadCountriesKeepsNamibia(t *testing.T) {
	countries, err := ReadCountries(strings.NewReader(testCountries))
	require.NoError(t, err)
	require.Len(t, countries, 7)
	assert.Equal(t, "NA", countries[6].ISO)
	assert.Equal(t, "AF", countries[6].Continent)
}

func TestReadCitiesBadCoordinate(t *testing.T) {
	_, err := ReadCities(strings.NewReader(cityRow("X", "X", "XX", "north", "0", "1")))
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	continents := rankTest(t)

	var names []string
	for _, c := range continents {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Africa", "Europe", "South America"}, names)

	europe := continents[1]
	require.Len(t, europe.Countries, 2, "Poland is excluded")
	assert.Equal(t, "Spain", europe.Countries[0].Name)
	assert.Equal(t, "Portugal", europe.Countries[1].Name)

	sa := continents[2]
	require.Len(t, sa.Countries, 1, "quota of one country")
	brazil := sa.Countries[0]
	assert.Equal(t, "Brazil", brazil.Name)
	var cities []string
	for _, c := range brazil.Cities {
		cities = append(cities, c.Name)
	}
	assert.Equal(t, []string{"São Paulo", "Rio de Janeiro", "Campinas"}, cities)
	assert.Equal(t, int64(1100000), brazil.Cities[2].Population)
	assert.InDelta(t, -47.06, brazil.Cities[2].Longitude, 1e-9)
}

func TestRankDropsCountriesWithoutCities(t *testing.T) {
	countries := []CountryRecord{{ISO: "XX", Name: "Nowhere", Continent: "EU", Population: 5}}
	assert.Empty(t, Rank(countries, nil, testOptions()))
}

func TestRankOptionsKey(t *testing.T) {
	a := testOptions()
	b := testOptions()
	assert.Equal(t, a.Key(), b.Key())
	b.CitiesPerCountry = 3
	assert.NotEqual(t, a.Key(), b.Key())
}

type memCache struct {
	byKey  map[string][]model.Continent
	writes int
}

func (m *memCache) ReadCatalog(key string) ([]model.Continent, bool, error) {
	c, ok := m.byKey[key]
	return c, ok, nil
}

func (m *memCache) WriteCatalog(key string, c []model.Continent) error {
	m.byKey[key] = c
	m.writes++
	return nil
}

func writeFixtures(t *testing.T) (cities, countries string) {
	t.Helper()
	dir := t.TempDir()
	cities = filepath.Join(dir, "cities15000.txt")
	countries = filepath.Join(dir, "countryInfo.txt")
	require.NoError(t, os.WriteFile(cities, []byte(testCities), 0o644))
	require.NoError(t, os.WriteFile(countries, []byte(testCountries), 0o644))
	return cities, countries
}

func TestCatalogGetCaches(t *testing.T) {
	citiesPath, countriesPath := writeFixtures(t)
	cache := &memCache{byKey: map[string][]model.Continent{}}

	c := NewCatalog(citiesPath, countriesPath, testOptions(), cache, nil)
	got, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, cache.writes)

	// A fresh catalog serves the cached ranking without the source files.
	require.NoError(t, os.Remove(citiesPath))
	again, err := NewCatalog(citiesPath, countriesPath, testOptions(), cache, nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, cache.writes)
}

func TestCatalogMissingFile(t *testing.T) {
	c := NewCatalog("/nonexistent/cities.txt", "/nonexistent/countries.txt", testOptions(), nil, nil)
	_, err := c.Get(context.Background())
	assert.Error(t, err)
}
