// Package places builds the location catalog: the most populous cities of the
// most populous countries of each continent, ranked from GeoNames dumps.
package places

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CityRecord is one row of a GeoNames cities dump.
type CityRecord struct {
	Name        string
	ASCIIName   string
	CountryCode string
	Latitude    float64
	Longitude   float64
	Population  int64
}

// CountryRecord is one row of GeoNames countryInfo.txt.
type CountryRecord struct {
	ISO        string
	Name       string
	Continent  string
	Population int64
}

// cities15000.txt columns.
const (
	cityName        = 1
	cityASCIIName   = 2
	cityLatitude    = 4
	cityLongitude   = 5
	cityCountryCode = 8
	cityPopulation  = 14
)

// countryInfo.txt columns.
const (
	countryISO        = 0
	countryName       = 4
	countryPopulation = 7
	countryContinent  = 8
)

// eachRow calls fn with the tab-separated fields of every non-comment line.
// Rows with fewer than minFields fields are skipped.
func eachRow(r io.Reader, minFields int, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < minFields {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ReadCities parses a GeoNames cities dump (cities15000.txt).
func ReadCities(r io.Reader) ([]CityRecord, error) {
	var out []CityRecord
	err := eachRow(r, cityPopulation+1, func(line int, f []string) error {
		lat, err := strconv.ParseFloat(f[cityLatitude], 64)
		if err != nil {
			return fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(f[cityLongitude], 64)
		if err != nil {
			return fmt.Errorf("line %d: longitude: %w", line, err)
		}
		out = append(out, CityRecord{
			Name:        f[cityName],
			ASCIIName:   f[cityASCIIName],
			CountryCode: f[cityCountryCode],
			Latitude:    lat,
			Longitude:   lon,
			Population:  parseInt(f[cityPopulation]),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading cities: %w", err)
	}
	return out, nil
}

// ReadCountries parses GeoNames countryInfo.txt. "NA" is North America in the
// continent column and Namibia in the ISO column; both are kept literally.
func ReadCountries(r io.Reader) ([]CountryRecord, error) {
	var out []CountryRecord
	err := eachRow(r, countryContinent+1, func(_ int, f []string) error {
		out = append(out, CountryRecord{
			ISO:        f[countryISO],
			Name:       f[countryName],
			Continent:  f[countryContinent],
			Population: parseInt(f[countryPopulation]),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading countries: %w", err)
	}
	return out, nil
}
