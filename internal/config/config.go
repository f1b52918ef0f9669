package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// ErrMissingCredential is returned when an API key environment variable
// required by the pipeline is unset.
var ErrMissingCredential = errors.New("missing credential")

// Config holds all user-facing configuration for emotion-atlas.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Server     ServerConfig     `toml:"server"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Places     PlacesConfig     `toml:"places"`
	Scrape     ScrapeConfig     `toml:"scrape"`
	Classifier ClassifierConfig `toml:"classifier"`
	Retry      RetryConfig      `toml:"retry"`
	Log        LogConfig        `toml:"log"`
}

type DataConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

type ServerConfig struct {
	Host string `toml:"host" validate:"required"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

type CatalogConfig struct {
	CitiesFile            string         `toml:"cities_file" validate:"required"`
	CountryInfoFile       string         `toml:"country_info_file" validate:"required"`
	CountriesPerContinent int            `toml:"countries_per_continent" validate:"min=1"`
	ContinentQuota        map[string]int `toml:"continent_quota" validate:"dive,keys,len=2,endkeys,min=0"`
	CitiesPerCountry      int            `toml:"cities_per_country" validate:"min=1"`
	ExcludedCountries     []string       `toml:"excluded_countries" validate:"dive,len=2"`
	IncludedCities        []string       `toml:"included_cities"`
}

type PlacesConfig struct {
	BaseURL       string  `toml:"base_url" validate:"required,url"`
	APIKeyEnv     string  `toml:"api_key_env" validate:"required"`
	MaxResults    int     `toml:"max_results" validate:"min=1,max=60"`
	RadiusMeters  float64 `toml:"radius_meters" validate:"gt=0,lte=50000"`
	PerGroupLimit int     `toml:"per_group_limit" validate:"min=1,max=20"`
	Workers       int     `toml:"workers" validate:"min=1,max=16"`
	RateLimit     float64 `toml:"rate_limit" validate:"gt=0"`
}

type ScrapeConfig struct {
	RateLimit float64 `toml:"rate_limit" validate:"gt=0"`
	UserAgent string  `toml:"user_agent" validate:"required"`
	Language  string  `toml:"language" validate:"required"`
}

type ClassifierConfig struct {
	Provider  string `toml:"provider" validate:"oneof=anthropic openai"`
	Model     string `toml:"model" validate:"required"`
	BaseURL   string `toml:"base_url" validate:"omitempty,url"`
	APIKeyEnv string `toml:"api_key_env" validate:"required"`
	MaxTokens int    `toml:"max_tokens" validate:"min=1"`
}

type RetryConfig struct {
	MaxRetries int      `toml:"max_retries" validate:"min=0"`
	BaseDelay  Duration `toml:"base_delay"`
	MaxJitter  Duration `toml:"max_jitter"`
}

type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `toml:"json"`
}

// Duration is a time.Duration that decodes from TOML strings like "1s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:   DataConfig{Dir: "data"},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Catalog: CatalogConfig{
			CitiesFile:            "geonames/cities15000.txt",
			CountryInfoFile:       "geonames/countryInfo.txt",
			CountriesPerContinent: 4,
			ContinentQuota:        map[string]int{"AF": 4, "AS": 4, "EU": 10, "NA": 4, "OC": 3, "SA": 5},
			CitiesPerCountry:      3,
			ExcludedCountries:     []string{"PK", "BD", "ID", "PL", "RO", "BE", "GT", "PH", "VN"},
			IncludedCities:        []string{"Campinas", "Recife", "Manaus", "Curitiba"},
		},
		Places: PlacesConfig{
			BaseURL:       "https://places.googleapis.com/v1",
			APIKeyEnv:     "PLACES_API_KEY",
			MaxResults:    15,
			RadiusMeters:  10000,
			PerGroupLimit: 20,
			Workers:       4,
			RateLimit:     5.0,
		},
		Scrape: ScrapeConfig{
			RateLimit: 1.0,
			UserAgent: "emotion-atlas/1.0 (+https://github.com/intelligrit/emotion-atlas)",
			Language:  "en",
		},
		Classifier: ClassifierConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			MaxTokens: 16,
		},
		Retry: RetryConfig{
			MaxRetries: 12,
			BaseDelay:  Duration{time.Second},
			MaxJitter:  Duration{250 * time.Millisecond},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Retry.BaseDelay.Duration <= 0 {
		return fmt.Errorf("invalid config: retry.base_delay must be positive")
	}
	if c.Retry.MaxJitter.Duration < 0 {
		return fmt.Errorf("invalid config: retry.max_jitter must not be negative")
	}
	return nil
}

// PlacesAPIKey returns the Places API key from the environment.
func (c *Config) PlacesAPIKey() string { return os.Getenv(c.Places.APIKeyEnv) }

// ClassifierAPIKey returns the classifier provider's key from the environment.
func (c *Config) ClassifierAPIKey() string { return os.Getenv(c.Classifier.APIKeyEnv) }

// RequireCredentials reports every API key the pipeline needs that is unset.
func (c *Config) RequireCredentials() error {
	var missing []error
	if c.PlacesAPIKey() == "" {
		missing = append(missing, fmt.Errorf("%w: %s is not set", ErrMissingCredential, c.Places.APIKeyEnv))
	}
	if c.ClassifierAPIKey() == "" {
		missing = append(missing, fmt.Errorf("%w: %s is not set", ErrMissingCredential, c.Classifier.APIKeyEnv))
	}
	return errors.Join(missing...)
}
