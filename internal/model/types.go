package model

// City is a populated place from the location catalog.
type City struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int64   `json:"population"`
}

// Country groups the selected cities of one country.
type Country struct {
	Name   string `json:"name"`
	Cities []City `json:"cities"`
}

// Continent groups the selected countries of one continent.
type Continent struct {
	Name      string    `json:"name"`
	Countries []Country `json:"countries"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is an attraction returned by the nearby-places search.
type Place struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	Rating          float64  `json:"rating"`
	UserRatingCount int      `json:"user_rating_count"`
	GoogleMapsURI   string   `json:"google_maps_uri"`
	Location        LatLng   `json:"location"`
	Categories      []string `json:"categories,omitempty"`
}

// Review is a single visitor review of an attraction.
type Review struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
	Date   string  `json:"date,omitempty"`
}

// LocationLabels names the catalog position of an attraction.
type LocationLabels struct {
	Continent string `json:"continent,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

// Sentiment holds VADER-style polarity scores for one sentence.
type Sentiment struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// EmotionType classifies emotion nodes.
type EmotionType string

const (
	EmotionAdjective EmotionType = "adjective"
	EmotionDerived   EmotionType = "emotion"
)
