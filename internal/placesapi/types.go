package placesapi

import "github.com/intelligrit/emotion-atlas/internal/model"

// Group is a named set of place types searched together.
type Group struct {
	Name  string
	Types []string
}

// Groups are searched in this order around every city.
var Groups = []Group{
	{"nature", []string{"park", "garden", "national_park", "botanical_garden", "state_park", "wildlife_park", "zoo", "beach", "hiking_area"}},
	{"culture", []string{"museum", "historical_place", "cultural_landmark", "historical_landmark", "monument", "art_gallery"}},
	{"performing_art", []string{"opera_house", "concert_hall", "philharmonic_hall", "performing_arts_theater", "cultural_center", "amphitheatre"}},
	{"entertainment", []string{"amusement_park", "water_park", "roller_coaster", "casino", "movie_theater", "planetarium", "aquarium"}},
	{"religion", []string{"church", "hindu_temple", "mosque", "synagogue"}},
	{"general", []string{"tourist_attraction", "visitor_center", "plaza"}},
}

const fieldMask = "places.id,places.displayName,places.googleMapsUri,places.location,places.userRatingCount,places.rating"

type searchRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	RankPreference      string              `json:"rankPreference"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places []apiPlace `json:"places"`
}

type localizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type apiPlace struct {
	ID              string        `json:"id"`
	DisplayName     localizedText `json:"displayName"`
	Location        latLng        `json:"location"`
	Rating          float64       `json:"rating"`
	GoogleMapsURI   string        `json:"googleMapsUri"`
	UserRatingCount int           `json:"userRatingCount"`
}

func (p apiPlace) toModel(group string) model.Place {
	return model.Place{
		ID:              p.ID,
		DisplayName:     p.DisplayName.Text,
		Rating:          p.Rating,
		UserRatingCount: p.UserRatingCount,
		GoogleMapsURI:   p.GoogleMapsURI,
		Location:        model.LatLng{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude},
		Categories:      []string{group},
	}
}
