package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceName        string  `json:"place_name"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider confidence score
}

// Geocoder resolves region names to map coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name within a state to coordinates.
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)
}
