package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves place names and describes coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name, optionally qualified by region, to coordinates.
	ForwardGeocode(ctx context.Context, name, region string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// ZoneResolver names the IANA time zone covering a coordinate, or "" when unknown.
type ZoneResolver interface {
	ZoneFor(lat, lon float64) string
}
