package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// ForwardGeocodePlace resolves a free-text place name to a location. It fails
// with ErrInvalidLocation when no geocoder is configured or the place is not found.
func ForwardGeocodePlace(ctx context.Context, place string, geocoder Geocoder, logger *slog.Logger) (Location, GeocodingResult, error) {
	if geocoder == nil {
		return Location{}, GeocodingResult{}, fmt.Errorf("%w: no coordinates and geocoding disabled", ErrInvalidLocation)
	}

	result, err := geocoder.ForwardGeocode(ctx, place, "")
	if err != nil {
		logger.Warn("forward geocoding failed",
			"place", place,
			"error", err,
		)
		return Location{}, GeocodingResult{}, fmt.Errorf("%w: geocode %q: %w", ErrInvalidLocation, place, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		return Location{}, GeocodingResult{}, fmt.Errorf("%w: place %q not found", ErrInvalidLocation, place)
	}
	return Location{Lat: result.Lat, Lon: result.Lon}, result, nil
}

// EnrichWithAddress fills in a display address by reverse geocoding the
// message's location. Messages that already carry an address, or a nil
// geocoder, pass through; failures are logged and recorded in GeoSource.
func EnrichWithAddress(ctx context.Context, msg ReportMessage, geocoder Geocoder, logger *slog.Logger) ReportMessage {
	if msg.Address != "" || geocoder == nil {
		return msg
	}

	result, err := geocoder.ReverseGeocode(ctx, msg.Location.Lat, msg.Location.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"request_id", msg.ID,
			"lat", msg.Location.Lat,
			"lon", msg.Location.Lon,
			"error", err,
		)
		msg.GeoSource = "failed"
		return msg
	}
	if result.FormattedAddress != "" {
		msg.Address = result.FormattedAddress
		msg.PlaceName = result.PlaceName
		msg.GeoConfidence = result.Confidence
		msg.GeoSource = "reverse"
		return msg
	}

	msg.GeoSource = "original"
	return msg
}
