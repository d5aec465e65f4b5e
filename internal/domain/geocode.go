package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrGeocodingDisabled = errors.New("geocoding disabled")
	ErrRegionNotFound    = errors.New("region not found")
)

// LocateRegion resolves a region to map coordinates for placing markers and
// labels. County regions are geocoded by county name within the state;
// state-only regions by the state itself.
func LocateRegion(ctx context.Context, region Region, geocoder Geocoder, logger *slog.Logger) (GeocodingResult, error) {
	if geocoder == nil {
		return GeocodingResult{}, ErrGeocodingDisabled
	}
	if region.IsZero() {
		return GeocodingResult{}, invalid("state", "is required")
	}

	name := region.County
	if name == "" {
		name = region.StateName
	}
	if name == "" {
		name = region.State
	}

	result, err := geocoder.ForwardGeocode(ctx, name, region.State)
	if err != nil {
		logger.Warn("region geocoding failed",
			"state", region.State,
			"county", region.County,
			"error", err,
		)
		return GeocodingResult{}, fmt.Errorf("geocode %s, %s: %w", name, region.State, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		return GeocodingResult{}, ErrRegionNotFound
	}
	return result, nil
}
