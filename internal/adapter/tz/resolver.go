// Package tz resolves IANA time zone names from coordinates using the
// embedded bradfitz/latlong shape tables.
package tz

import (
	"log/slog"
	"time"

	"github.com/bradfitz/latlong"
)

// Resolver looks up the zone covering a coordinate. Zones that the local
// tzdata cannot load are reported as unknown so callers fall back cleanly.
type Resolver struct {
	logger *slog.Logger
	lookup func(lat, lon float64) string
}

// NewResolver creates a resolver backed by latlong.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger, lookup: latlong.LookupZoneName}
}

// ZoneFor returns the IANA zone name at lat/lon, or "" when none is known.
func (r *Resolver) ZoneFor(lat, lon float64) string {
	name := r.lookup(lat, lon)
	if name == "" {
		r.logger.Debug("no time zone for coordinates", "lat", lat, "lon", lon)
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		r.logger.Warn("time zone not loadable",
			"zone", name,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return ""
	}
	return name
}
