package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownRequest is returned for request names no resolver handles.
var ErrUnknownRequest = errors.New("unknown ephemeris request")

const (
	RequestSunrise = "sunrise"
	RequestSunset  = "sunset"
)

// TwilightOrchestrator maps sun request names to provider queries.
type TwilightOrchestrator struct {
	query         *RiseSetQuery
	bands         map[string]Band
	sunriseOffset time.Duration
}

// NewTwilightOrchestrator builds the band lookup from settings.
func NewTwilightOrchestrator(query *RiseSetQuery, settings Settings) *TwilightOrchestrator {
	bands := make(map[string]Band, len(settings.Bands))
	for _, b := range settings.Bands {
		bands[b.Label] = b
		bands[b.Field] = b
	}
	return &TwilightOrchestrator{query: query, bands: bands, sunriseOffset: settings.SunriseOffset}
}

// Compute resolves "sunrise", "sunset" or "<band>_begin" / "<band>_end".
func (o *TwilightOrchestrator) Compute(which string, loc Location, ref time.Time, zone *time.Location) (string, error) {
	ev, err := o.event(which, loc, ref, zone)
	if err != nil {
		return "", err
	}
	return ev.Formatted, nil
}

func (o *TwilightOrchestrator) event(which string, loc Location, ref time.Time, zone *time.Location) (EphemerisEvent, error) {
	switch which {
	case RequestSunset:
		return o.query.Query(Sun, loc, ref, zone, Set, RiseSetAngle)
	case RequestSunrise:
		return o.query.Query(Sun, loc, ref.Add(o.sunriseOffset), zone, Rise, RiseSetAngle)
	}

	name, edge, ok := cutLast(which, "_")
	if !ok {
		return EphemerisEvent{}, fmt.Errorf("%w: %q", ErrUnknownRequest, which)
	}
	band, ok := o.bands[name]
	if !ok {
		return EphemerisEvent{}, fmt.Errorf("%w: %q", ErrUnknownRequest, which)
	}

	switch edge {
	case "end":
		return o.query.Query(Sun, loc, ref, zone, Set, band.Angle)
	case "begin":
		return o.query.Query(Sun, loc, ref, zone, Rise, band.Angle)
	}
	return EphemerisEvent{}, fmt.Errorf("%w: %q", ErrUnknownRequest, which)
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
