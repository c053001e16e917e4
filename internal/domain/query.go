package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// CircumpolarText is displayed in place of an event that never happens.
	CircumpolarText = "N/A for this latitude"

	// EventLayout renders event times, e.g. "Jun 21 19:30:00 UTC".
	EventLayout = "Jan 02 15:04:05 MST"
)

// EphemerisEvent is one resolved crossing. Circumpolar events have a zero Time.
type EphemerisEvent struct {
	Time        time.Time
	Formatted   string
	Circumpolar bool
}

// RiseSetQuery asks the provider for a single event and renders the answer.
type RiseSetQuery struct {
	provider    CelestialPositionProvider
	defaultZone *time.Location
}

// NewRiseSetQuery creates a query bound to a provider. A nil defaultZone means UTC.
func NewRiseSetQuery(provider CelestialPositionProvider, defaultZone *time.Location) *RiseSetQuery {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &RiseSetQuery{provider: provider, defaultZone: defaultZone}
}

// Query finds the next kind event of body after start and formats it in zone.
func (q *RiseSetQuery) Query(body Body, loc Location, start time.Time, zone *time.Location, kind EventKind, angle HorizonAngle) (EphemerisEvent, error) {
	at, err := q.provider.NextEvent(body, loc, angle, LimbFor(angle), start, kind)
	if errors.Is(err, ErrCircumpolar) {
		return EphemerisEvent{Formatted: CircumpolarText, Circumpolar: true}, nil
	}
	if err != nil {
		return EphemerisEvent{}, fmt.Errorf("%s %s at %s: %w", body, kind, angle.Name, err)
	}

	if zone == nil {
		zone = q.defaultZone
	}
	local := at.In(zone)
	return EphemerisEvent{Time: local, Formatted: local.Format(EventLayout)}, nil
}
