package domain

import (
	"errors"
	"time"
)

// ErrCircumpolar is returned by a provider when the body does not cross the
// requested altitude in the search window.
var ErrCircumpolar = errors.New("body does not cross the requested altitude")

// CelestialPositionProvider finds the next time a body crosses an altitude.
type CelestialPositionProvider interface {
	// NextEvent returns the first crossing strictly after start.
	NextEvent(body Body, loc Location, angle HorizonAngle, limb Limb, start time.Time, kind EventKind) (time.Time, error)
}
