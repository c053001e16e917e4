package astro

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
)

const (
	// solarSemiDiameter is the sun's mean apparent radius in degrees.
	solarSemiDiameter = 16.0 / 60.0

	// sunLookahead bounds how far past start a crossing may fall. The margin
	// absorbs the daily drift of rise and set times.
	sunLookahead = 24*time.Hour + 30*time.Minute
)

// SunProvider finds solar crossings from go-sunrise's per-date rise and set
// times. Dates around the start are tried in order and the first crossing
// strictly after start wins. A crossing that only happens on a later night
// is reported as ErrCircumpolar.
type SunProvider struct{}

func (SunProvider) NextEvent(loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error) {
	day := start.UTC().AddDate(0, 0, -1)
	limit := start.Add(sunLookahead)
	for i := 0; i < 4; i++ {
		morning, evening := sunTimes(loc, angle, limb, day.AddDate(0, 0, i))
		at := morning
		if kind == domain.Set {
			at = evening
		}
		if at.IsZero() || !at.After(start) {
			continue
		}
		if at.After(limit) {
			break
		}
		return at, nil
	}
	return time.Time{}, domain.ErrCircumpolar
}

// sunTimes returns the UTC crossings for one calendar date; zero times mean
// the sun does not reach the altitude that day.
func sunTimes(loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	if angle == domain.RiseSetAngle && limb == domain.UpperLimb {
		// go-sunrise's standard sunrise already uses the upper limb with refraction.
		return sunrise.SunriseSunset(loc.Lat, loc.Lon, y, m, d)
	}

	elevation := angle.Degrees
	if limb == domain.UpperLimb {
		elevation -= solarSemiDiameter
	}
	return sunrise.TimeOfElevation(loc.Lat, loc.Lon, elevation, y, m, d)
}
