package astro

import (
	"math"
	"time"

	"github.com/mooncaker816/learnmeeus/v3/coord"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/moonposition"
	"github.com/mooncaker816/learnmeeus/v3/nutation"
	"github.com/mooncaker816/learnmeeus/v3/rise"
	"github.com/mooncaker816/learnmeeus/v3/sidereal"
	"github.com/soniakeys/unit"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
)

const (
	defaultMoonStep   = 10 * time.Minute
	defaultMoonWindow = 48 * time.Hour
)

// MoonProvider scans the moon's geocentric altitude forward from the start
// and refines the first crossing by bisection. ΔT is neglected and observer
// elevation is not applied.
type MoonProvider struct {
	step   time.Duration
	window time.Duration
}

// NewMoonProvider creates a provider scanning 48 hours in 10 minute steps.
func NewMoonProvider() *MoonProvider {
	return &MoonProvider{step: defaultMoonStep, window: defaultMoonWindow}
}

func (p *MoonProvider) NextEvent(loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error) {
	target := unit.AngleFromDeg(angle.Degrees)
	above := func(t time.Time) float64 {
		alt, parallax := moonAltitude(loc, t)
		return float64(alt - lunarStandardAltitude(target, limb, parallax))
	}

	end := start.Add(p.window)
	t, prev := start, above(start)
	for t.Before(end) {
		next := t.Add(p.step)
		cur := above(next)
		if crossed(prev, cur, kind) {
			return refine(above, t, next), nil
		}
		t, prev = next, cur
	}
	return time.Time{}, domain.ErrCircumpolar
}

func crossed(prev, cur float64, kind domain.EventKind) bool {
	if kind == domain.Rise {
		return prev < 0 && cur >= 0
	}
	return prev >= 0 && cur < 0
}

// refine bisects [lo, hi] to one second and returns the first whole second
// on the far side of the crossing.
func refine(above func(time.Time) float64, lo, hi time.Time) time.Time {
	loAbove := above(lo) >= 0
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		if (above(mid) >= 0) == loAbove {
			lo = mid
		} else {
			hi = mid
		}
	}
	at := hi.Truncate(time.Second)
	if at.Before(hi) {
		at = at.Add(time.Second)
	}
	return at
}

// lunarStandardAltitude is the geocentric altitude of the moon's center when
// the chosen limb sits at the target topocentric altitude.
func lunarStandardAltitude(target unit.Angle, limb domain.Limb, parallax unit.Angle) unit.Angle {
	if limb == domain.UpperLimb {
		// Stdh0Lunar is the standard −34′ rise/set altitude for the upper limb.
		return rise.Stdh0Lunar(parallax) + target - rise.Stdh0Stellar
	}
	return target + parallax
}

// moonAltitude returns the moon's geocentric altitude at t and its horizontal parallax.
func moonAltitude(loc domain.Location, t time.Time) (unit.Angle, unit.Angle) {
	jd := julian.TimeToJD(t.UTC())
	lon, lat, dist := moonposition.Position(jd)
	eps := float64(nutation.MeanObliquity(jd))
	ra, dec := coord.EclToEq(lon, lat, math.Sin(eps), math.Cos(eps))

	// Mean sidereal time comes back in seconds of time.
	gmst := float64(sidereal.Mean(jd)) / 86400 * 2 * math.Pi
	hourAngle := gmst + loc.Lon*math.Pi/180 - float64(ra)

	phi := loc.Lat * math.Pi / 180
	d := float64(dec)
	sinAlt := math.Sin(phi)*math.Sin(d) + math.Cos(phi)*math.Cos(d)*math.Cos(hourAngle)
	return unit.Angle(math.Asin(sinAlt)), moonposition.Parallax(dist)
}
