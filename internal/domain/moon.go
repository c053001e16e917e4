package domain

import (
	"fmt"
	"time"
)

const (
	RequestMoonrise  = "moonrise"
	RequestMoonset   = "moonset"
	RequestMoonPhase = "moon_phase"
	RequestMoonAnte  = "moonset_ante_astro_noon_p"
)

// MoonEvents is the resolved moon section of a report.
type MoonEvents struct {
	Rise EphemerisEvent
	// RawSet is the first moonset after the reference, before rollover.
	RawSet EphemerisEvent
	Set    EphemerisEvent
	// AnteAstroNoon reports whether RawSet falls on the reference date
	// during local hours 12–23.
	AnteAstroNoon bool
}

// MoonResolver resolves moonrise, moonset ordering and the moon flags.
type MoonResolver struct {
	query    *RiseSetQuery
	rollover time.Duration
}

// NewMoonResolver creates a resolver using the settings' moonset rollover.
func NewMoonResolver(query *RiseSetQuery, settings Settings) *MoonResolver {
	return &MoonResolver{query: query, rollover: settings.MoonsetRollover}
}

// Compute resolves "moonrise", "moonset", "moonset_ante_astro_noon_p" or "moon_phase".
func (r *MoonResolver) Compute(which string, loc Location, ref time.Time, zone *time.Location) (string, error) {
	switch which {
	case RequestMoonPhase:
		return LunarPhaseName(ref, zone), nil
	case RequestMoonrise:
		ev, err := r.query.Query(Moon, loc, ref, zone, Rise, RiseSetAngle)
		if err != nil {
			return "", err
		}
		return ev.Formatted, nil
	case RequestMoonset, RequestMoonAnte:
		events, err := r.Resolve(loc, ref, zone)
		if err != nil {
			return "", err
		}
		if which == RequestMoonAnte {
			return FormatFlag(events.AnteAstroNoon), nil
		}
		return events.Set.Formatted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRequest, which)
}

// Resolve queries moonrise and moonset once and applies the rollover rule.
func (r *MoonResolver) Resolve(loc Location, ref time.Time, zone *time.Location) (MoonEvents, error) {
	rise, err := r.query.Query(Moon, loc, ref, zone, Rise, RiseSetAngle)
	if err != nil {
		return MoonEvents{}, err
	}
	set, err := r.query.Query(Moon, loc, ref, zone, Set, RiseSetAngle)
	if err != nil {
		return MoonEvents{}, err
	}

	events := MoonEvents{Rise: rise, RawSet: set, Set: set, AnteAstroNoon: anteAstroNoon(set, ref)}
	if rise.Circumpolar || set.Circumpolar {
		return events, nil
	}

	if !afternoonOrEvening(set.Time) && set.Time.Before(rise.Time) {
		next, err := r.query.Query(Moon, loc, ref.Add(r.rollover), zone, Set, RiseSetAngle)
		if err != nil {
			return MoonEvents{}, err
		}
		events.Set = next
	}
	return events, nil
}

// anteAstroNoon compares the moonset's local date with the reference's UTC date.
func anteAstroNoon(set EphemerisEvent, ref time.Time) bool {
	if set.Circumpolar {
		return false
	}
	sy, sm, sd := set.Time.Date()
	ry, rm, rd := ref.UTC().Date()
	return sy == ry && sm == rm && sd == rd && afternoonOrEvening(set.Time)
}

func afternoonOrEvening(t time.Time) bool {
	return t.Hour() >= 12 && t.Hour() <= 23
}

// FormatFlag renders a boolean the way reports carry it.
func FormatFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
