package domain

import "time"

// Report field names.
const (
	FieldSunset    = "sunset_string"
	FieldSunrise   = "sunrise_string"
	FieldMoonrise  = "moonrise_string"
	FieldMoonset   = "moonset_string"
	FieldMoonPhase = "moon_phase_string"
	FieldMoonAnte  = "moonset_ante_astro_noon_p"
)

// BandEndField names a band's end field, e.g. "civil_end_string".
func BandEndField(b Band) string {
	return b.Field + "_end_string"
}

// BandBeginField names a band's begin field, e.g. "astro_begin_string".
func BandBeginField(b Band) string {
	return b.Field + "_begin_string"
}

// Report is one computed ephemeris.
type Report struct {
	Reference time.Time
	Timezone  string
	// ZoneResolved is false when Timezone is the default substituted for an
	// empty or unknown zone name.
	ZoneResolved bool
	Values       map[string]string
}

// Circumpolar returns the names of fields that carry CircumpolarText.
func (r Report) Circumpolar() []string {
	var fields []string
	for name, v := range r.Values {
		if v == CircumpolarText {
			fields = append(fields, name)
		}
	}
	return fields
}

// Engine computes full reports from a provider and fixed settings. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	settings Settings
	twilight *TwilightOrchestrator
	moon     *MoonResolver
}

// NewEngine wires the resolvers around provider.
func NewEngine(provider CelestialPositionProvider, settings Settings) *Engine {
	if settings.DefaultZone == nil {
		settings.DefaultZone = time.UTC
	}
	query := NewRiseSetQuery(provider, settings.DefaultZone)
	return &Engine{
		settings: settings,
		twilight: NewTwilightOrchestrator(query, settings),
		moon:     NewMoonResolver(query, settings),
	}
}

// Settings returns the engine's configuration.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Report computes every field for loc during the astronomical day containing now.
func (e *Engine) Report(loc Location, zoneName string, now time.Time) (Report, error) {
	zone, resolved := e.settings.ResolveZone(zoneName)
	ref := AstronomicalDayReference(now)

	values := make(map[string]string, 6+2*len(e.settings.Bands))

	var err error
	if values[FieldSunset], err = e.twilight.Compute(RequestSunset, loc, ref, zone); err != nil {
		return Report{}, err
	}
	if values[FieldSunrise], err = e.twilight.Compute(RequestSunrise, loc, ref, zone); err != nil {
		return Report{}, err
	}
	for _, b := range e.settings.Bands {
		if values[BandEndField(b)], err = e.twilight.Compute(b.Label+"_end", loc, ref, zone); err != nil {
			return Report{}, err
		}
		if values[BandBeginField(b)], err = e.twilight.Compute(b.Label+"_begin", loc, ref, zone); err != nil {
			return Report{}, err
		}
	}

	moon, err := e.moon.Resolve(loc, ref, zone)
	if err != nil {
		return Report{}, err
	}
	values[FieldMoonrise] = moon.Rise.Formatted
	values[FieldMoonset] = moon.Set.Formatted
	values[FieldMoonAnte] = FormatFlag(moon.AnteAstroNoon)
	values[FieldMoonPhase] = LunarPhaseName(ref, zone)

	return Report{
		Reference:    ref,
		Timezone:     zone.String(),
		ZoneResolved: resolved,
		Values:       values,
	}, nil
}
