package domain

import "time"

// Band is one twilight depression and the field prefix its begin/end values
// are reported under.
type Band struct {
	Label string
	Field string
	Angle HorizonAngle
}

// DefaultBands lists the twilight bands in report order.
var DefaultBands = []Band{
	{Label: "civil", Field: "civil", Angle: CivilAngle},
	{Label: "nautical", Field: "nautical", Angle: NauticalAngle},
	{Label: "amateur", Field: "amateur", Angle: AmateurAngle},
	{Label: "astronomical", Field: "astro", Angle: AstronomicalAngle},
}

// Settings are the engine's fixed inputs.
type Settings struct {
	Bands           []Band
	DefaultZone     *time.Location
	SunriseOffset   time.Duration
	MoonsetRollover time.Duration
}

// DefaultSettings returns the standard bands with the given fallback zone.
func DefaultSettings(defaultZone *time.Location) Settings {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return Settings{
		Bands:           DefaultBands,
		DefaultZone:     defaultZone,
		SunriseOffset:   time.Hour,
		MoonsetRollover: 24 * time.Hour,
	}
}

// ResolveZone loads an IANA zone name, falling back to the default zone when
// the name is empty or unknown. The returned flag reports whether name resolved.
func (s Settings) ResolveZone(name string) (*time.Location, bool) {
	if name == "" {
		return s.DefaultZone, false
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return s.DefaultZone, false
	}
	return zone, true
}
