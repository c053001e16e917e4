// Package domain computes daily sun and moon ephemerides for an observer.
//
// # Astronomical Day
//
// Every query in a report is anchored to one reference instant, the start of
// the "astronomical day": 13:15 UTC of the current UTC date, or of the previous
// date when the current UTC hour is before noon. Anchoring at early afternoon
// means a night observer sees tonight's sunset, dusk and tomorrow's dawn in one
// report, even after midnight. See [AstronomicalDayReference].
//
// # Horizon Angles
//
// Events are defined by the altitude the body crosses:
//
//	rise/set      −0°34′  upper limb, standard refraction
//	civil         −6°     center of disk
//	nautical      −12°    center of disk
//	amateur       −15°    center of disk
//	astronomical  −18°    center of disk
//
// Sunset and twilight ends are searched forward from the reference. Sunrise is
// searched from one hour after the reference; twilight begins from the
// reference itself.
//
// # Circumpolar Events
//
// When the body never crosses the requested altitude near the reference (polar
// day or night), the provider returns [ErrCircumpolar] and the report carries
// [CircumpolarText] for that field. Other fields are unaffected.
//
// # Moonset Ordering
//
// A moonset before the next moonrise is normally the tail of the previous
// night's moon. If that moonset also falls outside the afternoon and evening
// (local hours 12–23), it is replaced with the next moonset one day later.
// The raw moonset also feeds the "moonset ante astronomical noon" flag.
//
// # Output Format
//
// Event times are rendered in the requested zone as "Jan 02 15:04:05 MST".
// The zone falls back to [Settings.DefaultZone] when the caller's zone cannot
// be resolved.
//
// # Lunar Phase
//
// The phase name comes from a linear lunation model with epoch 2001-01-01
// local midnight, computed in decimal arithmetic so the boundaries between the
// eight named phases do not drift with float rounding. See [LunarPhaseName].
package domain
