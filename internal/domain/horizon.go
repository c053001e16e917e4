package domain

// Body is a celestial body the provider can track.
type Body string

const (
	Sun  Body = "sun"
	Moon Body = "moon"
)

// EventKind selects the crossing direction.
type EventKind string

const (
	Rise EventKind = "rise"
	Set  EventKind = "set"
)

// Limb is the reference point on the body's disk used for the crossing.
type Limb string

const (
	UpperLimb  Limb = "upper"
	CenterLimb Limb = "center"
)

// HorizonAngle is the altitude, in degrees, that defines an event.
type HorizonAngle struct {
	Name    string
	Degrees float64
}

var (
	RiseSetAngle      = HorizonAngle{Name: "rise_set", Degrees: -34.0 / 60.0}
	CivilAngle        = HorizonAngle{Name: "civil", Degrees: -6}
	NauticalAngle     = HorizonAngle{Name: "nautical", Degrees: -12}
	AmateurAngle      = HorizonAngle{Name: "amateur", Degrees: -15}
	AstronomicalAngle = HorizonAngle{Name: "astronomical", Degrees: -18}
)

// LimbFor returns the upper limb for the rise/set angle and the disk center
// for every twilight depression.
func LimbFor(angle HorizonAngle) Limb {
	if angle == RiseSetAngle {
		return UpperLimb
	}
	return CenterLimb
}
