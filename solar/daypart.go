package solar

// DayPart is a coarse classification of daylight by solar elevation.
type DayPart int

const (
	Night DayPart = iota
	AstronomicalTwilight
	NauticalTwilight
	CivilTwilight
	Day
)

// Classify maps a solar elevation in degrees to a DayPart. Each boundary
// belongs to the brighter part, so -18 is astronomical twilight and 0.833
// is day.
func Classify(elevation float64) DayPart {
	switch {
	case elevation < -18:
		return Night
	case elevation < -12:
		return AstronomicalTwilight
	case elevation < -6:
		return NauticalTwilight
	case elevation < 0.833:
		return CivilTwilight
	}
	// NaN ends up here as well.
	return Day
}

func (p DayPart) String() string {
	switch p {
	case Night:
		return "Night"
	case AstronomicalTwilight:
		return "Astronomical Twilight"
	case NauticalTwilight:
		return "Nautical Twilight"
	case CivilTwilight:
		return "Civil Twilight"
	case Day:
		return "Day"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p DayPart) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
