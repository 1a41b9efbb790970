package solar

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the direction of travel of the Sun through an elevation.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Event describes what is being solved for. It is either a FixedElevation
// or SolarNoon.
type Event interface {
	isEvent()
}

// FixedElevation is the moment the centre of the Sun crosses Depression
// degrees below the horizon travelling in Direction. Sunrise, for example,
// is 0.833 degrees below the horizon ascending.
type FixedElevation struct {
	Depression Altitude
	Direction  Direction
}

// SolarNoon is the moment of maximum solar elevation.
type SolarNoon struct{}

func (FixedElevation) isEvent() {}
func (SolarNoon) isEvent()      {}

// EventName names the events supported on the command line.
type EventName int

const (
	Sunrise EventName = iota
	Sunset
	CivilDawn
	CivilDusk
	NauticalDawn
	NauticalDusk
	AstronomicalDawn
	AstronomicalDusk
	CustomAM
	CustomPM
	SolarNoonEvent
)

var eventNames = map[EventName]string{
	Sunrise:          "sunrise",
	Sunset:           "sunset",
	CivilDawn:        "civil_dawn",
	CivilDusk:        "civil_dusk",
	NauticalDawn:     "nautical_dawn",
	NauticalDusk:     "nautical_dusk",
	AstronomicalDawn: "astronomical_dawn",
	AstronomicalDusk: "astronomical_dusk",
	CustomAM:         "custom_am",
	CustomPM:         "custom_pm",
	SolarNoonEvent:   "solar_noon",
}

// fixedEvents maps each named fixed elevation event to its threshold.
var fixedEvents = map[EventName]FixedElevation{
	Sunrise:          {MustAltitude(0.833), Ascending},
	Sunset:           {MustAltitude(0.833), Descending},
	CivilDawn:        {MustAltitude(6), Ascending},
	CivilDusk:        {MustAltitude(6), Descending},
	NauticalDawn:     {MustAltitude(12), Ascending},
	NauticalDusk:     {MustAltitude(12), Descending},
	AstronomicalDawn: {MustAltitude(18), Ascending},
	AstronomicalDusk: {MustAltitude(18), Descending},
}

func (n EventName) String() string {
	if s, ok := eventNames[n]; ok {
		return s
	}
	return fmt.Sprintf("EventName(%d)", int(n))
}

// IsCustom reports whether the event needs a user supplied altitude.
func (n EventName) IsCustom() bool {
	return n == CustomAM || n == CustomPM
}

// ParseEventName parses names such as "sunrise", "civil-dawn" or
// "solar_noon".
func ParseEventName(s string) (EventName, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for n, name := range eventNames {
		if name == norm {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

// EventFor returns the descriptor for a named event. Custom events need a
// depression and are built with CustomEvent instead.
func EventFor(name EventName) (Event, error) {
	if name == SolarNoonEvent {
		return SolarNoon{}, nil
	}
	if name.IsCustom() {
		return nil, fmt.Errorf("%v requires an altitude", name)
	}
	ev, ok := fixedEvents[name]
	if !ok {
		return nil, fmt.Errorf("unknown event %v", name)
	}
	return ev, nil
}

// MustEventFor is like EventFor but panics on a custom or unknown name. It
// is intended for the named constants.
func MustEventFor(name EventName) Event {
	ev, err := EventFor(name)
	if err != nil {
		panic(err)
	}
	return ev
}

// CustomEvent returns the descriptor for custom_am or custom_pm, crossing
// depression degrees below the horizon.
func CustomEvent(name EventName, depression Altitude) (Event, error) {
	switch name {
	case CustomAM:
		return FixedElevation{Depression: depression, Direction: Ascending}, nil
	case CustomPM:
		return FixedElevation{Depression: depression, Direction: Descending}, nil
	}
	return nil, fmt.Errorf("%v does not take an altitude", name)
}

// EventTime is the instant at which an event occurs. The zero value means
// the event does not occur on the day in question.
type EventTime struct {
	t  time.Time
	ok bool
}

// At returns an EventTime set to t.
func At(t time.Time) EventTime {
	return EventTime{t: t, ok: true}
}

// Time returns the instant of the event and true, or false if the event
// does not occur.
func (e EventTime) Time() (time.Time, bool) {
	return e.t, e.ok
}

// IsSet reports whether the event occurs.
func (e EventTime) IsSet() bool {
	return e.ok
}
