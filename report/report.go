// Package report renders solar calculations as human readable text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/devskill-org/sunclock/solar"
)

// TimeLayout is the layout used for instants in text reports.
const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Never is how an event that does not occur is shown in text reports.
const Never = "Never"

// Report is the full set of event times for one date and location.
type Report struct {
	Coordinates solar.Coordinates
	Date        time.Time
	DayLength   time.Duration

	SolarNoon        solar.EventTime
	Sunrise          solar.EventTime
	Sunset           solar.EventTime
	CivilDawn        solar.EventTime
	CivilDusk        solar.EventTime
	NauticalDawn     solar.EventTime
	NauticalDusk     solar.EventTime
	AstronomicalDawn solar.EventTime
	AstronomicalDusk solar.EventTime
}

// New resolves every named event for the date of calcs.
func New(calcs *solar.Calculations) *Report {
	resolve := func(name solar.EventName) solar.EventTime {
		return solar.Resolve(solar.MustEventFor(name), calcs)
	}
	return &Report{
		Coordinates:      calcs.Coordinates(),
		Date:             calcs.Instant(),
		DayLength:        solar.DayLength(calcs),
		SolarNoon:        resolve(solar.SolarNoonEvent),
		Sunrise:          resolve(solar.Sunrise),
		Sunset:           resolve(solar.Sunset),
		CivilDawn:        resolve(solar.CivilDawn),
		CivilDusk:        resolve(solar.CivilDusk),
		NauticalDawn:     resolve(solar.NauticalDawn),
		NauticalDusk:     resolve(solar.NauticalDusk),
		AstronomicalDawn: resolve(solar.AstronomicalDawn),
		AstronomicalDusk: resolve(solar.AstronomicalDusk),
	}
}

func (r *Report) String() string {
	var b strings.Builder
	b.WriteString("LOCATION\n--------\n")
	fmt.Fprintf(&b, "Latitude: %v\nLongitude: %v\n\n", r.Coordinates.Latitude, r.Coordinates.Longitude)
	b.WriteString("DATE\n----\n")
	fmt.Fprintf(&b, "%s\n\n", r.Date.Format(TimeLayout))

	line := func(label, value string) {
		fmt.Fprintf(&b, "%-26s%s\n", label+":", value)
	}
	line("Solar noon is at", FormatEvent(r.SolarNoon))
	line("The day length is", FormatDuration(r.DayLength))
	b.WriteString("\n")
	line("Sunrise is at", FormatEvent(r.Sunrise))
	line("Sunset is at", FormatEvent(r.Sunset))
	b.WriteString("\n")
	line("Civil dawn is at", FormatEvent(r.CivilDawn))
	line("Civil dusk is at", FormatEvent(r.CivilDusk))
	b.WriteString("\n")
	line("Nautical dawn is at", FormatEvent(r.NauticalDawn))
	line("Nautical dusk is at", FormatEvent(r.NauticalDusk))
	b.WriteString("\n")
	line("Astronomical dawn is at", FormatEvent(r.AstronomicalDawn))
	line("Astronomical dusk is at", FormatEvent(r.AstronomicalDusk))
	return b.String()
}

type jsonLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type jsonTwilight struct {
	Civil        *string `json:"civil"`
	Nautical     *string `json:"nautical"`
	Astronomical *string `json:"astronomical"`
}

type jsonReport struct {
	Location  jsonLocation `json:"location"`
	Date      string       `json:"date"`
	DayLength int64        `json:"day_length"`
	SolarNoon *string      `json:"solar_noon"`
	Sunrise   *string      `json:"sunrise"`
	Sunset    *string      `json:"sunset"`
	Dawn      jsonTwilight `json:"dawn"`
	Dusk      jsonTwilight `json:"dusk"`
}

// MarshalJSON implements json.Marshaler. Events that do not occur are null
// and the day length is in seconds.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonReport{
		Location:  locationJSON(r.Coordinates),
		Date:      r.Date.Format(time.RFC3339),
		DayLength: int64(r.DayLength / time.Second),
		SolarNoon: eventJSON(r.SolarNoon),
		Sunrise:   eventJSON(r.Sunrise),
		Sunset:    eventJSON(r.Sunset),
		Dawn: jsonTwilight{
			Civil:        eventJSON(r.CivilDawn),
			Nautical:     eventJSON(r.NauticalDawn),
			Astronomical: eventJSON(r.AstronomicalDawn),
		},
		Dusk: jsonTwilight{
			Civil:        eventJSON(r.CivilDusk),
			Nautical:     eventJSON(r.NauticalDusk),
			Astronomical: eventJSON(r.AstronomicalDusk),
		},
	})
}

// FormatEvent formats an event time for text output.
func FormatEvent(e solar.EventTime) string {
	t, ok := e.Time()
	if !ok {
		return Never
	}
	return t.Format(TimeLayout)
}

// FormatDuration formats d as hours, minutes and seconds, e.g. 16h38m0s.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%dh%dm%ds", h, m, d/time.Second)
}

func eventJSON(e solar.EventTime) *string {
	t, ok := e.Time()
	if !ok {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func locationJSON(c solar.Coordinates) jsonLocation {
	return jsonLocation{
		Latitude:  c.Latitude.Degrees(),
		Longitude: c.Longitude.Degrees(),
	}
}
