package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devskill-org/sunclock/solar"
)

// upcomingEvents are the events listed as upcoming in a PollReport.
var upcomingEvents = []solar.EventName{
	solar.AstronomicalDawn,
	solar.NauticalDawn,
	solar.CivilDawn,
	solar.Sunrise,
	solar.SolarNoonEvent,
	solar.Sunset,
	solar.CivilDusk,
	solar.NauticalDusk,
	solar.AstronomicalDusk,
}

// Upcoming is an event later on the same day.
type Upcoming struct {
	Event solar.EventName
	At    time.Time
	In    time.Duration
}

// PollReport describes the Sun at a single instant.
type PollReport struct {
	Time        time.Time
	Coordinates solar.Coordinates
	Elevation   float64
	Azimuth     float64
	DayPart     solar.DayPart

	SolarNoon solar.EventTime
	Sunrise   solar.EventTime
	Sunset    solar.EventTime
	Upcoming  []Upcoming
}

// NewPoll builds a PollReport from a snapshot.
func NewPoll(calcs *solar.Calculations) *PollReport {
	now := calcs.Instant()
	elevation := calcs.Elevation()
	pr := &PollReport{
		Time:        now,
		Coordinates: calcs.Coordinates(),
		Elevation:   elevation,
		Azimuth:     calcs.Azimuth(),
		DayPart:     solar.Classify(elevation),
		SolarNoon:   solar.Resolve(solar.MustEventFor(solar.SolarNoonEvent), calcs),
		Sunrise:     solar.Resolve(solar.MustEventFor(solar.Sunrise), calcs),
		Sunset:      solar.Resolve(solar.MustEventFor(solar.Sunset), calcs),
	}
	for _, name := range upcomingEvents {
		at, ok := solar.Resolve(solar.MustEventFor(name), calcs).Time()
		if !ok || !at.After(now) {
			continue
		}
		pr.Upcoming = append(pr.Upcoming, Upcoming{Event: name, At: at, In: at.Sub(now)})
	}
	sort.SliceStable(pr.Upcoming, func(i, j int) bool {
		return pr.Upcoming[i].At.Before(pr.Upcoming[j].At)
	})
	return pr
}

func (p *PollReport) String() string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-19s%s\n", label+":", value)
	}
	line("Time", p.Time.Format(TimeLayout))
	line("Location", p.Coordinates.String())
	line("Solar elevation", fmt.Sprintf("%.3f°", p.Elevation))
	line("Solar azimuth", fmt.Sprintf("%.3f°", p.Azimuth))
	line("Day part", p.DayPart.String())
	b.WriteString("\n")
	line("Solar noon", FormatEvent(p.SolarNoon))
	line("Sunrise", FormatEvent(p.Sunrise))
	line("Sunset", FormatEvent(p.Sunset))
	if len(p.Upcoming) > 0 {
		b.WriteString("\nUpcoming:\n")
		for _, u := range p.Upcoming {
			fmt.Fprintf(&b, "  %-19s in %s\n", u.Event, FormatDuration(u.In))
		}
	}
	return b.String()
}

type jsonUpcoming struct {
	Event     string `json:"event"`
	At        string `json:"at"`
	InSeconds int64  `json:"in_seconds"`
}

type jsonPoll struct {
	Time           string         `json:"time"`
	Location       jsonLocation   `json:"location"`
	SolarElevation float64        `json:"solar_elevation"`
	SolarAzimuth   float64        `json:"solar_azimuth"`
	DayPart        solar.DayPart  `json:"day_part"`
	SolarNoon      *string        `json:"solar_noon"`
	Sunrise        *string        `json:"sunrise"`
	Sunset         *string        `json:"sunset"`
	Upcoming       []jsonUpcoming `json:"upcoming"`
}

// MarshalJSON implements json.Marshaler.
func (p *PollReport) MarshalJSON() ([]byte, error) {
	up := make([]jsonUpcoming, 0, len(p.Upcoming))
	for _, u := range p.Upcoming {
		up = append(up, jsonUpcoming{
			Event:     u.Event.String(),
			At:        u.At.Format(time.RFC3339),
			InSeconds: int64(u.In / time.Second),
		})
	}
	return json.Marshal(jsonPoll{
		Time:           p.Time.Format(time.RFC3339),
		Location:       locationJSON(p.Coordinates),
		SolarElevation: p.Elevation,
		SolarAzimuth:   p.Azimuth,
		DayPart:        p.DayPart,
		SolarNoon:      eventJSON(p.SolarNoon),
		Sunrise:        eventJSON(p.Sunrise),
		Sunset:         eventJSON(p.Sunset),
		Upcoming:       up,
	})
}
