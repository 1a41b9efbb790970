package solar

import (
	"math"
	"time"
)

// Resolve returns the time at which e occurs on the civil date of the
// snapshot's instant, expressed in the instant's location. A FixedElevation
// that the Sun does not reach that day resolves to an unset EventTime;
// SolarNoon always resolves.
func Resolve(e Event, c *Calculations) EventTime {
	switch ev := e.(type) {
	case SolarNoon:
		return At(c.solarNoon())
	case FixedElevation:
		return c.fixedElevation(ev)
	}
	return EventTime{}
}

// solarNoon is the meridian transit computed from the equation of time and
// the longitude correction of four minutes per degree. Where the UTC offset
// is far from the longitude, as at +13:00 in Tonga, the raw sum falls on the
// neighbouring date, so it is wrapped into the instant's civil day.
func (c *Calculations) solarNoon() time.Time {
	_, offset := c.instant.Zone()
	minutes := 720 - 4*c.coords.Longitude.Degrees() - c.equationOfTime + float64(offset)/60
	return c.midnight().Add(minutesToDuration(normalize(minutes, minutesPerDay)))
}

func (c *Calculations) fixedElevation(ev FixedElevation) EventTime {
	lat := c.coords.Latitude.Degrees()
	arg := (sin(-ev.Depression.Degrees()) - sin(lat)*sin(c.declination)) /
		(cos(lat) * cos(c.declination))
	// Beyond [-1, 1] the Sun stays above or below the threshold all day.
	// At the poles cos(lat) is zero and arg is ±Inf or NaN, which also
	// fails this test.
	if !(arg >= -1 && arg <= 1) {
		return EventTime{}
	}
	offset := minutesToDuration(degrees(math.Acos(arg)) * 4)
	noon := c.solarNoon()
	if ev.Direction == Descending {
		return At(noon.Add(offset))
	}
	return At(noon.Add(-offset))
}

func minutesToDuration(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}

// DayLength returns the time between sunrise and sunset. When neither
// occurs it is 24 hours if the Sun is above the horizon at solar noon
// (polar day) and zero otherwise (polar night).
func DayLength(c *Calculations) time.Duration {
	rise, riseOK := Resolve(MustEventFor(Sunrise), c).Time()
	set, setOK := Resolve(MustEventFor(Sunset), c).Time()
	if riseOK && setOK {
		return set.Sub(rise)
	}
	noon := c.Refresh(c.solarNoon())
	if noon.Elevation() > -fixedEvents[Sunrise].Depression.Degrees() {
		return 24 * time.Hour
	}
	return 0
}
