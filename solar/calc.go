package solar

import (
	"math"
	"time"

	"github.com/mooncaker816/learnmeeus/v3/julian"
)

const (
	j2000          = 2451545.0
	daysPerCentury = 36525.0
	minutesPerDay  = 1440.0
)

// Calculations is a snapshot of the Sun's position for one instant at one
// location. It is never modified after construction; use Refresh to obtain
// a snapshot for a different instant.
type Calculations struct {
	instant time.Time
	coords  Coordinates

	julianDay      float64
	julianCentury  float64
	declination    float64 // degrees
	equationOfTime float64 // minutes
	trueSolarTime  float64 // minutes
	hourAngle      float64 // degrees, zero at solar noon
}

// New computes the position of the Sun at instant as seen from coords.
func New(instant time.Time, coords Coordinates) *Calculations {
	c := &Calculations{
		instant: instant,
		coords:  coords,
	}
	c.julianDay = julian.TimeToJD(instant)
	c.julianCentury = (c.julianDay - j2000) / daysPerCentury

	jc := c.julianCentury
	meanLong := normalize(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	meanAnomaly := 357.52911 + jc*(35999.05029-0.0001537*jc)
	eccentricity := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	center := sin(meanAnomaly)*(1.914602-jc*(0.004817+0.000014*jc)) +
		sin(2*meanAnomaly)*(0.019993-0.000101*jc) +
		sin(3*meanAnomaly)*0.000289
	trueLong := meanLong + center
	omega := 125.04 - 1934.136*jc
	apparentLong := trueLong - 0.00569 - 0.00478*sin(omega)

	meanObliquity := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliquity := meanObliquity + 0.00256*cos(omega)

	c.declination = asin(sin(obliquity) * sin(apparentLong))

	y := math.Pow(math.Tan(radians(obliquity/2)), 2)
	c.equationOfTime = 4 * degrees(y*sin(2*meanLong)-
		2*eccentricity*sin(meanAnomaly)+
		4*eccentricity*y*sin(meanAnomaly)*cos(2*meanLong)-
		0.5*y*y*sin(4*meanLong)-
		1.25*eccentricity*eccentricity*sin(2*meanAnomaly))

	utc := instant.UTC()
	utcMinutes := float64(utc.Hour()*60+utc.Minute()) +
		(float64(utc.Second())+float64(utc.Nanosecond())/1e9)/60
	c.trueSolarTime = normalize(utcMinutes+c.equationOfTime+4*coords.Longitude.Degrees(), minutesPerDay)
	c.hourAngle = c.trueSolarTime/4 - 180
	return c
}

// Refresh returns a new snapshot for instant at the same coordinates.
func (c *Calculations) Refresh(instant time.Time) *Calculations {
	return New(instant, c.coords)
}

// Instant returns the instant the snapshot was computed for.
func (c *Calculations) Instant() time.Time {
	return c.instant
}

// Coordinates returns the location the snapshot was computed for.
func (c *Calculations) Coordinates() Coordinates {
	return c.coords
}

// JulianDay returns the fractional Julian Day of the instant.
func (c *Calculations) JulianDay() float64 {
	return c.julianDay
}

// Declination returns the solar declination in degrees.
func (c *Calculations) Declination() float64 {
	return c.declination
}

// EquationOfTime returns the equation of time in minutes.
func (c *Calculations) EquationOfTime() float64 {
	return c.equationOfTime
}

// HourAngle returns the hour angle in degrees, negative before solar noon.
func (c *Calculations) HourAngle() float64 {
	return c.hourAngle
}

// Elevation returns the elevation of the centre of the Sun above the
// horizon in degrees, without refraction.
func (c *Calculations) Elevation() float64 {
	return 90 - c.zenith()
}

func (c *Calculations) zenith() float64 {
	lat := c.coords.Latitude.Degrees()
	return acos(sin(lat)*sin(c.declination) + cos(lat)*cos(c.declination)*cos(c.hourAngle))
}

// Azimuth returns the azimuth of the Sun in degrees clockwise from north.
func (c *Calculations) Azimuth() float64 {
	lat := c.coords.Latitude.Degrees()
	zenith := c.zenith()
	denom := cos(lat) * sin(zenith)
	if math.Abs(denom) < 1e-12 {
		// At a pole, or with the Sun at the zenith, every direction is
		// equivalent.
		if lat > 0 {
			return 180
		}
		return 0
	}
	a := acos((sin(lat)*cos(zenith) - sin(c.declination)) / denom)
	if c.hourAngle > 0 {
		return normalize(a+180, 360)
	}
	return normalize(540-a, 360)
}

// midnight returns the start of the instant's civil date in the instant's
// location.
func (c *Calculations) midnight() time.Time {
	y, m, d := c.instant.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.instant.Location())
}

func normalize(v, m float64) float64 {
	v = math.Mod(v, m)
	if v < 0 {
		v += m
	}
	return v
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

func sin(d float64) float64 { return math.Sin(radians(d)) }
func cos(d float64) float64 { return math.Cos(radians(d)) }

// asin and acos clamp their argument so that rounding just outside of
// [-1, 1] does not produce NaN.
func asin(x float64) float64 { return degrees(math.Asin(clamp(x))) }
func acos(x float64) float64 { return degrees(math.Acos(clamp(x))) }

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
