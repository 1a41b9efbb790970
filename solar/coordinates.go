package solar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloudeng.io/errors"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
	minAltitude  = -90.0
	maxAltitude  = 90.0
)

// checkRange returns v if it lies within [lo, hi]. NaN is always rejected.
func checkRange(field string, v, lo, hi float64) (float64, error) {
	if v >= lo && v <= hi {
		return v, nil
	}
	return 0, &ValidationError{Field: field, Min: lo, Max: hi, Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func parseRange(field, s string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Min: lo, Max: hi, Value: s}
	}
	return checkRange(field, v, lo, hi)
}

// Latitude is a latitude in decimal degrees, positive to the north.
// The zero value is the equator.
type Latitude struct {
	degrees float64
}

// NewLatitude returns a Latitude, or a *ValidationError if v is outside
// of [-90, 90].
func NewLatitude(v float64) (Latitude, error) {
	d, err := checkRange("latitude", v, minLatitude, maxLatitude)
	return Latitude{degrees: d}, err
}

// ParseLatitude parses a decimal latitude such as "51.4769" or "-33.9".
func ParseLatitude(s string) (Latitude, error) {
	d, err := parseRange("latitude", s, minLatitude, maxLatitude)
	return Latitude{degrees: d}, err
}

// Degrees returns the latitude in decimal degrees.
func (l Latitude) Degrees() float64 {
	return l.degrees
}

func (l Latitude) String() string {
	if l.degrees < 0 {
		return fmt.Sprintf("%.4fS", math.Abs(l.degrees))
	}
	return fmt.Sprintf("%.4fN", l.degrees)
}

// Longitude is a longitude in decimal degrees, positive to the east.
// The zero value is the prime meridian.
type Longitude struct {
	degrees float64
}

// NewLongitude returns a Longitude, or a *ValidationError if v is outside
// of [-180, 180].
func NewLongitude(v float64) (Longitude, error) {
	d, err := checkRange("longitude", v, minLongitude, maxLongitude)
	return Longitude{degrees: d}, err
}

// ParseLongitude parses a decimal longitude such as "-0.0005".
func ParseLongitude(s string) (Longitude, error) {
	d, err := parseRange("longitude", s, minLongitude, maxLongitude)
	return Longitude{degrees: d}, err
}

// Degrees returns the longitude in decimal degrees.
func (l Longitude) Degrees() float64 {
	return l.degrees
}

func (l Longitude) String() string {
	if l.degrees < 0 {
		return fmt.Sprintf("%.4fW", math.Abs(l.degrees))
	}
	return fmt.Sprintf("%.4fE", l.degrees)
}

// Coordinates is a position on the Earth's surface.
type Coordinates struct {
	Latitude  Latitude
	Longitude Longitude
}

// NewCoordinates pairs an already validated latitude and longitude.
func NewCoordinates(lat Latitude, lon Longitude) Coordinates {
	return Coordinates{Latitude: lat, Longitude: lon}
}

// ParseCoordinates parses both parts of a coordinate pair. All invalid
// parts are reported, each as a *ValidationError.
func ParseCoordinates(lat, lon string) (Coordinates, error) {
	var errs errors.M
	la, err := ParseLatitude(lat)
	errs.Append(err)
	lo, err := ParseLongitude(lon)
	errs.Append(err)
	if err := errs.Err(); err != nil {
		return Coordinates{}, err
	}
	return NewCoordinates(la, lo), nil
}

func (c Coordinates) String() string {
	return c.Latitude.String() + " " + c.Longitude.String()
}

// Altitude is an angle relative to the horizon in degrees, used both for
// elevations and for custom event thresholds.
type Altitude struct {
	degrees float64
}

// NewAltitude returns an Altitude, or a *ValidationError if v is outside
// of [-90, 90].
func NewAltitude(v float64) (Altitude, error) {
	d, err := checkRange("altitude", v, minAltitude, maxAltitude)
	return Altitude{degrees: d}, err
}

// ParseAltitude parses a decimal altitude.
func ParseAltitude(s string) (Altitude, error) {
	d, err := parseRange("altitude", s, minAltitude, maxAltitude)
	return Altitude{degrees: d}, err
}

// MustAltitude is like NewAltitude but panics on an invalid value. It is
// intended for constants.
func MustAltitude(v float64) Altitude {
	a, err := NewAltitude(v)
	if err != nil {
		panic(err)
	}
	return a
}

// Degrees returns the altitude in decimal degrees.
func (a Altitude) Degrees() float64 {
	return a.degrees
}

func (a Altitude) String() string {
	return strconv.FormatFloat(a.degrees, 'f', -1, 64)
}
