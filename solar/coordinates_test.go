package solar

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewLatitude_RoundTrip(t *testing.T) {
	for _, v := range []float64{-90, -89.9999, -45.5, 0, 0.0005, 51.4769, 90} {
		lat, err := NewLatitude(v)
		if err != nil {
			t.Errorf("NewLatitude(%v): unexpected error: %v", v, err)
			continue
		}
		if got := lat.Degrees(); got != v {
			t.Errorf("NewLatitude(%v).Degrees() = %v", v, got)
		}
	}
}

func TestNewLatitude_OutOfRange(t *testing.T) {
	for _, v := range []float64{-90.0001, 90.0001, -180, 1000, math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, err := NewLatitude(v); err == nil {
			t.Errorf("NewLatitude(%v): expected an error", v)
		}
	}
}

func TestNewLongitude(t *testing.T) {
	for _, v := range []float64{-180, -0.0005, 0, 122.03, 180} {
		lon, err := NewLongitude(v)
		if err != nil {
			t.Errorf("NewLongitude(%v): unexpected error: %v", v, err)
			continue
		}
		if got := lon.Degrees(); got != v {
			t.Errorf("NewLongitude(%v).Degrees() = %v", v, got)
		}
	}
	for _, v := range []float64{-180.0001, 180.0001, 360, math.NaN()} {
		if _, err := NewLongitude(v); err == nil {
			t.Errorf("NewLongitude(%v): expected an error", v)
		}
	}
}

func TestNewAltitude(t *testing.T) {
	for _, v := range []float64{-90, -18, 0, 0.833, 90} {
		alt, err := NewAltitude(v)
		if err != nil {
			t.Errorf("NewAltitude(%v): unexpected error: %v", v, err)
			continue
		}
		if got := alt.Degrees(); got != v {
			t.Errorf("NewAltitude(%v).Degrees() = %v", v, got)
		}
	}
	for _, v := range []float64{-90.5, 90.5, math.NaN()} {
		if _, err := NewAltitude(v); err == nil {
			t.Errorf("NewAltitude(%v): expected an error", v)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := NewLatitude(91)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "latitude" || verr.Value != "91" {
		t.Errorf("unexpected error contents: %+v", verr)
	}
	want := "latitude must be between -90.0 and 90.0, inclusive, got '91'"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	lat, err := ParseLatitude(" 51.4769 ")
	if err != nil || lat.Degrees() != 51.4769 {
		t.Errorf("ParseLatitude: got %v, %v", lat, err)
	}
	lon, err := ParseLongitude("-0.0005")
	if err != nil || lon.Degrees() != -0.0005 {
		t.Errorf("ParseLongitude: got %v, %v", lon, err)
	}
	alt, err := ParseAltitude("-4.5")
	if err != nil || alt.Degrees() != -4.5 {
		t.Errorf("ParseAltitude: got %v, %v", alt, err)
	}

	_, err = ParseLatitude("north")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Value != "north" {
		t.Errorf("ParseLatitude(north): expected validation error, got %v", err)
	}
}

func TestParseCoordinates(t *testing.T) {
	c, err := ParseCoordinates("51.4769", "-0.0005")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := c.String(), "51.4769N 0.0005W"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	_, err = ParseCoordinates("100", "200")
	if err == nil {
		t.Fatal("expected an error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected a *ValidationError within %v", err)
	}
	for _, field := range []string{"latitude", "longitude"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestCoordinateStrings(t *testing.T) {
	lat, _ := NewLatitude(-33.9)
	lon, _ := NewLongitude(151.2)
	if got, want := lat.String(), "33.9000S"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := lon.String(), "151.2000E"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMustAltitudePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	MustAltitude(91)
}
