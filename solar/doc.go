// Package solar computes the position of the Sun and the times of solar events.
//
// A Calculations value is an immutable snapshot of the Sun's position for one
// instant at one location. Event times are resolved from a snapshot:
//
//	lat, _ := solar.NewLatitude(51.4769)
//	lon, _ := solar.NewLongitude(-0.0005)
//	calcs := solar.New(time.Now(), solar.NewCoordinates(lat, lon))
//
//	fmt.Printf("Elevation: %.2f°\n", calcs.Elevation())
//	if rise, ok := solar.Resolve(solar.MustEventFor(solar.Sunrise), calcs).Time(); ok {
//		fmt.Println("Sunrise:", rise)
//	}
//
// Events are anchored to the civil date of the snapshot's instant in the
// instant's own location; an event that does not happen that day (polar day
// or polar night) resolves to an unset EventTime rather than an error.
//
// The formulas are the NOAA implementation of the algorithms in Jean Meeus,
// Astronomical Algorithms.
package solar
