package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// ParseDate parses a civil date in the format yyyy-mm-dd.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date - must be in the format 'yyyy-mm-dd', found '%s'", s)
	}
	return d, nil
}

// ParseTimeZone parses a UTC offset of the form [+|-]HH:MM, between -23:59
// and +23:59, into a fixed zone named after the offset.
func ParseTimeZone(s string) (*time.Location, error) {
	m := offsetPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, timeZoneError(s)
	}
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 23 || minutes > 59 {
		return nil, timeZoneError(s)
	}
	offset := hours*3600 + minutes*60
	if m[1] == "-" {
		offset = -offset
	}
	return time.FixedZone(FormatOffset(offset), offset), nil
}

func timeZoneError(s string) error {
	return fmt.Errorf("invalid time zone - expected the format '[+|-]HH:MM' between '-23:59' and '+23:59', found '%s'", s)
}

// FormatOffset formats an offset in seconds east of UTC as [+|-]HH:MM.
func FormatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, seconds%3600/60)
}

// LocalZone returns a fixed zone with the local UTC offset in effect at t.
func LocalZone(t time.Time) *time.Location {
	_, offset := t.Local().Zone()
	return time.FixedZone(FormatOffset(offset), offset)
}
