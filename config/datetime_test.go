package config

import (
	"testing"
	"time"
)

func TestParseTimeZone(t *testing.T) {
	tests := []struct {
		in     string
		offset int
		ok     bool
	}{
		{"+00:00", 0, true},
		{"+01:00", 3600, true},
		{"-04:00", -4 * 3600, true},
		{"+05:45", 5*3600 + 45*60, true},
		{"-23:59", -(23*3600 + 59*60), true},
		{"+24:00", 0, false},
		{"+01:60", 0, false},
		{"01:00", 0, false},
		{"+1:00", 0, false},
		{"UTC", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		loc, err := ParseTimeZone(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTimeZone(%q): got error %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if !tt.ok {
			continue
		}
		name, offset := time.Date(2022, 1, 1, 0, 0, 0, 0, loc).Zone()
		if offset != tt.offset || name != tt.in {
			t.Errorf("ParseTimeZone(%q) = %s %d, want %d", tt.in, name, offset, tt.offset)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2022-06-21")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2022 || d.Month() != time.June || d.Day() != 21 {
		t.Errorf("got %v", d)
	}
	for _, bad := range []string{"2022-13-01", "2022-02-30", "21-06-2022", "today"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected an error", bad)
		}
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "+00:00"},
		{3600, "+01:00"},
		{-(3*3600 + 1800), "-03:30"},
		{5*3600 + 45*60, "+05:45"},
	}
	for _, tt := range tests {
		if got := FormatOffset(tt.offset); got != tt.want {
			t.Errorf("FormatOffset(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestReportInstantDefaultsToToday(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Zone = time.FixedZone("-10:00", -10*3600)
	now := time.Date(2022, 6, 21, 5, 0, 0, 0, time.UTC) // 20 June in the configured zone
	got := cfg.ReportInstant(now)
	want := time.Date(2022, 6, 20, 12, 0, 0, 0, cfg.Zone)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
