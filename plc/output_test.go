package plc

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
)

type fakeWriter struct {
	address  uint16
	quantity uint16
	value    []byte
	err      error
}

func (f *fakeWriter) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	f.address, f.quantity, f.value = address, quantity, value
	return nil, f.err
}

func TestEncode(t *testing.T) {
	tests := []struct {
		elevation float64
		azimuth   float64
		part      solar.DayPart
		want      []byte
	}{
		{61.96, 180.04, solar.Day, []byte{0x18, 0x34, 0x07, 0x08, 0x00, 0x04}},
		{-12.5, 0, solar.AstronomicalTwilight, []byte{0xFB, 0x1E, 0x00, 0x00, 0x00, 0x01}},
		{-90, 359.97, solar.Night, []byte{0xDC, 0xD8, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		got := Encode(&report.PollReport{Elevation: tt.elevation, Azimuth: tt.azimuth, DayPart: tt.part})
		if string(got) != string(tt.want) {
			t.Errorf("Encode(%v, %v, %v) = % x, want % x", tt.elevation, tt.azimuth, tt.part, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	coords, err := solar.ParseCoordinates("56.9496", "24.1052")
	if err != nil {
		t.Fatal(err)
	}
	r := report.NewPoll(solar.New(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), coords))

	elevation, azimuth, part, err := Decode(Encode(r))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(elevation-r.Elevation) > 0.005 {
		t.Errorf("elevation: got %v, want %v", elevation, r.Elevation)
	}
	if math.Abs(azimuth-r.Azimuth) > 0.05 {
		t.Errorf("azimuth: got %v, want %v", azimuth, r.Azimuth)
	}
	if part != r.DayPart {
		t.Errorf("day part: got %v, want %v", part, r.DayPart)
	}

	if _, _, _, err := Decode([]byte{1, 2}); err == nil {
		t.Error("expected an error for a short block")
	}
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	o := &Output{client: w, base: 40100}
	r := &report.PollReport{Elevation: 10, Azimuth: 90, DayPart: solar.Day}
	if err := o.Publish(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if w.address != 40100 || w.quantity != RegisterCount || string(w.value) != string(Encode(r)) {
		t.Errorf("unexpected write: %+v", w)
	}

	w.err = errors.New("illegal data address")
	if err := o.Publish(context.Background(), r); err == nil {
		t.Error("expected the write error to be returned")
	}
}
