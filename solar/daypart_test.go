package solar

import (
	"encoding/json"
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		elevation float64
		want      DayPart
	}{
		{-90, Night},
		{-18.0001, Night},
		{math.Inf(-1), Night},
		{-18, AstronomicalTwilight},
		{-12.0001, AstronomicalTwilight},
		{-12, NauticalTwilight},
		{-6.0001, NauticalTwilight},
		{-6, CivilTwilight},
		{0, CivilTwilight},
		{0.8329, CivilTwilight},
		{0.833, Day},
		{45, Day},
		{90, Day},
	}
	for _, tt := range tests {
		if got := Classify(tt.elevation); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.elevation, got, tt.want)
		}
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	prev := Classify(-90)
	for e := -90.0; e <= 90; e += 0.01 {
		got := Classify(e)
		if got < prev {
			t.Fatalf("Classify(%v) = %v after %v", e, got, prev)
		}
		prev = got
	}
}

func TestDayPartJSON(t *testing.T) {
	b, err := json.Marshal(map[string]DayPart{"part": NauticalTwilight})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"part":"Nautical Twilight"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
