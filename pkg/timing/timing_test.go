//nolint:funlen // table tests
package timing

import (
	"math"
	"testing"
)

func TestParseLapTime(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOk bool
	}{
		{name: "race clock", raw: "1:36.456", want: 96.456, wantOk: true},
		{name: "bare seconds", raw: "96.456", want: 96.456, wantOk: true},
		{name: "integer seconds", raw: "96", want: 96, wantOk: true},
		{name: "leading space", raw: " 1:36.456 ", want: 96.456, wantOk: true},
		{name: "empty", raw: "", wantOk: false},
		{name: "garbage", raw: "abc", wantOk: false},
		{name: "too many parts", raw: "1:2:3", wantOk: false},
		{name: "bad minutes", raw: "x:36.456", wantOk: false},
		{name: "bad seconds", raw: "1:xx", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLapTime(tt.raw)
			if ok != tt.wantOk {
				t.Errorf("ParseLapTime(%q) ok = %v, want %v", tt.raw, ok, tt.wantOk)
				return
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseLapTime(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseLapTimeRoundTrip(t *testing.T) {
	for _, secs := range []float64{60, 75.123, 96.456, 119.999, 179.5} {
		got, ok := ParseLapTime(FormatLapTime(secs))
		if !ok {
			t.Fatalf("round trip of %v failed to parse", secs)
		}
		if math.Abs(got-secs) > 1e-3 {
			t.Errorf("round trip of %v = %v", secs, got)
		}
	}
}

func TestNormalizeLapNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    int
		want   int
		wantOk bool
	}{
		{name: "first lap", raw: 1, want: 1, wantOk: true},
		{name: "last valid lap", raw: 100, want: 100, wantOk: true},
		{name: "sentinel", raw: 32768, wantOk: false},
		{name: "zero", raw: 0, wantOk: false},
		{name: "negative", raw: -3, wantOk: false},
		{name: "beyond range", raw: 101, wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeLapNumber(tt.raw)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("NormalizeLapNumber(%d) = (%d,%v), want (%d,%v)",
					tt.raw, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestFormatRaceTime(t *testing.T) {
	if got := FormatRaceTime(3723.5); got != "1:02:03.50" {
		t.Errorf("FormatRaceTime(3723.5) = %q", got)
	}
	if got := FormatRaceTime(59.99); got != "0:00:59.99" {
		t.Errorf("FormatRaceTime(59.99) = %q", got)
	}
}
