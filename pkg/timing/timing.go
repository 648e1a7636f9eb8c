// Package timing converts race-clock values between their wire
// representation and seconds and filters sentinel lap numbers.
package timing

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// LapSentinel is emitted by the logger hardware when no valid lap
	// number is available.
	LapSentinel = 32768
	maxLapNo    = 100

	// PlausibleLapCeiling rejects corrupt rows; no valid lap on the
	// supported tracks comes close to this.
	PlausibleLapCeiling = 180.0
)

// ParseLapTime parses either a colon-delimited "M:SS.mmm" race-clock
// string or a bare numeric seconds string. It returns ok=false on
// malformed input so the caller can drop or impute the row.
func ParseLapTime(raw string) (secs float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	mins, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, false
	}
	rest, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, false
	}
	return mins*60 + rest, true
}

// NormalizeLapNumber filters the hardware sentinel and out-of-range
// values. Invalid laps are reported via ok=false rather than coerced,
// so lap-1 and lap-100 rows stay intact downstream.
func NormalizeLapNumber(raw int) (lap int, ok bool) {
	if raw == LapSentinel || raw < 1 || raw > maxLapNo {
		return 0, false
	}
	return raw, true
}

// FormatLapTime renders seconds as "M:SS.mmm", the inverse of
// ParseLapTime for values below one hour.
func FormatLapTime(secs float64) string {
	mins := int(secs) / 60
	rest := secs - float64(mins*60)
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// FormatRaceTime renders seconds as "H:MM:SS.ss" for race-length values.
func FormatRaceTime(secs float64) string {
	hours := int(secs) / 3600
	mins := (int(secs) % 3600) / 60
	rest := secs - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%d:%02d:%05.2f", hours, mins, rest)
}
