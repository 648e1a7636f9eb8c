package model

// TelemetrySample is one row of the long-format telemetry stream: a
// single channel value for one vehicle at one timestamp. Lap and Value
// are raw (pre-normalization, pre-clip).
type TelemetrySample struct {
	VehicleID string  `json:"vehicleId"`
	Timestamp float64 `json:"timestamp"`
	Lap       int     `json:"lap"`
	Channel   string  `json:"channel"`
	Value     string  `json:"value"`
}

// TelemetryRow is one pivoted row of a TelemetryFrame: all channel
// values for one (timestamp, vehicle) pair, already cleaned.
type TelemetryRow struct {
	Timestamp   float64            `json:"timestamp"`
	VehicleID   string             `json:"vehicleId"`
	Values      map[string]float64 `json:"values"`
	LapProgress float64            `json:"lapProgress"` // [0,1] linear position in the frame
}

// Value returns the named channel value, falling back to def when the
// channel is not present in this row.
func (r *TelemetryRow) Value(channel string, def float64) float64 {
	if v, ok := r.Values[channel]; ok {
		return v
	}
	return def
}

// TelemetryFrame is the wide per-lap table produced by the resampler:
// one row per retained (timestamp, vehicle), time-sorted.
type TelemetryFrame struct {
	Track string         `json:"track"`
	Race  int            `json:"race"`
	Lap   int            `json:"lap"`
	Rows  []TelemetryRow `json:"rows"`
}

// Empty reports whether the frame holds no data. An empty frame is a
// normal "no data for this lap" outcome, not an error.
func (f *TelemetryFrame) Empty() bool {
	return f == nil || len(f.Rows) == 0
}
