package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LapDataFile       string  // path to the lap-indexed analysis CSV
	TelemetryFile     string  // path to the long-format telemetry CSV
	TelemetryCacheDir string  // directory for resampled telemetry frames
	ChannelMapFile    string  // optional YAML override for the channel mapping table
	Track             string  // track name (cache key component)
	Race              int     // race number (cache key component)
	LogLevel          string  // sets the log level (zap log level values)
	LogFormat         string  // text vs json
	LogFilter         string  // zapfilter rules applied to the root logger
	Stride            int     // telemetry sample-rate divisor
	PitStopSeconds    float64 // fixed pit stop time cost
	TankCapacity      float64 // fuel tank capacity in liters
	ConsumptionPerLap float64 // nominal fuel consumption in liters per lap
	NominalStintLaps  int     // nominal stint length for the tire-life heuristic
)
