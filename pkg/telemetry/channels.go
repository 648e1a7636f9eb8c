package telemetry

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Semantic field names of the telemetry vocabulary. The resampler only
// retains channels mapped to one of these.
const (
	FieldSpeed         = "speed"          // km/h
	FieldThrottle      = "throttle"       // accelerator pedal, 0-100%
	FieldThrottleBlade = "throttleBlade"  // throttle blade angle, 0-100%
	FieldBrakeFront    = "brakeFront"     // bar
	FieldBrakeRear     = "brakeRear"      // bar
	FieldBrake         = "brake"          // derived mean of front/rear
	FieldGear          = "gear"           // 0-6
	FieldRPM           = "rpm"            // engine speed
	FieldSteering      = "steeringAngle"  // degrees
	FieldAccelLong     = "accelLong"      // g
	FieldAccelLat      = "accelLat"       // g
	FieldGPSLat        = "gpsLatMinutes"  // GPS latitude minutes
	FieldGPSLong       = "gpsLongMinutes" // GPS longitude minutes
	FieldLapDistance   = "lapDistance"    // meters from start/finish
)

// ChannelSpec maps one raw stream channel name to a semantic field and
// declares its valid range. Out-of-range numeric values are clipped to
// [Min,Max] when HasRange is set; non-numeric values become Default.
type ChannelSpec struct {
	Name     string  `yaml:"name"`  // raw name in the stream, e.g. "pbrake_f"
	Field    string  `yaml:"field"` // semantic field, e.g. "brakeFront"
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	HasRange bool    `yaml:"hasRange"`
	Default  float64 `yaml:"default"`
	Integer  bool    `yaml:"integer"`
}

// Clean normalizes a raw channel value: non-numeric or non-finite
// input becomes the channel default, ranged channels are clipped,
// integer channels are truncated. The result is never NaN.
func (s *ChannelSpec) Clean(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return s.Default
	}
	if s.HasRange {
		v = math.Max(s.Min, math.Min(s.Max, v))
	}
	if s.Integer {
		v = math.Trunc(v)
	}
	return v
}

// ChannelMap is the explicit, versioned channel-name-to-semantic-field
// table. It replaces any loose substring matching on stream column
// names: unknown semantic fields fail at load time.
type ChannelMap struct {
	Version  int           `yaml:"version"`
	Channels []ChannelSpec `yaml:"channels"`

	byName map[string]*ChannelSpec
}

var knownFields = map[string]struct{}{
	FieldSpeed: {}, FieldThrottle: {}, FieldThrottleBlade: {},
	FieldBrakeFront: {}, FieldBrakeRear: {}, FieldGear: {}, FieldRPM: {},
	FieldSteering: {}, FieldAccelLong: {}, FieldAccelLat: {},
	FieldGPSLat: {}, FieldGPSLong: {}, FieldLapDistance: {},
}

// DefaultChannelMap returns the built-in mapping for the GR86 logger
// channel names.
func DefaultChannelMap() *ChannelMap {
	m := &ChannelMap{
		Version: 1,
		Channels: []ChannelSpec{
			{Name: "speed", Field: FieldSpeed, Min: 0, Max: 250, HasRange: true},
			{Name: "aps", Field: FieldThrottle, Min: 0, Max: 100, HasRange: true},
			{Name: "ath", Field: FieldThrottleBlade, Min: 0, Max: 100, HasRange: true},
			{Name: "pbrake_f", Field: FieldBrakeFront, Min: 0, Max: 100, HasRange: true},
			{Name: "pbrake_r", Field: FieldBrakeRear, Min: 0, Max: 100, HasRange: true},
			{Name: "gear", Field: FieldGear, Min: 0, Max: 6, HasRange: true, Default: 4, Integer: true},
			{Name: "nmot", Field: FieldRPM, Min: 0, Max: 8500, HasRange: true, Default: 5000},
			{Name: "Steering_Angle", Field: FieldSteering, Min: -540, Max: 540, HasRange: true},
			{Name: "accx_can", Field: FieldAccelLong, Min: -3, Max: 3, HasRange: true},
			{Name: "accy_can", Field: FieldAccelLat, Min: -3, Max: 3, HasRange: true},
			{Name: "VBOX_Lat_Min", Field: FieldGPSLat},
			{Name: "VBOX_Long_Minutes", Field: FieldGPSLong},
			{Name: "Laptrigger_lapdist_dls", Field: FieldLapDistance},
		},
	}
	if err := m.validate(); err != nil {
		panic(err) // built-in table is checked by tests
	}
	return m
}

// LoadChannelMap reads a YAML mapping table and validates it.
func LoadChannelMap(path string) (*ChannelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &ChannelMap{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("channel map %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("channel map %s: %w", path, err)
	}
	return m, nil
}

func (m *ChannelMap) validate() error {
	if len(m.Channels) == 0 {
		return fmt.Errorf("no channels defined")
	}
	m.byName = make(map[string]*ChannelSpec, len(m.Channels))
	seenField := make(map[string]string)
	for i := range m.Channels {
		c := &m.Channels[i]
		if c.Name == "" || c.Field == "" {
			return fmt.Errorf("channel %d: name and field are required", i)
		}
		if _, ok := knownFields[c.Field]; !ok {
			return fmt.Errorf("channel %q: unknown semantic field %q", c.Name, c.Field)
		}
		if prev, dup := seenField[c.Field]; dup {
			return fmt.Errorf("field %q mapped by both %q and %q", c.Field, prev, c.Name)
		}
		if _, dup := m.byName[c.Name]; dup {
			return fmt.Errorf("channel %q mapped twice", c.Name)
		}
		seenField[c.Field] = c.Name
		m.byName[c.Name] = c
	}
	return nil
}

// Lookup resolves a raw stream channel name. Channels not in the map
// are not retained by the resampler.
func (m *ChannelMap) Lookup(raw string) (*ChannelSpec, bool) {
	c, ok := m.byName[raw]
	return c, ok
}
