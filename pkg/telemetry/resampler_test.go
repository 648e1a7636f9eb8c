//nolint:funlen // table tests
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceng/strategy-engine-go/pkg/model"
)

func writeStream(t *testing.T, rows []string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,vehicle_id,lap,telemetry_name,telemetry_value\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "telemetry.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func sampleRows() []string {
	return []string{
		// lap 1 noise before the target lap
		"9.0,GR86-004-13,1,speed,180.0",
		"9.0,GR86-004-13,1,pbrake_f,0.0",
		// sentinel lap rows must be ignored
		"9.5,GR86-004-13,32768,speed,10.0",
		// target lap 2
		"10.0,GR86-004-13,2,speed,142.5",
		"10.0,GR86-004-13,2,pbrake_f,20.0",
		"10.0,GR86-004-13,2,pbrake_r,10.0",
		"10.0,GR86-004-13,2,aps,150.0", // clipped to 100
		"10.1,GR86-004-13,2,speed,138.0",
		"10.1,GR86-004-13,2,pbrake_f,35.0",
		"10.1,GR86-004-13,2,pbrake_r,15.0",
		"10.2,GR86-004-13,2,speed,133.0",
		"10.2,GR86-004-13,2,gear,bad-value", // defaults to 4
		// duplicate channel at same timestamp: first wins
		"10.0,GR86-004-13,2,speed,999.0",
		// lap 3 afterwards
		"11.0,GR86-004-13,3,speed,170.0",
	}
}

func TestProcessLap(t *testing.T) {
	path := writeStream(t, sampleRows())
	r := NewResampler()

	frame, err := r.ProcessLap(path, "barber", 1, 2, 1)
	require.NoError(t, err)
	require.Len(t, frame.Rows, 3)

	first := frame.Rows[0]
	assert.Equal(t, "GR86-004-13", first.VehicleID)
	assert.InDelta(t, 142.5, first.Values[FieldSpeed], 1e-9)
	assert.InDelta(t, 100.0, first.Values[FieldThrottle], 1e-9, "clipped throttle")
	assert.InDelta(t, 15.0, first.Values[FieldBrake], 1e-9, "mean of front/rear")
	assert.InDelta(t, 0.0, first.LapProgress, 1e-9)
	assert.InDelta(t, 0.5, frame.Rows[1].LapProgress, 1e-9)
	assert.InDelta(t, 1.0, frame.Rows[2].LapProgress, 1e-9)
	assert.InDelta(t, 4.0, frame.Rows[2].Values[FieldGear], 1e-9, "bad gear defaults")
}

func TestProcessLapNoData(t *testing.T) {
	path := writeStream(t, sampleRows())
	r := NewResampler()

	frame, err := r.ProcessLap(path, "barber", 1, 99, DefaultStride)
	require.NoError(t, err, "no matching rows is a normal outcome")
	assert.True(t, frame.Empty())
}

func TestProcessLapStride(t *testing.T) {
	rows := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows,
			fmt.Sprintf("%0.2f,GR86-004-13,2,speed,%0.1f", 10.0+float64(i)/100, 100.0+float64(i)))
	}
	path := writeStream(t, rows)
	r := NewResampler()

	frame, err := r.ProcessLap(path, "barber", 1, 2, 10)
	require.NoError(t, err)
	assert.Len(t, frame.Rows, 10)
}

func TestProcessLapBoundedScan(t *testing.T) {
	rows := []string{
		"10.0,GR86-004-13,2,speed,142.5",
		"10.1,GR86-004-13,2,speed,141.0",
	}
	// filler rows on another lap, then a late straggler on the target lap
	for i := 0; i < 50; i++ {
		rows = append(rows, fmt.Sprintf("%0.2f,GR86-004-13,3,speed,150.0", 20.0+float64(i)))
	}
	rows = append(rows, "99.0,GR86-004-13,2,speed,90.0")
	path := writeStream(t, rows)

	r := NewResampler(WithChunkSize(10), WithScanGrace(2))
	frame, err := r.ProcessLap(path, "barber", 1, 2, 1)
	require.NoError(t, err)
	// straggler beyond the bounded window is not picked up
	require.Len(t, frame.Rows, 2)
	assert.InDelta(t, 142.5, frame.Rows[0].Values[FieldSpeed], 1e-9)
}

func TestProcessLapMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("timestamp,vehicle_id,lap\n1.0,x,1\n"), 0o644))
	r := NewResampler()
	_, err := r.ProcessLap(path, "barber", 1, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestProcessLapCacheIdempotent(t *testing.T) {
	path := writeStream(t, sampleRows())
	cache, err := NewFrameCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	r := NewResampler(WithCache(cache))

	cold, err := r.ProcessLap(path, "barber", 1, 2, 1)
	require.NoError(t, err)
	require.False(t, cold.Empty())

	// remove the source: a warm read must not touch it
	require.NoError(t, os.Remove(path))

	warm, err := r.ProcessLap(path, "barber", 1, 2, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(cold, warm); diff != "" {
		t.Errorf("warm cache read differs from cold computation (-cold +warm):\n%s", diff)
	}
}

func TestFastestLapFrame(t *testing.T) {
	path := writeStream(t, sampleRows())
	laps := []model.LapRecord{
		{VehicleID: "13", LapNo: 1, LapTime: 97.2, HasTime: true},
		{VehicleID: "13", LapNo: 2, LapTime: 96.0, HasTime: true},
		{VehicleID: "13", LapNo: 3, LapTime: 250.0, HasTime: true}, // implausible
		{VehicleID: "13", LapNo: 4},                                // no time
	}
	r := NewResampler()
	frame, lap, err := r.FastestLapFrame(path, "barber", 1, laps, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, lap)
	assert.False(t, frame.Empty())

	_, lap, err = r.FastestLapFrame(path, "barber", 1, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, -1, lap)
}

func TestFrameMetrics(t *testing.T) {
	frame := &model.TelemetryFrame{
		Rows: []model.TelemetryRow{
			{Values: map[string]float64{FieldSpeed: 0, FieldThrottle: 20, FieldBrake: 10, FieldRPM: 0}},
			{Values: map[string]float64{FieldSpeed: 100, FieldThrottle: 40, FieldBrake: 20, FieldRPM: 6000}},
			{Values: map[string]float64{FieldSpeed: 140, FieldThrottle: 60, FieldBrake: 30, FieldRPM: 7000}},
		},
	}
	m := FrameMetrics(frame)
	assert.InDelta(t, 120.0, m.AvgSpeed, 1e-9, "zero speeds excluded")
	assert.InDelta(t, 140.0, m.MaxSpeed, 1e-9)
	assert.InDelta(t, 40.0, m.AvgThrottle, 1e-9)
	assert.InDelta(t, 20.0, m.AvgBrake, 1e-9)
	assert.InDelta(t, 6500.0, m.AvgRPM, 1e-9)

	assert.Equal(t, model.FrameMetrics{}, FrameMetrics(&model.TelemetryFrame{}))
}
