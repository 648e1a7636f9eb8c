package telemetry

import (
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/stats"
)

// FrameMetrics averages the headline channels of a frame. Zero speed
// and RPM samples are excluded (standing starts and dropouts would
// drag the averages). An empty frame yields zero metrics.
func FrameMetrics(frame *model.TelemetryFrame) model.FrameMetrics {
	if frame.Empty() {
		return model.FrameMetrics{}
	}
	speeds := make([]float64, 0, len(frame.Rows))
	throttle := make([]float64, 0, len(frame.Rows))
	brake := make([]float64, 0, len(frame.Rows))
	rpm := make([]float64, 0, len(frame.Rows))
	for i := range frame.Rows {
		row := &frame.Rows[i]
		if v, ok := row.Values[FieldSpeed]; ok && v > 0 {
			speeds = append(speeds, v)
		}
		if v, ok := row.Values[FieldThrottle]; ok {
			throttle = append(throttle, v)
		}
		if v, ok := row.Values[FieldBrake]; ok {
			brake = append(brake, v)
		} else if v, ok := row.Values[FieldBrakeFront]; ok {
			brake = append(brake, v)
		}
		if v, ok := row.Values[FieldRPM]; ok && v > 0 {
			rpm = append(rpm, v)
		}
	}
	maxSpeed, _ := stats.Max(speeds)
	return model.FrameMetrics{
		AvgSpeed:    stats.Round(stats.Mean(speeds), 2),
		MaxSpeed:    stats.Round(maxSpeed, 2),
		AvgThrottle: stats.Round(stats.Mean(throttle), 2),
		AvgBrake:    stats.Round(stats.Mean(brake), 2),
		AvgRPM:      stats.Round(stats.Mean(rpm), 2),
	}
}
