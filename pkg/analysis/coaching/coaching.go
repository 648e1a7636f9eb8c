// Package coaching compares laps against the personal best at sector
// and telemetry level: theoretical best lap, per-sector opportunities
// and braking-zone segmentation.
package coaching

import (
	"fmt"
	"sort"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/stats"
	"github.com/raceng/strategy-engine-go/pkg/telemetry"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

const (
	// sector losses below this are noise, not coaching material
	opportunityThreshold = 0.1
	// front brake pressure marking a braking zone, bar
	brakingThreshold = 10.0
)

// sector-keyed advice, fixed per track layout convention
var sectorAdvice = map[string]string{
	"S1": "Focus on entry speed and early apex in Turn 1-3",
	"S2": "Check mid-corner speed and throttle application",
	"S3": "Maximize exit speed for main straight",
}

type Comparator struct {
	l *log.Logger
}

func NewComparator() *Comparator {
	return &Comparator{l: log.Default().Named("analysis.coaching")}
}

// PotentialLapTime combines the vehicle's best individual sectors into
// a theoretical best lap. The target may be unachievable since the
// sectors can come from different laps.
func (c *Comparator) PotentialLapTime(
	laps []model.LapRecord,
	vehicleID string,
) model.PotentialLap {
	rows := model.VehicleLaps(laps, vehicleID)
	if len(rows) == 0 {
		return model.PotentialLap{Error: "no data for vehicle"}
	}

	best := [4]float64{}
	for s := 1; s <= 3; s++ {
		vals := make([]float64, 0, len(rows))
		for i := range rows {
			if v := rows[i].Sector(s); v > 0 {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return model.PotentialLap{Error: "missing sector times"}
		}
		best[s], _ = stats.Min(vals)
	}
	theoretical := best[1] + best[2] + best[3]

	actual := 0.0
	for i := range rows {
		if !rows[i].HasTime || rows[i].LapTime >= timing.PlausibleLapCeiling {
			continue
		}
		if actual == 0 || rows[i].LapTime < actual {
			actual = rows[i].LapTime
		}
	}
	return model.PotentialLap{
		TheoreticalBest:      stats.Round(theoretical, 3),
		ActualBest:           stats.Round(actual, 3),
		ImprovementPotential: stats.Round(actual-theoretical, 3),
		BestS1:               stats.Round(best[1], 3),
		BestS2:               stats.Round(best[2], 3),
		BestS3:               stats.Round(best[3], 3),
	}
}

// CoachingOpportunities flags the sectors of the given lap that are
// more than 0.1s slower than the personal-best lap's sectors, biggest
// loss first.
func (c *Comparator) CoachingOpportunities(
	laps []model.LapRecord,
	vehicleID string,
	current model.LapRecord,
) []model.CoachingOpportunity {
	best, ok := bestLap(laps, vehicleID)
	if !ok {
		return nil
	}

	ret := make([]model.CoachingOpportunity, 0, 3)
	for s := 1; s <= 3; s++ {
		delta := current.Sector(s) - best.Sector(s)
		if delta <= opportunityThreshold {
			continue
		}
		sector := fmt.Sprintf("S%d", s)
		ret = append(ret, model.CoachingOpportunity{
			Sector:     sector,
			TimeLoss:   stats.Round(delta, 3),
			Message:    fmt.Sprintf("Sector %d: %.3fs slower than your best", s, delta),
			Suggestion: sectorAdvice[sector],
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].TimeLoss > ret[j].TimeLoss
	})
	return ret
}

// BrakingZones segments the vehicle's telemetry rows into braking
// zones: runs of samples with front brake pressure above 10 bar. There
// is no minimum duration, so single-sample spikes count as zones.
// Frames carry rows for every vehicle on track, so the filter has to
// happen before segmentation or interleaved cars merge into one zone.
func (c *Comparator) BrakingZones(
	frame *model.TelemetryFrame,
	vehicleID string,
) []model.BrakingZone {
	rows := orderedByDistance(vehicleRows(frame, vehicleID))
	if len(rows) == 0 {
		return nil
	}

	zones := make([]model.BrakingZone, 0)
	i := 0
	for i < len(rows) {
		if rows[i].Value(telemetry.FieldBrakeFront, 0) <= brakingThreshold {
			i++
			continue
		}
		start := i
		peakPressure := 0.0
		peakDecel := 0.0
		for i < len(rows) && rows[i].Value(telemetry.FieldBrakeFront, 0) > brakingThreshold {
			if p := rows[i].Value(telemetry.FieldBrakeFront, 0); p > peakPressure {
				peakPressure = p
			}
			if g := rows[i].Value(telemetry.FieldAccelLong, 0); g < peakDecel {
				peakDecel = g
			}
			i++
		}
		end := i - 1
		zones = append(zones, model.BrakingZone{
			StartDistance:   rows[start].Value(telemetry.FieldLapDistance, 0),
			EntrySpeed:      rows[start].Value(telemetry.FieldSpeed, 0),
			ExitSpeed:       rows[end].Value(telemetry.FieldSpeed, 0),
			PeakPressure:    peakPressure,
			PeakDecel:       peakDecel,
			DurationSamples: end - start + 1,
		})
	}
	c.l.Debug("braking zones", log.Int("lap", frame.Lap), log.Int("zones", len(zones)))
	return zones
}

// CompareLaps compares the vehicle's average speed across two frames,
// typically a fast and a slow lap of the same vehicle.
func (c *Comparator) CompareLaps(
	fast, slow *model.TelemetryFrame,
	vehicleID string,
) model.LapComparison {
	fastRows := vehicleRows(fast, vehicleID)
	slowRows := vehicleRows(slow, vehicleID)
	if len(fastRows) == 0 || len(slowRows) == 0 {
		return model.LapComparison{Error: "insufficient data for comparison"}
	}
	fastAvg := avgSpeed(fastRows)
	slowAvg := avgSpeed(slowRows)
	return model.LapComparison{
		FastLap:         fast.Lap,
		SlowLap:         slow.Lap,
		AvgSpeedDiff:    stats.Round(slowAvg-fastAvg, 2),
		FastLapAvgSpeed: stats.Round(fastAvg, 2),
		SlowLapAvgSpeed: stats.Round(slowAvg, 2),
		DataPointsFast:  len(fastRows),
		DataPointsSlow:  len(slowRows),
	}
}

// bestLap returns the vehicle's fastest plausible lap.
func bestLap(laps []model.LapRecord, vehicleID string) (model.LapRecord, bool) {
	found := false
	var best model.LapRecord
	for i := range laps {
		l := &laps[i]
		if l.VehicleID != vehicleID || !l.HasTime ||
			l.LapTime <= 0 || l.LapTime >= timing.PlausibleLapCeiling {
			continue
		}
		if !found || l.LapTime < best.LapTime {
			best = *l
			found = true
		}
	}
	return best, found
}

// orderedByDistance sorts rows by lap distance when the channel is
// present, keeping time order otherwise.
func orderedByDistance(rows []model.TelemetryRow) []model.TelemetryRow {
	hasDist := false
	for i := range rows {
		if _, ok := rows[i].Values[telemetry.FieldLapDistance]; ok {
			hasDist = true
			break
		}
	}
	if !hasDist {
		return rows
	}
	ret := make([]model.TelemetryRow, len(rows))
	copy(ret, rows)
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Value(telemetry.FieldLapDistance, 0) <
			ret[j].Value(telemetry.FieldLapDistance, 0)
	})
	return ret
}

// vehicleRows returns the frame rows belonging to the given vehicle.
func vehicleRows(frame *model.TelemetryFrame, vehicleID string) []model.TelemetryRow {
	if frame.Empty() {
		return nil
	}
	ret := make([]model.TelemetryRow, 0, len(frame.Rows))
	for i := range frame.Rows {
		if frame.Rows[i].VehicleID == vehicleID {
			ret = append(ret, frame.Rows[i])
		}
	}
	return ret
}

func avgSpeed(rows []model.TelemetryRow) float64 {
	vals := make([]float64, 0, len(rows))
	for i := range rows {
		if v, ok := rows[i].Values[telemetry.FieldSpeed]; ok {
			vals = append(vals, v)
		}
	}
	return stats.Mean(vals)
}
