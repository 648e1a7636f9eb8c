// Package pace classifies a vehicle's race pace over a trailing
// window, ranks it against the field and extrapolates the finish time.
package pace

import (
	"fmt"
	"sort"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/stats"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

const (
	// trailing window for pace and trend
	paceWindow = 5
	// slope thresholds separating stable from improving/degrading
	trendThreshold = 0.01
	// trailing stddev below this counts as consistent
	consistencyThreshold = 0.5

	minValidLaps = 3

	msgInsufficientData = "insufficient data"
)

type Predictor struct {
	l *log.Logger
}

func NewPredictor() *Predictor {
	return &Predictor{l: log.Default().Named("analysis.pace")}
}

// AnalyzeRacePace computes trailing-window pace, consistency and trend
// for one vehicle and ranks it against every other vehicle's trailing
// pace at the same lap.
func (p *Predictor) AnalyzeRacePace(
	laps []model.LapRecord,
	vehicleID string,
	currentLap int,
) model.PaceAnalysis {
	times := validTimes(laps, vehicleID, currentLap)
	if len(times) < minValidLaps {
		return model.PaceAnalysis{Error: msgInsufficientData}
	}

	recent := tail(times, paceWindow)
	currentPace := stats.Mean(recent)
	best, _ := stats.Min(times)
	consistency := stats.StdDev(recent)

	trend := 0.0
	if len(recent) >= minValidLaps {
		xs := make([]float64, len(recent))
		for i := range recent {
			xs[i] = float64(i)
		}
		if fit, ok := stats.Linear(xs, recent); ok {
			trend = fit.Slope
		}
	}

	position := 1
	competitors := 0
	for _, comp := range model.Vehicles(laps) {
		if comp == vehicleID {
			continue
		}
		compTimes := validTimes(laps, comp, currentLap)
		if len(compTimes) == 0 {
			continue
		}
		competitors++
		if stats.Mean(tail(compTimes, paceWindow)) < currentPace {
			position++
		}
	}
	p.l.Debug("race pace",
		log.String("vehicleId", vehicleID), log.Float64("pace", currentPace),
		log.Int("position", position))

	return model.PaceAnalysis{
		CurrentPace:      stats.Round(currentPace, 3),
		BestLap:          stats.Round(best, 3),
		PaceDelta:        stats.Round(currentPace-best, 3),
		Consistency:      stats.Round(consistency, 3),
		TrendPerLap:      stats.Round(trend, 4),
		PacePosition:     position,
		TotalCompetitors: competitors + 1,
		IsImproving:      trend < -trendThreshold,
		IsDegrading:      trend > trendThreshold,
		IsConsistent:     consistency < consistencyThreshold,
	}
}

// PredictFinishTime extrapolates each remaining lap as current pace
// plus the trend times its offset, on top of the elapsed time.
func (p *Predictor) PredictFinishTime(
	laps []model.LapRecord,
	vehicleID string,
	currentLap, totalLaps int,
) model.FinishPrediction {
	pa := p.AnalyzeRacePace(laps, vehicleID, currentLap)
	if pa.Error != "" {
		return model.FinishPrediction{Error: pa.Error}
	}

	elapsed := 0.0
	for _, t := range validTimes(laps, vehicleID, currentLap) {
		elapsed += t
	}

	lapsRemaining := totalLaps - currentLap
	remaining := 0.0
	for i := 0; i < lapsRemaining; i++ {
		remaining += pa.CurrentPace + pa.TrendPerLap*float64(i)
	}
	total := elapsed + remaining

	avgLap := 0.0
	if lapsRemaining > 0 {
		avgLap = remaining / float64(lapsRemaining)
	}
	return model.FinishPrediction{
		FinishTime:      timing.FormatRaceTime(total),
		FinishSeconds:   stats.Round(total, 2),
		TimeElapsed:     stats.Round(elapsed, 2),
		TimeRemaining:   stats.Round(remaining, 2),
		LapsRemaining:   lapsRemaining,
		PredictedAvgLap: stats.Round(avgLap, 3),
	}
}

// SectorPerformance summarizes per-sector strengths against the field
// average up to the current lap.
//
//nolint:gocognit // per-sector accumulation
func (p *Predictor) SectorPerformance(
	laps []model.LapRecord,
	vehicleID string,
	currentLap int,
) model.SectorPerformance {
	rows := vehicleRows(laps, vehicleID, currentLap)
	if len(rows) < minValidLaps {
		return model.SectorPerformance{Error: msgInsufficientData}
	}

	ret := model.SectorPerformance{Sectors: make(map[string]model.SectorStats, 3)}
	type ranked struct {
		name    string
		vsField float64
	}
	rankings := make([]ranked, 0, 3)
	for s := 1; s <= 3; s++ {
		own := make([]float64, 0, len(rows))
		for i := range rows {
			if v := rows[i].Sector(s); v > 0 {
				own = append(own, v)
			}
		}
		if len(own) == 0 {
			continue
		}
		field := make([]float64, 0, len(laps))
		for i := range laps {
			if laps[i].LapNo > currentLap {
				continue
			}
			if v := laps[i].Sector(s); v > 0 {
				field = append(field, v)
			}
		}
		best, _ := stats.Min(own)
		worst, _ := stats.Max(own)
		vsField := stats.Round(stats.Mean(own)-stats.Mean(field), 3)
		name := fmt.Sprintf("s%d", s)
		ret.Sectors[name] = model.SectorStats{
			Best:        stats.Round(best, 3),
			Worst:       stats.Round(worst, 3),
			Average:     stats.Round(stats.Mean(own), 3),
			Current:     stats.Round(rows[len(rows)-1].Sector(s), 3),
			Consistency: stats.Round(stats.StdDev(own), 3),
			VsField:     vsField,
		}
		rankings = append(rankings, ranked{name: name, vsField: vsField})
	}
	if len(rankings) > 0 {
		sort.SliceStable(rankings, func(i, j int) bool {
			return rankings[i].vsField < rankings[j].vsField
		})
		ret.StrongestSector = rankings[0].name
		ret.WeakestSector = rankings[len(rankings)-1].name
	}
	return ret
}

// vehicleRows returns the vehicle's rows up to the current lap, sorted
// by lap number.
func vehicleRows(laps []model.LapRecord, vehicleID string, currentLap int) []model.LapRecord {
	ret := make([]model.LapRecord, 0)
	for i := range laps {
		if laps[i].VehicleID == vehicleID && laps[i].LapNo <= currentLap {
			ret = append(ret, laps[i])
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].LapNo < ret[j].LapNo })
	return ret
}

// validTimes returns the vehicle's plausible lap times up to the
// current lap in lap order.
func validTimes(laps []model.LapRecord, vehicleID string, currentLap int) []float64 {
	rows := vehicleRows(laps, vehicleID, currentLap)
	ret := make([]float64, 0, len(rows))
	for i := range rows {
		if !rows[i].HasTime || rows[i].LapTime <= 0 ||
			rows[i].LapTime >= timing.PlausibleLapCeiling {
			continue
		}
		ret = append(ret, rows[i].LapTime)
	}
	return ret
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
