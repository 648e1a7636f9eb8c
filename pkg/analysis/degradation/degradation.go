// Package degradation derives tire wear signals from the lap table:
// lap-by-lap degradation profiles, a pit-window projection from a
// short-window regression, and early-vs-late sector comparisons.
package degradation

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/stats"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

const (
	// DefaultStintLaps is the nominal stint length driving the linear
	// tire-life heuristic.
	DefaultStintLaps = 15

	// pit is recommended once delta-to-best is projected past this
	pitThreshold = 1.5
	// slopes below this count as stable tires
	minDegradationRate = 0.01
	// regression window over the most recent laps
	recentWindow      = 5
	minRegressionLaps = 3

	msgInsufficientData = "insufficient data"
)

type Analyzer struct {
	stintLaps int
	l         *log.Logger
}

type Option func(a *Analyzer)

// WithStintLaps overrides the nominal stint length of the tire-life
// heuristic.
func WithStintLaps(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.stintLaps = n
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		stintLaps: DefaultStintLaps,
		l:         log.Default().Named("analysis.degradation"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// validLaps returns the vehicle's laps with a plausible parsed lap
// time, sorted by lap number.
func validLaps(laps []model.LapRecord, vehicleID string) []model.LapRecord {
	ret := make([]model.LapRecord, 0)
	for i := range laps {
		l := &laps[i]
		if l.VehicleID != vehicleID || !l.HasTime {
			continue
		}
		if l.LapTime <= 0 || l.LapTime >= timing.PlausibleLapCeiling {
			continue
		}
		ret = append(ret, *l)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].LapNo < ret[j].LapNo })
	return ret
}

// AnalyzeLapDegradation computes the lap-by-lap degradation view of
// one vehicle. An empty profile means the vehicle has no usable laps.
func (a *Analyzer) AnalyzeLapDegradation(
	laps []model.LapRecord,
	vehicleID string,
) model.DegradationProfile {
	valid := validLaps(laps, vehicleID)
	profile := model.DegradationProfile{VehicleID: vehicleID}
	if len(valid) == 0 {
		return profile
	}

	best, _ := stats.Min(lapTimes(valid))
	worst, _ := stats.Max(lapTimes(valid))
	profile.BestLap = best
	profile.WorstLap = worst
	profile.Points = make([]model.DegradationPoint, 0, len(valid))
	for i := range valid {
		l := &valid[i]
		// trailing 3-lap mean, shorter window at the start of the stint
		start := i - 2
		if start < 0 {
			start = 0
		}
		rolling := stats.Mean(lapTimes(valid[start : i+1]))

		lapDelta := 0.0
		if i > 0 {
			lapDelta = l.LapTime - valid[i-1].LapTime
		}
		tireLife := 100 - float64(l.LapNo)/float64(a.stintLaps)*100
		if tireLife < 0 {
			tireLife = 0
		}
		if tireLife > 100 {
			tireLife = 100
		}
		profile.Points = append(profile.Points, model.DegradationPoint{
			LapNo:       l.LapNo,
			LapTime:     l.LapTime,
			RollingAvg:  stats.Round(rolling, 3),
			DeltaToBest: stats.Round(l.LapTime-best, 3),
			LapDelta:    stats.Round(lapDelta, 3),
			TireLifePct: stats.Round(tireLife, 2),
		})
	}
	return profile
}

// PredictPitWindow projects the pit window from a regression of
// delta-to-best over the most recent laps. Confidence is a data-volume
// heuristic, not a probability.
//
//nolint:gocritic // result record built per branch
func (a *Analyzer) PredictPitWindow(
	laps []model.LapRecord,
	vehicleID string,
	currentLap, totalLaps int,
) model.PitDecision {
	profile := a.AnalyzeLapDegradation(laps, vehicleID)
	points := profile.Points

	recent := make([]model.DegradationPoint, 0, len(points))
	for _, p := range points {
		if p.LapNo >= currentLap-recentWindow {
			recent = append(recent, p)
		}
	}
	if len(recent) < minRegressionLaps && len(points) >= minRegressionLaps {
		// fall back to the tail of the full history
		lo := len(points) - recentWindow
		if lo < 0 {
			lo = 0
		}
		recent = points[lo:]
	}
	if len(recent) < minRegressionLaps {
		return model.PitDecision{
			Confidence: 0,
			Message:    msgInsufficientData,
			Error:      msgInsufficientData,
		}
	}

	xs := make([]float64, len(recent))
	ys := make([]float64, len(recent))
	for i, p := range recent {
		xs[i] = float64(p.LapNo)
		ys[i] = p.DeltaToBest
	}
	fit, ok := stats.Linear(xs, ys)
	if !ok {
		return model.PitDecision{
			Confidence: 0,
			Message:    msgInsufficientData,
			Error:      msgInsufficientData,
		}
	}
	rate := fit.Slope
	currentDelta := fit.At(float64(currentLap))

	if rate <= minDegradationRate {
		return model.PitDecision{
			PitLap:          totalLaps - 1,
			LapsRemaining:   totalLaps - currentLap,
			DegradationRate: stats.Round(rate, 3),
			CurrentDelta:    stats.Round(currentDelta, 3),
			Confidence:      50,
			Message:         "Tires stable, can extend stint",
		}
	}

	lapsUntil := (pitThreshold - currentDelta) / rate
	pitLap := currentLap + int(lapsUntil)
	if pitLap > totalLaps-2 {
		pitLap = totalLaps - 2
	}
	if pitLap < currentLap+1 {
		pitLap = currentLap + 1
	}
	confidence := len(recent) * 20
	if confidence > 100 {
		confidence = 100
	}
	a.l.Debug("pit window",
		log.String("vehicleId", vehicleID), log.Int("pitLap", pitLap),
		log.Float64("rate", rate))
	return model.PitDecision{
		PitLap:          pitLap,
		LapsRemaining:   int(lapsUntil),
		DegradationRate: stats.Round(rate, 3),
		CurrentDelta:    stats.Round(currentDelta, 3),
		Confidence:      confidence,
		Message:         fmt.Sprintf("Pit recommended in %d laps", int(lapsUntil)),
	}
}

// AnalyzeSectorDegradation compares the first three laps against the
// last three per sector. Requires at least 5 laps; returns nil below
// that.
func (a *Analyzer) AnalyzeSectorDegradation(
	laps []model.LapRecord,
	vehicleID string,
) map[string]model.SectorDegradation {
	rows := model.VehicleLaps(laps, vehicleID)
	if len(rows) < 5 {
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].LapNo < rows[j].LapNo })

	ret := make(map[string]model.SectorDegradation, 3)
	for s := 1; s <= 3; s++ {
		early := make([]float64, 0, 3)
		late := make([]float64, 0, 3)
		for i := 0; i < 3; i++ {
			early = append(early, rows[i].Sector(s))
			late = append(late, rows[len(rows)-3+i].Sector(s))
		}
		earlyAvg := stats.Mean(early)
		lateAvg := stats.Mean(late)
		pct := 0.0
		if earlyAvg != 0 {
			pct = (lateAvg - earlyAvg) / earlyAvg * 100
		}
		ret[fmt.Sprintf("s%d", s)] = model.SectorDegradation{
			EarlyAvg:      stats.Round(earlyAvg, 3),
			LateAvg:       stats.Round(lateAvg, 3),
			Delta:         stats.Round(lateAvg-earlyAvg, 3),
			PercentChange: stats.Round(pct, 2),
		}
	}
	return ret
}

// CompareDegradation ranks all other vehicles by recent degradation
// (trailing 3-lap average minus best lap), least degraded first.
// Vehicles with fewer than 3 valid laps are skipped.
func (a *Analyzer) CompareDegradation(
	laps []model.LapRecord,
	vehicleID string,
	currentLap int,
) []model.DegradationComparison {
	ret := make([]model.DegradationComparison, 0)
	for _, comp := range model.Vehicles(laps) {
		if comp == vehicleID {
			continue
		}
		valid := validLaps(laps, comp)
		upTo := make([]model.LapRecord, 0, len(valid))
		for i := range valid {
			if valid[i].LapNo <= currentLap {
				upTo = append(upTo, valid[i])
			}
		}
		if len(upTo) < 3 {
			continue
		}
		times := lapTimes(upTo)
		best, _ := stats.Min(times)
		recentAvg := stats.Mean(times[len(times)-3:])
		ret = append(ret, model.DegradationComparison{
			VehicleID:    comp,
			Degradation:  stats.Round(recentAvg-best, 3),
			RecentAvgLap: stats.Round(recentAvg, 3),
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Degradation < ret[j].Degradation
	})
	return ret
}

func lapTimes(laps []model.LapRecord) []float64 {
	return lo.Map(laps, func(l model.LapRecord, _ int) float64 { return l.LapTime })
}
