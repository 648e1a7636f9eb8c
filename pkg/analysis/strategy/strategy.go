// Package strategy searches pit-lap candidates against a degradation
// cost model and projects fuel sufficiency from a speed-adjusted
// consumption rate.
package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/stats"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

// Params hold the physical constants of the cost model. Defaults match
// the GR86 cup car.
type Params struct {
	PitStopSeconds    float64 // fixed time cost of a stop
	TankCapacity      float64 // liters
	ConsumptionPerLap float64 // liters per lap at reference speed
	ReferenceSpeed    float64 // km/h, consumption scaling anchor
	FreshTireFactor   float64 // remaining degradation on fresh tires
	MinSavingSeconds  float64 // pit only when savings exceed this
	MinDegradation    float64 // empirical rate floor, seconds per lap
}

func defaultParams() Params {
	return Params{
		PitStopSeconds:    45.0,
		TankCapacity:      50.0,
		ConsumptionPerLap: 0.08,
		ReferenceSpeed:    120.0,
		FreshTireFactor:   0.3,
		MinSavingSeconds:  5.0,
		MinDegradation:    0.01,
	}
}

type Option func(p *Params)

func WithPitStopTime(secs float64) Option {
	return func(p *Params) { p.PitStopSeconds = secs }
}

func WithTankCapacity(liters float64) Option {
	return func(p *Params) { p.TankCapacity = liters }
}

func WithConsumptionPerLap(liters float64) Option {
	return func(p *Params) { p.ConsumptionPerLap = liters }
}

func WithReferenceSpeed(kph float64) Option {
	return func(p *Params) { p.ReferenceSpeed = kph }
}

func WithFreshTireFactor(f float64) Option {
	return func(p *Params) { p.FreshTireFactor = f }
}

type Optimizer struct {
	p Params
	l *log.Logger
}

func NewOptimizer(opts ...Option) *Optimizer {
	o := &Optimizer{
		p: defaultParams(),
		l: log.Default().Named("analysis.strategy"),
	}
	for _, opt := range opts {
		opt(&o.p)
	}
	return o
}

// triangularCost sums rate*i over i in [0,n): the cumulative time lost
// to a linearly growing per-lap penalty.
func triangularCost(rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return rate * float64(n*(n-1)) / 2
}

// OptimalPitStrategy searches candidate pit laps for the lowest total
// projected time lost. With at least 10 laps of history the assumed
// degradation rate is replaced by an empirical one.
func (o *Optimizer) OptimalPitStrategy(
	laps []model.LapRecord,
	vehicleID string,
	currentLap, totalLaps int,
	assumedRate float64,
) model.PitStrategy {
	valid := validLaps(laps, vehicleID)
	if len(valid) < 5 {
		return model.PitStrategy{Error: "insufficient data"}
	}

	rate := assumedRate
	if len(valid) >= 10 {
		times := lapTimes(valid)
		early := stats.Mean(times[:5])
		late := stats.Mean(times[len(times)-5:])
		rate = (late - early) / float64(len(valid))
		if rate < o.p.MinDegradation {
			rate = o.p.MinDegradation
		}
	}

	lapsRemaining := totalLaps - currentLap
	timeLostNoPit := triangularCost(rate, lapsRemaining)

	bestPitLap := currentLap + 1
	minTotalLost := math.Inf(1)
	for pitLap := currentLap + 1; pitLap < totalLaps-2; pitLap++ {
		before := triangularCost(rate, pitLap-currentLap)
		after := o.p.FreshTireFactor * triangularCost(rate, totalLaps-pitLap)
		total := before + o.p.PitStopSeconds + after
		if total < minTotalLost {
			minTotalLost = total
			bestPitLap = pitLap
		}
	}
	if math.IsInf(minTotalLost, 1) {
		// no candidate window left before the end of the race
		return model.PitStrategy{
			ShouldPit:       false,
			OptimalPitLap:   bestPitLap,
			LapsUntilPit:    bestPitLap - currentLap,
			DegradationRate: stats.Round(rate, 4),
			TimeLostNoPit:   stats.Round(timeLostNoPit, 2),
			TimeLostWithPit: stats.Round(timeLostNoPit, 2),
			Message:         "Stay out - no pit window remaining",
		}
	}

	timeSaved := timeLostNoPit - minTotalLost
	shouldPit := timeSaved > o.p.MinSavingSeconds
	o.l.Debug("pit strategy",
		log.String("vehicleId", vehicleID), log.Int("pitLap", bestPitLap),
		log.Float64("timeSaved", timeSaved))

	verb := "costs"
	action := "Stay out"
	if shouldPit {
		verb = "saves"
		action = "Pit"
	}
	return model.PitStrategy{
		ShouldPit:       shouldPit,
		OptimalPitLap:   bestPitLap,
		LapsUntilPit:    bestPitLap - currentLap,
		TimeSaved:       stats.Round(timeSaved, 2),
		DegradationRate: stats.Round(rate, 4),
		TimeLostNoPit:   stats.Round(timeLostNoPit, 2),
		TimeLostWithPit: stats.Round(minTotalLost, 2),
		Message:         fmt.Sprintf("%s - %s %.1fs", action, verb, math.Abs(timeSaved)),
	}
}

// FuelStrategy projects fuel sufficiency to the end of the race.
// currentFuel==nil infers the level from laps completed; the result is
// flagged as estimated.
func (o *Optimizer) FuelStrategy(
	laps []model.LapRecord,
	vehicleID string,
	currentLap, totalLaps int,
	currentFuel *float64,
) model.FuelState {
	rows := model.VehicleLaps(laps, vehicleID)
	if len(rows) == 0 {
		return model.FuelState{Error: "no data for vehicle"}
	}

	speeds := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].AvgSpeed > 0 {
			speeds = append(speeds, rows[i].AvgSpeed)
		}
	}
	avgSpeed := o.p.ReferenceSpeed
	if len(speeds) > 0 {
		avgSpeed = stats.Mean(speeds)
	}
	consumption := o.p.ConsumptionPerLap * (avgSpeed / o.p.ReferenceSpeed)
	if !(consumption > 0) {
		return model.FuelState{Error: "non-positive fuel consumption"}
	}

	fuel := 0.0
	estimated := false
	if currentFuel != nil {
		fuel = *currentFuel
	} else {
		fuel = o.p.TankCapacity - float64(currentLap)*consumption
		estimated = true
	}

	lapsOnFuel := int(fuel / consumption)
	lapsRemaining := totalLaps - currentLap
	if lapsOnFuel >= lapsRemaining {
		return model.FuelState{
			NeedsPit:          false,
			LapsOnCurrentFuel: lapsOnFuel,
			CurrentFuel:       stats.Round(fuel, 2),
			Estimated:         estimated,
			ConsumptionPerLap: stats.Round(consumption, 3),
			Message:           "Sufficient fuel to finish race. No pit stop required.",
		}
	}

	margin := lapsOnFuel - 2 // pit two laps before running dry
	if margin < 1 {
		margin = 1
	}
	pitLap := currentLap + margin
	fuelToAdd := math.Min(
		o.p.TankCapacity-fuel,
		float64(totalLaps-pitLap)*consumption,
	)
	return model.FuelState{
		NeedsPit:          true,
		RecommendedPitLap: pitLap,
		LapsOnCurrentFuel: lapsOnFuel,
		CurrentFuel:       stats.Round(fuel, 2),
		Estimated:         estimated,
		FuelToAdd:         stats.Round(fuelToAdd, 2),
		ConsumptionPerLap: stats.Round(consumption, 3),
		Message: fmt.Sprintf("Pit stop required at lap %d. Add %.1fL fuel.",
			pitLap, fuelToAdd),
	}
}

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

func lapTimes(laps []model.LapRecord) []float64 {
	return lo.Map(laps, func(l model.LapRecord, _ int) float64 { return l.LapTime })
}
