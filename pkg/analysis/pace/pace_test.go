package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceng/strategy-engine-go/pkg/model"
)

func stintLaps(vehicleID string, times ...float64) []model.LapRecord {
	ret := make([]model.LapRecord, 0, len(times))
	for i, t := range times {
		ret = append(ret, model.LapRecord{
			VehicleID: vehicleID, LapNo: i + 1, LapTime: t, HasTime: true,
		})
	}
	return ret
}

func TestAnalyzeRacePace(t *testing.T) {
	laps := stintLaps("13", 96.0, 96.5, 96.5, 96.5, 96.5, 96.5)
	pa := NewPredictor().AnalyzeRacePace(laps, "13", 6)
	require.Empty(t, pa.Error)
	assert.InDelta(t, 96.5, pa.CurrentPace, 1e-3)
	assert.InDelta(t, 96.0, pa.BestLap, 1e-3)
	assert.InDelta(t, 0.5, pa.PaceDelta, 1e-3)
	assert.InDelta(t, 0.0, pa.TrendPerLap, 1e-4)
	assert.False(t, pa.IsImproving)
	assert.False(t, pa.IsDegrading)
	assert.True(t, pa.IsConsistent)
	assert.Equal(t, 1, pa.PacePosition)
	assert.Equal(t, 1, pa.TotalCompetitors)
}

func TestAnalyzeRacePaceTrend(t *testing.T) {
	p := NewPredictor()

	degrading := stintLaps("13", 96.0, 96.2, 96.4, 96.6, 96.8)
	pa := p.AnalyzeRacePace(degrading, "13", 5)
	require.Empty(t, pa.Error)
	assert.InDelta(t, 0.2, pa.TrendPerLap, 1e-4)
	assert.True(t, pa.IsDegrading)
	assert.False(t, pa.IsImproving)

	improving := stintLaps("13", 96.8, 96.6, 96.4, 96.2, 96.0)
	pa = p.AnalyzeRacePace(improving, "13", 5)
	require.Empty(t, pa.Error)
	assert.InDelta(t, -0.2, pa.TrendPerLap, 1e-4)
	assert.True(t, pa.IsImproving)
	assert.True(t, pa.IsConsistent, "0.2s spread is within the 0.5s band")
}

func TestAnalyzeRacePaceRanking(t *testing.T) {
	laps := stintLaps("13", 96.5, 96.5, 96.5)
	laps = append(laps, stintLaps("7", 95.9, 95.9, 95.9)...)  // faster
	laps = append(laps, stintLaps("22", 97.2, 97.2, 97.2)...) // slower

	pa := NewPredictor().AnalyzeRacePace(laps, "13", 3)
	require.Empty(t, pa.Error)
	assert.Equal(t, 2, pa.PacePosition)
	assert.Equal(t, 3, pa.TotalCompetitors)
}

func TestAnalyzeRacePaceInsufficientData(t *testing.T) {
	laps := stintLaps("13", 96.0, 96.5)
	pa := NewPredictor().AnalyzeRacePace(laps, "13", 2)
	assert.NotEmpty(t, pa.Error)
}

func TestPredictFinishTime(t *testing.T) {
	// constant 96.0 pace, 5 of 27 laps done
	laps := stintLaps("13", 96.0, 96.0, 96.0, 96.0, 96.0)
	fp := NewPredictor().PredictFinishTime(laps, "13", 5, 27)
	require.Empty(t, fp.Error)
	assert.Equal(t, 22, fp.LapsRemaining)
	assert.InDelta(t, 480.0, fp.TimeElapsed, 1e-2)
	assert.InDelta(t, 22*96.0, fp.TimeRemaining, 1e-2)
	assert.InDelta(t, 480.0+22*96.0, fp.FinishSeconds, 1e-2)
	assert.InDelta(t, 96.0, fp.PredictedAvgLap, 1e-3)
	// 2592s = 0:43:12.00
	assert.Equal(t, "0:43:12.00", fp.FinishTime)
}

func TestPredictFinishTimeWithTrend(t *testing.T) {
	laps := stintLaps("13", 96.0, 96.2, 96.4, 96.6, 96.8)
	fp := NewPredictor().PredictFinishTime(laps, "13", 5, 10)
	require.Empty(t, fp.Error)
	// pace 96.4, trend 0.2: remaining = sum(96.4 + 0.2*i, i=0..4)
	assert.InDelta(t, 96.4*5+0.2*(0+1+2+3+4), fp.TimeRemaining, 1e-2)
}

func TestPredictFinishTimeNoLapsRemaining(t *testing.T) {
	laps := stintLaps("13", 96.0, 96.0, 96.0, 96.0, 96.0)
	fp := NewPredictor().PredictFinishTime(laps, "13", 5, 5)
	require.Empty(t, fp.Error)
	assert.Equal(t, 0, fp.LapsRemaining)
	assert.InDelta(t, 0.0, fp.PredictedAvgLap, 1e-9, "no division by zero")
	assert.InDelta(t, fp.TimeElapsed, fp.FinishSeconds, 1e-2)
}

func TestSectorPerformance(t *testing.T) {
	mk := func(vehicleID string, s1 float64) []model.LapRecord {
		ret := make([]model.LapRecord, 0, 3)
		for i := 0; i < 3; i++ {
			ret = append(ret, model.LapRecord{
				VehicleID: vehicleID, LapNo: i + 1,
				S1: s1 + 0.1*float64(i), S2: 33.0, S3: 34.0,
			})
		}
		return ret
	}
	laps := append(mk("13", 30.0), mk("7", 31.0)...)

	sp := NewPredictor().SectorPerformance(laps, "13", 3)
	require.Empty(t, sp.Error)
	require.Len(t, sp.Sectors, 3)

	s1 := sp.Sectors["s1"]
	assert.InDelta(t, 30.0, s1.Best, 1e-3)
	assert.InDelta(t, 30.2, s1.Worst, 1e-3)
	assert.InDelta(t, 30.1, s1.Average, 1e-3)
	assert.InDelta(t, 30.2, s1.Current, 1e-3)
	// own 30.1 avg vs field mean 30.6
	assert.InDelta(t, -0.5, s1.VsField, 1e-3)
	assert.Equal(t, "s1", sp.StrongestSector, "only sector faster than the field")
	assert.InDelta(t, 0.0, sp.Sectors["s2"].VsField, 1e-3)
}

func TestSectorPerformanceInsufficientData(t *testing.T) {
	laps := stintLaps("13", 96.0, 96.1)
	sp := NewPredictor().SectorPerformance(laps, "13", 2)
	assert.NotEmpty(t, sp.Error)
}
