package model

// Derived records returned by the analyzers. All of them are computed
// on demand and meant for direct JSON serialization; data-sparsity
// conditions surface in the Error field instead of a Go error so the
// embedding layer can map them to a proper response.

// DegradationPoint is one lap of a DegradationProfile.
type DegradationPoint struct {
	LapNo       int     `json:"lapNo"`
	LapTime     float64 `json:"lapTime"`
	RollingAvg  float64 `json:"rollingAvg"`  // trailing 3-lap mean, min window 1
	DeltaToBest float64 `json:"deltaToBest"` // vs this vehicle's best lap
	LapDelta    float64 `json:"lapDelta"`    // first difference, 0 on the first lap
	TireLifePct float64 `json:"tireLifePct"` // linear heuristic, not calibrated
}

// DegradationProfile is the per-vehicle lap-by-lap degradation view.
type DegradationProfile struct {
	VehicleID string             `json:"vehicleId"`
	Points    []DegradationPoint `json:"points"`
	BestLap   float64            `json:"bestLap"`
	WorstLap  float64            `json:"worstLap"`
}

// PitDecision is the pit-window prediction derived from the
// delta-to-best regression. Confidence is a data-volume heuristic
// (0-100), not a statistical interval.
type PitDecision struct {
	PitLap          int     `json:"pitLap"`
	LapsRemaining   int     `json:"lapsRemaining"`
	DegradationRate float64 `json:"degradationRate"` // seconds per lap
	CurrentDelta    float64 `json:"currentDelta"`
	Confidence      int     `json:"confidence"`
	Message         string  `json:"message"`
	Error           string  `json:"error,omitempty"`
}

// SectorDegradation compares early-stint vs late-stint sector times.
type SectorDegradation struct {
	EarlyAvg      float64 `json:"earlyAvg"`
	LateAvg       float64 `json:"lateAvg"`
	Delta         float64 `json:"delta"`
	PercentChange float64 `json:"percentChange"`
}

// DegradationComparison ranks a competitor's recent degradation.
type DegradationComparison struct {
	VehicleID    string  `json:"vehicleId"`
	Degradation  float64 `json:"degradation"`  // recent 3-lap avg minus best lap
	RecentAvgLap float64 `json:"recentAvgLap"`
}

// PitStrategy is the exhaustive-search pit recommendation.
type PitStrategy struct {
	ShouldPit       bool    `json:"shouldPit"`
	OptimalPitLap   int     `json:"optimalPitLap"`
	LapsUntilPit    int     `json:"lapsUntilPit"`
	TimeSaved       float64 `json:"timeSavedSeconds"`
	DegradationRate float64 `json:"degradationRate"`
	TimeLostNoPit   float64 `json:"timeLostNoPit"`
	TimeLostWithPit float64 `json:"timeLostWithPit"`
	Message         string  `json:"message"`
	Error           string  `json:"error,omitempty"`
}

// FuelState is the fuel-sufficiency projection. CurrentFuel is an
// estimate when Estimated is set (inferred from laps completed rather
// than measured).
type FuelState struct {
	NeedsPit          bool    `json:"needsPit"`
	RecommendedPitLap int     `json:"recommendedPitLap,omitempty"`
	LapsOnCurrentFuel int     `json:"lapsOnCurrentFuel"`
	CurrentFuel       float64 `json:"currentFuelLiters"`
	Estimated         bool    `json:"estimated"`
	FuelToAdd         float64 `json:"fuelToAddLiters,omitempty"`
	ConsumptionPerLap float64 `json:"consumptionPerLap"`
	Message           string  `json:"message"`
	Error             string  `json:"error,omitempty"`
}

// PaceAnalysis is the trailing-window pace view of one vehicle.
type PaceAnalysis struct {
	CurrentPace      float64 `json:"currentPace"`
	BestLap          float64 `json:"bestLap"`
	PaceDelta        float64 `json:"paceDelta"`
	Consistency      float64 `json:"consistencyStd"`
	TrendPerLap      float64 `json:"trendPerLap"`
	PacePosition     int     `json:"pacePosition"`
	TotalCompetitors int     `json:"totalCompetitors"`
	IsImproving      bool    `json:"isImproving"`
	IsDegrading      bool    `json:"isDegrading"`
	IsConsistent     bool    `json:"isConsistent"`
	Error            string  `json:"error,omitempty"`
}

// FinishPrediction extrapolates the current pace and trend to the end
// of the race.
type FinishPrediction struct {
	FinishTime      string  `json:"predictedFinishTime"` // H:MM:SS.ss
	FinishSeconds   float64 `json:"predictedFinishSeconds"`
	TimeElapsed     float64 `json:"timeElapsed"`
	TimeRemaining   float64 `json:"timeRemaining"`
	LapsRemaining   int     `json:"lapsRemaining"`
	PredictedAvgLap float64 `json:"predictedAvgLap"`
	Error           string  `json:"error,omitempty"`
}

// SectorStats is the per-sector performance summary.
type SectorStats struct {
	Best        float64 `json:"best"`
	Worst       float64 `json:"worst"`
	Average     float64 `json:"average"`
	Current     float64 `json:"current"`
	Consistency float64 `json:"consistency"`
	VsField     float64 `json:"vsField"`
}

// SectorPerformance summarizes strengths and weaknesses per sector.
type SectorPerformance struct {
	Sectors         map[string]SectorStats `json:"sectors"`
	StrongestSector string                 `json:"strongestSector,omitempty"`
	WeakestSector   string                 `json:"weakestSector,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// PotentialLap is the theoretical best lap built from best sectors.
// The target may be unachievable; it combines sectors from different laps.
type PotentialLap struct {
	TheoreticalBest      float64 `json:"theoreticalBest"`
	ActualBest           float64 `json:"actualBest"`
	ImprovementPotential float64 `json:"improvementPotential"`
	BestS1               float64 `json:"bestS1"`
	BestS2               float64 `json:"bestS2"`
	BestS3               float64 `json:"bestS3"`
	Error                string  `json:"error,omitempty"`
}

// CoachingOpportunity flags a sector slower than the personal best.
type CoachingOpportunity struct {
	Sector     string  `json:"sector"`
	TimeLoss   float64 `json:"timeLoss"`
	Message    string  `json:"message"`
	Suggestion string  `json:"suggestion"`
}

// BrakingZone is one threshold-crossing braking zone in a telemetry
// frame. Zones have no minimum duration; a single-sample spike shows
// up as a zone with DurationSamples == 1.
type BrakingZone struct {
	StartDistance   float64 `json:"startDistance"`
	EntrySpeed      float64 `json:"entrySpeed"`
	ExitSpeed       float64 `json:"exitSpeed"`
	PeakPressure    float64 `json:"maxBrakePressure"`
	PeakDecel       float64 `json:"maxDecelG"`
	DurationSamples int     `json:"durationSamples"`
}

// LapComparison compares average speeds of two telemetry frames.
type LapComparison struct {
	FastLap         int     `json:"fastLap"`
	SlowLap         int     `json:"slowLap"`
	AvgSpeedDiff    float64 `json:"avgSpeedDiff"`
	FastLapAvgSpeed float64 `json:"fastLapAvgSpeed"`
	SlowLapAvgSpeed float64 `json:"slowLapAvgSpeed"`
	DataPointsFast  int     `json:"dataPointsFast"`
	DataPointsSlow  int     `json:"dataPointsSlow"`
	Error           string  `json:"error,omitempty"`
}

// FrameMetrics are the averaged channel metrics of a telemetry frame.
type FrameMetrics struct {
	AvgSpeed    float64 `json:"avgSpeed"`
	MaxSpeed    float64 `json:"maxSpeed"`
	AvgThrottle float64 `json:"avgThrottle"`
	AvgBrake    float64 `json:"avgBrake"`
	AvgRPM      float64 `json:"avgRpm"`
}
