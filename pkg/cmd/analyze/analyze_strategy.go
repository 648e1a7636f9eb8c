package analyze

import (
	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/pkg/analysis/strategy"
	"github.com/raceng/strategy-engine-go/pkg/config"
)

var (
	assumedDegRate float64
	currentFuel    float64
)

func newPitStrategyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pit-strategy",
		Short: "search the optimal pit lap against the degradation cost model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPitStrategy()
		},
	}
	cmd.Flags().Float64Var(&assumedDegRate, "deg-rate", 0.05,
		"assumed degradation rate in seconds per lap (overridden by history)")
	addStrategyFlags(cmd)
	return cmd
}

func newFuelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuel",
		Short: "project fuel sufficiency to the end of the race",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuel(cmd.Flags().Changed("fuel"))
		},
	}
	cmd.Flags().Float64Var(&currentFuel, "fuel", 0,
		"measured fuel level in liters (omit to infer from laps completed)")
	addStrategyFlags(cmd)
	return cmd
}

func addStrategyFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&config.PitStopSeconds, "pit-time", 45,
		"pit stop time cost in seconds")
	cmd.Flags().Float64Var(&config.TankCapacity, "tank", 50,
		"fuel tank capacity in liters")
	cmd.Flags().Float64Var(&config.ConsumptionPerLap, "consumption", 0.08,
		"nominal fuel consumption in liters per lap")
}

func newOptimizer() *strategy.Optimizer {
	return strategy.NewOptimizer(
		strategy.WithPitStopTime(config.PitStopSeconds),
		strategy.WithTankCapacity(config.TankCapacity),
		strategy.WithConsumptionPerLap(config.ConsumptionPerLap),
	)
}

func runPitStrategy() error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	o := newOptimizer()
	printJSON(o.OptimalPitStrategy(
		laps, vehicleID, resolveCurrentLap(laps), totalLaps, assumedDegRate))
	return nil
}

func runFuel(fuelGiven bool) error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	var fuel *float64
	if fuelGiven {
		fuel = &currentFuel
	}
	o := newOptimizer()
	printJSON(o.FuelStrategy(laps, vehicleID, resolveCurrentLap(laps), totalLaps, fuel))
	return nil
}
