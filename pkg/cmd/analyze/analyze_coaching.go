package analyze

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/pkg/analysis/coaching"
	"github.com/raceng/strategy-engine-go/pkg/config"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/telemetry"
)

var (
	coachLap int
	fastLap  int
	slowLap  int
)

func newCoachingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coaching",
		Short: "sector-level coaching opportunities vs the personal best",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoaching()
		},
	}
	cmd.Flags().IntVar(&coachLap, "lap", 0,
		"lap to coach on (default: vehicle's latest lap)")
	return cmd
}

func newPotentialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "potential",
		Short: "theoretical best lap from best individual sectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := loadLaps()
			if err != nil {
				return err
			}
			c := coaching.NewComparator()
			printJSON(c.PotentialLapTime(laps, vehicleID))
			return nil
		},
	}
}

func newBrakingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "braking",
		Short: "braking zones of a resampled telemetry lap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBraking()
		},
	}
	cmd.Flags().IntVar(&coachLap, "lap", 0,
		"lap to analyze (default: vehicle's fastest lap)")
	cmd.Flags().IntVar(&config.Stride, "stride", telemetry.DefaultStride,
		"telemetry sample-rate divisor")
	return cmd
}

func newCompareLapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare-laps",
		Short: "compare average speed of two telemetry laps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompareLaps()
		},
	}
	cmd.Flags().IntVar(&fastLap, "fast-lap", 0, "reference lap")
	cmd.Flags().IntVar(&slowLap, "slow-lap", 0, "lap to compare against the reference")
	cmd.Flags().IntVar(&config.Stride, "stride", telemetry.DefaultStride,
		"telemetry sample-rate divisor")
	_ = cmd.MarkFlagRequired("fast-lap")
	_ = cmd.MarkFlagRequired("slow-lap")
	return cmd
}

func runCoaching() error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	atLap := coachLap
	if atLap <= 0 {
		atLap = resolveCurrentLap(laps)
	}
	var current *model.LapRecord
	for i := range laps {
		if laps[i].VehicleID == vehicleID && laps[i].LapNo == atLap {
			current = &laps[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("no lap %d recorded for vehicle %s", atLap, vehicleID)
	}
	c := coaching.NewComparator()
	printJSON(c.CoachingOpportunities(laps, vehicleID, *current))
	return nil
}

func runBraking() error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	r, err := newResampler()
	if err != nil {
		return err
	}
	var frame *model.TelemetryFrame
	lap := coachLap
	if lap > 0 {
		frame, err = r.ProcessLap(
			config.TelemetryFile, config.Track, config.Race, lap, config.Stride)
	} else {
		frame, lap, err = r.FastestLapFrame(
			config.TelemetryFile, config.Track, config.Race,
			model.VehicleLaps(laps, vehicleID), config.Stride)
	}
	if err != nil {
		return err
	}
	if frame.Empty() {
		return fmt.Errorf("no telemetry data for lap %d", lap)
	}
	c := coaching.NewComparator()
	printJSON(c.BrakingZones(frame, vehicleID))
	return nil
}

func runCompareLaps() error {
	r, err := newResampler()
	if err != nil {
		return err
	}
	fast, err := r.ProcessLap(
		config.TelemetryFile, config.Track, config.Race, fastLap, config.Stride)
	if err != nil {
		return err
	}
	slow, err := r.ProcessLap(
		config.TelemetryFile, config.Track, config.Race, slowLap, config.Stride)
	if err != nil {
		return err
	}
	c := coaching.NewComparator()
	printJSON(c.CompareLaps(fast, slow, vehicleID))
	return nil
}
