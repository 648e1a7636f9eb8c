// Package analyze provides the CLI entry points for the strategy
// analyzers: each subcommand loads the lap table, runs one analyzer
// and prints the result record as JSON.
package analyze

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/config"
	"github.com/raceng/strategy-engine-go/pkg/loader"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/telemetry"
)

var (
	vehicleID  string
	currentLap int
	totalLaps  int
)

//nolint:lll // readability
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "run strategy analyzers on the lap table",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger()
			if config.LapDataFile == "" {
				return fmt.Errorf("--lap-data is required")
			}
			if vehicleID == "" {
				return fmt.Errorf("--vehicle is required")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&vehicleID, "vehicle", "", "vehicle id to analyze")
	cmd.PersistentFlags().IntVar(&currentLap, "current-lap", 0, "lap to analyze at (default: vehicle's latest lap)")
	cmd.PersistentFlags().IntVar(&totalLaps, "total-laps", 27, "race length in laps")

	cmd.AddCommand(newDegradationCmd())
	cmd.AddCommand(newPitWindowCmd())
	cmd.AddCommand(newPitStrategyCmd())
	cmd.AddCommand(newFuelCmd())
	cmd.AddCommand(newPaceCmd())
	cmd.AddCommand(newFinishCmd())
	cmd.AddCommand(newSectorsCmd())
	cmd.AddCommand(newCoachingCmd())
	cmd.AddCommand(newPotentialCmd())
	cmd.AddCommand(newBrakingCmd())
	cmd.AddCommand(newCompareLapsCmd())

	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	var logger *log.Logger
	switch {
	case config.LogFilter != "":
		logger = log.NewWithFilters(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			config.LogFilter,
			log.WithCaller(true),
			log.AddCallerSkip(1))
	case config.LogFormat == "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

func loadLaps() ([]model.LapRecord, error) {
	laps, err := loader.ReadLapRecords(config.LapDataFile)
	if err != nil {
		return nil, fmt.Errorf("loading lap data: %w", err)
	}
	return laps, nil
}

// resolveCurrentLap falls back to the vehicle's latest recorded lap
// when --current-lap was not given.
func resolveCurrentLap(laps []model.LapRecord) int {
	if currentLap > 0 {
		return currentLap
	}
	latest := 0
	for i := range laps {
		if laps[i].VehicleID == vehicleID && laps[i].LapNo > latest {
			latest = laps[i].LapNo
		}
	}
	return latest
}

func newResampler() (*telemetry.Resampler, error) {
	opts := make([]telemetry.ResamplerOption, 0, 2)
	if config.TelemetryCacheDir != "" {
		cache, err := telemetry.NewFrameCache(config.TelemetryCacheDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, telemetry.WithCache(cache))
	}
	if config.ChannelMapFile != "" {
		channels, err := telemetry.LoadChannelMap(config.ChannelMapFile)
		if err != nil {
			return nil, fmt.Errorf("loading channel map: %w", err)
		}
		opts = append(opts, telemetry.WithChannelMap(channels))
	}
	return telemetry.NewResampler(opts...), nil
}

func printJSON(v any) {
	opts := oj.Options{Indent: 2, OmitNil: true, UseTags: true}
	fmt.Println(oj.JSON(v, &opts))
}
