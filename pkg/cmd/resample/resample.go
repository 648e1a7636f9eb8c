// Package resample provides the CLI entry point for materializing
// per-lap telemetry frames.
package resample

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/config"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/telemetry"
)

var (
	lap       int
	dumpFrame bool
)

func NewResampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resample",
		Short: "resample one lap of the telemetry stream into a wide frame",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger()
			if config.TelemetryFile == "" {
				return fmt.Errorf("--telemetry is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResample()
		},
	}
	cmd.Flags().IntVar(&lap, "lap", 1, "lap to resample")
	cmd.Flags().IntVar(&config.Stride, "stride", telemetry.DefaultStride,
		"telemetry sample-rate divisor")
	cmd.Flags().BoolVar(&dumpFrame, "dump", false,
		"print the full frame instead of the summary")
	return cmd
}

func setupLogger() {
	level := log.InfoLevel
	if parsed, err := log.ParseLevel(config.LogLevel); err == nil {
		level = parsed
	}
	var logger *log.Logger
	if config.LogFormat == "json" {
		logger = log.New(os.Stderr, level,
			log.WithCaller(true), log.AddCallerSkip(1))
	} else {
		logger = log.DevLogger(os.Stderr, level,
			log.WithCaller(true), log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

type frameSummary struct {
	Track   string             `json:"track"`
	Race    int                `json:"race"`
	Lap     int                `json:"lap"`
	Rows    int                `json:"rows"`
	Metrics model.FrameMetrics `json:"metrics"`
}

func runResample() error {
	opts := make([]telemetry.ResamplerOption, 0, 2)
	if config.TelemetryCacheDir != "" {
		cache, err := telemetry.NewFrameCache(config.TelemetryCacheDir)
		if err != nil {
			return err
		}
		opts = append(opts, telemetry.WithCache(cache))
	}
	if config.ChannelMapFile != "" {
		channels, err := telemetry.LoadChannelMap(config.ChannelMapFile)
		if err != nil {
			return fmt.Errorf("loading channel map: %w", err)
		}
		opts = append(opts, telemetry.WithChannelMap(channels))
	}
	r := telemetry.NewResampler(opts...)

	frame, err := r.ProcessLap(
		config.TelemetryFile, config.Track, config.Race, lap, config.Stride)
	if err != nil {
		return err
	}

	ojOpts := oj.Options{Indent: 2, OmitNil: true, UseTags: true}
	if dumpFrame {
		fmt.Println(oj.JSON(frame, &ojOpts))
		return nil
	}
	fmt.Println(oj.JSON(frameSummary{
		Track:   frame.Track,
		Race:    frame.Race,
		Lap:     frame.Lap,
		Rows:    len(frame.Rows),
		Metrics: telemetry.FrameMetrics(frame),
	}, &ojOpts))
	return nil
}
