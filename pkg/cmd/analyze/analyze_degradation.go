package analyze

import (
	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/pkg/analysis/degradation"
	"github.com/raceng/strategy-engine-go/pkg/config"
	"github.com/raceng/strategy-engine-go/pkg/model"
)

func newDegradationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "degradation",
		Short: "lap-by-lap degradation profile with sector and competitor breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDegradation()
		},
	}
	cmd.Flags().IntVar(&config.NominalStintLaps, "stint-laps",
		degradation.DefaultStintLaps,
		"nominal stint length for the tire-life heuristic")
	return cmd
}

func newPitWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pit-window",
		Short: "predict the pit window from the degradation trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPitWindow()
		},
	}
}

type degradationReport struct {
	Profile     model.DegradationProfile           `json:"profile"`
	Sectors     map[string]model.SectorDegradation `json:"sectorDegradation,omitempty"`
	Competitors []model.DegradationComparison      `json:"competitors,omitempty"`
}

func runDegradation() error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	a := degradation.NewAnalyzer(degradation.WithStintLaps(config.NominalStintLaps))
	atLap := resolveCurrentLap(laps)
	printJSON(degradationReport{
		Profile:     a.AnalyzeLapDegradation(laps, vehicleID),
		Sectors:     a.AnalyzeSectorDegradation(laps, vehicleID),
		Competitors: a.CompareDegradation(laps, vehicleID, atLap),
	})
	return nil
}

func runPitWindow() error {
	laps, err := loadLaps()
	if err != nil {
		return err
	}
	a := degradation.NewAnalyzer()
	printJSON(a.PredictPitWindow(laps, vehicleID, resolveCurrentLap(laps), totalLaps))
	return nil
}
