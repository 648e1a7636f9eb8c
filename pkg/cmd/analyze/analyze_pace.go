package analyze

import (
	"github.com/spf13/cobra"

	"github.com/raceng/strategy-engine-go/pkg/analysis/pace"
)

func newPaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pace",
		Short: "trailing-window pace, consistency and field ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := loadLaps()
			if err != nil {
				return err
			}
			p := pace.NewPredictor()
			printJSON(p.AnalyzeRacePace(laps, vehicleID, resolveCurrentLap(laps)))
			return nil
		},
	}
}

func newFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "extrapolate the race finish time from pace and trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := loadLaps()
			if err != nil {
				return err
			}
			p := pace.NewPredictor()
			printJSON(p.PredictFinishTime(laps, vehicleID, resolveCurrentLap(laps), totalLaps))
			return nil
		},
	}
}

func newSectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "per-sector strengths and weaknesses against the field",
		RunE: func(cmd *cobra.Command, args []string) error {
			laps, err := loadLaps()
			if err != nil {
				return err
			}
			p := pace.NewPredictor()
			printJSON(p.SectorPerformance(laps, vehicleID, resolveCurrentLap(laps)))
			return nil
		},
	}
}
