package cmd

import (
	"fmt"

	"dugout-backend/lib/serviceutil"
	"dugout-backend/services/audit"

	"github.com/spf13/cobra"
)

var (
	timingGameID    string
	timingYear      int64
	pitchMixYear    int64
	pitchMixPitcher int64
)

func init() {
	timingCmd.Flags().StringVar(&timingGameID, "game", "", "report on a single bbref game id")
	timingCmd.Flags().Int64Var(&timingYear, "year", 0, "report across a whole season")
	auditCmd.AddCommand(timingCmd)

	pitchMixCmd.Flags().Int64Var(&pitchMixYear, "year", 0, "season to aggregate")
	pitchMixCmd.Flags().Int64Var(&pitchMixPitcher, "pitcher", 0, "mlb id of the pitcher")
	pitchMixCmd.MarkFlagRequired("year")
	pitchMixCmd.MarkFlagRequired("pitcher")
	auditCmd.AddCommand(pitchMixCmd)

	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Metrics computed from the combined documents.",
}

var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Prints time-between-pitches statistics for a game or a season.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		var report audit.TimingReport
		switch {
		case timingGameID != "":
			report, err = r.audit.GameTiming(ctx, timingGameID)
		case timingYear != 0:
			report, err = r.audit.SeasonTiming(ctx, timingYear)
		default:
			serviceutil.Fatal("bad arguments", fmt.Errorf("one of --game or --year is required"))
		}
		if err != nil {
			serviceutil.Fatal("failed to compute timing report", err)
		}
		fmt.Println(audit.RenderTimingReport(report))
	},
}

var pitchMixCmd = &cobra.Command{
	Use:   "pitch-mix",
	Short: "Prints a pitcher's season arsenal with usage and CSW rates.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		mix, err := r.audit.PitcherPitchMix(ctx, pitchMixYear, pitchMixPitcher)
		if err != nil {
			serviceutil.Fatal("failed to compute pitch mix", err)
		}
		fmt.Println(audit.RenderPitchMix(mix))
	},
}
