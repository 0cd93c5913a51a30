package cmd

import (
	"fmt"

	"dugout-backend/lib/serviceutil"
	"dugout-backend/services/audit"

	"github.com/spf13/cobra"
)

var statusYear int64

func init() {
	statusCmd.Flags().Int64Var(&statusYear, "year", 0, "season to report on")
	statusCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the scrape and combine progress of a season.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		summary, err := r.audit.SeasonSummary(ctx, statusYear)
		if err != nil {
			serviceutil.Fatal("failed to build season summary", err)
		}
		fmt.Println(audit.RenderSeasonSummary(summary))
	},
}
