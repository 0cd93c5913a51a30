package cmd

import (
	"fmt"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/serviceutil"
	"dugout-backend/services/scrape"

	"github.com/spf13/cobra"
)

var (
	scrapeDataSets []string
	scrapeStart    string
	scrapeEnd      string
)

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeDataSets, "data-set", []string{"all"},
		"data sets to scrape (bbref_games_for_date, brooks_games_for_date, bbref_boxscores, brooks_pitch_logs, brooks_pitchfx, or all)")
	scrapeCmd.Flags().StringVar(&scrapeStart, "start", "", "first date to scrape (YYYY-MM-DD)")
	scrapeCmd.Flags().StringVar(&scrapeEnd, "end", "", "last date to scrape (YYYY-MM-DD, defaults to start)")
	scrapeCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(scrapeCmd)
}

func resolveDataSets(names []string) ([]blobstore.DataSet, error) {
	var dataSets []blobstore.DataSet
	for _, name := range names {
		if name == "all" {
			dataSets = append(dataSets, blobstore.AllDataSets...)
			continue
		}
		ds := blobstore.DataSet(name)
		if !blobstore.Valid(ds) || ds == blobstore.CombinedData {
			return nil, fmt.Errorf("unknown data set %q", name)
		}
		dataSets = append(dataSets, ds)
	}
	return dataSets, nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Runs the scrape pipeline over a date range.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		dataSets, err := resolveDataSets(scrapeDataSets)
		if err != nil {
			serviceutil.Fatal("bad --data-set", err)
		}
		start, err := time.Parse("2006-01-02", scrapeStart)
		if err != nil {
			serviceutil.Fatal("bad --start date", err)
		}
		end := start
		if scrapeEnd != "" {
			end, err = time.Parse("2006-01-02", scrapeEnd)
			if err != nil {
				serviceutil.Fatal("bad --end date", err)
			}
		}

		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		err = r.scrape.Run(ctx, scrape.RunParams{
			DataSets: dataSets,
			Start:    start,
			End:      end,
		})
		if err != nil {
			serviceutil.Fatal("scrape run failed", err)
		}
	},
}
