package cmd

import (
	"fmt"

	"dugout-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(combineCmd)
}

var combineCmd = &cobra.Command{
	Use:   "combine <bbref-game-id>",
	Short: "Reconciles one game's play-by-play with its pitchfx and writes the combined document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		doc, err := r.combine.CombineGame(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("combine failed", err)
		}
		fmt.Printf("combined %s: %d at-bats, %d pitches audited, all pitchfx valid: %v\n",
			doc.BBRefGameID, len(doc.AtBats),
			doc.Audit.PitchCountAudited, doc.Audit.AllPitchFxValid)
	},
}
