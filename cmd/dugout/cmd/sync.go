package cmd

import (
	"fmt"
	"strconv"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync {up|down} <year>",
	Short: "Mirrors one season's blobs between the working store and the archive store.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		direction := args[0]
		if direction != "up" && direction != "down" {
			serviceutil.Fatal("bad direction", fmt.Errorf("expected up or down, got %q", direction))
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("bad year", err)
		}

		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		if r.cfg.Store.ArchiveRoot == "" {
			serviceutil.Fatal("sync unavailable", fmt.Errorf("store.archive_root is not configured"))
		}
		archive, err := blobstore.NewLocalStore(r.cfg.Store.ArchiveRoot)
		if err != nil {
			serviceutil.Fatal("failed to open archive store", err)
		}

		src, dst := blobstore.Store(r.store), blobstore.Store(archive)
		if direction == "down" {
			src, dst = dst, src
		}
		copied, err := blobstore.Sync(ctx, src, dst, blobstore.YearPrefix(year))
		if err != nil {
			serviceutil.Fatal("sync failed", err)
		}
		fmt.Printf("sync %s: copied %d blobs for %d\n", direction, copied, year)
	},
}
