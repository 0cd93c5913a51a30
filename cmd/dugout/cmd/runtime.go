package cmd

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/configutil"
	"dugout-backend/lib/configutil/sqldb"
	"dugout-backend/lib/fetch"
	"dugout-backend/lib/telemetry"
	"dugout-backend/services/audit"
	"dugout-backend/services/combine"
	"dugout-backend/services/scrape"
	"dugout-backend/services/status"
	statusdb "dugout-backend/services/status/db"
)

type StoreConfig struct {
	// Root is the local working store every scrape writes into.
	Root string `json:"root"`
	// ArchiveRoot is the second store `dugout sync` mirrors against.
	ArchiveRoot string `json:"archive_root"`
}

type SeasonConfig struct {
	Year        int64  `json:"year"`
	SeasonKind  string `json:"season_kind"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	AllStarDate string `json:"all_star_date"`
}

type SeedConfig struct {
	Seasons []SeasonConfig `json:"seasons"`
	// PlayerFile and TeamFile hold json arrays of ledger seed rows.
	PlayerFile string `json:"player_file"`
	TeamFile   string `json:"team_file"`
}

type Config struct {
	Database sqldb.Struct  `json:"database"`
	Store    StoreConfig   `json:"store"`
	Scrape   scrape.Config `json:"scrape"`
	Seed     SeedConfig    `json:"seed"`
}

// runtime wires every service the subcommands touch.
type runtime struct {
	cfg     Config
	db      *sql.DB
	store   *blobstore.LocalStore
	status  status.Service
	combine combine.Service
	scrape  scrape.Service
	audit   audit.Service
	tel     telemetry.Telemetry
}

func newRuntime(ctx context.Context) (*runtime, error) {
	telemetry.InitSlog(verbose)

	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.SetupFromEnv(ctx, "dugout")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, telemetry disabled")
	} else if err != nil {
		return nil, err
	}

	db, err := cfg.Database.OpenDB(statusdb.Schema)
	if err != nil {
		return nil, err
	}
	store, err := blobstore.NewLocalStore(cfg.Store.Root)
	if err != nil {
		db.Close()
		return nil, err
	}

	statusSvc := status.NewService(db)
	combineSvc := combine.NewService(statusSvc, store)
	fetcher := fetch.NewClient(cfg.Scrape.Fetch)
	return &runtime{
		cfg:     cfg,
		db:      db,
		store:   store,
		status:  statusSvc,
		combine: combineSvc,
		scrape:  scrape.NewService(statusSvc, store, fetcher, combineSvc, cfg.Scrape),
		audit:   audit.NewService(statusSvc, store),
		tel:     tel,
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	r.db.Close()
	if err := r.tel.Shutdown(ctx); err != nil {
		slog.Warn("telemetry shutdown", "err", err)
	}
}
