package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"dugout-backend/lib/serviceutil"
	statusdb "dugout-backend/services/status/db"

	"github.com/spf13/cobra"
)

var setupWipe bool

func init() {
	setupCmd.Flags().BoolVar(&setupWipe, "wipe", false,
		"clear the entire status ledger before seeding")
	rootCmd.AddCommand(setupCmd)
}

type seedPlayer struct {
	BbrefID string `json:"bbref_id"`
	MlbID   int64  `json:"mlb_id"`
	Name    string `json:"name"`
}

type seedTeam struct {
	BbrefTeamID  string `json:"bbref_team_id"`
	SeasonYear   int64  `json:"season_year"`
	BrooksTeamID string `json:"brooks_team_id"`
	League       string `json:"league"`
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Seeds the status ledger with seasons, teams and the player id map.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		r, err := newRuntime(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start", err)
		}
		defer r.close(ctx)

		if setupWipe {
			if err := r.status.Wipe(ctx); err != nil {
				serviceutil.Fatal("failed to wipe ledger", err)
			}
			slog.Info("wiped the status ledger")
		}

		for _, season := range r.cfg.Seed.Seasons {
			err := r.status.SeedSeason(ctx, statusdb.Season{
				Year:        season.Year,
				SeasonKind:  season.SeasonKind,
				StartDate:   season.StartDate,
				EndDate:     season.EndDate,
				AllStarDate: season.AllStarDate,
			})
			if err != nil {
				serviceutil.Fatal("failed to seed season", err)
			}
			slog.Info("seeded season", "year", season.Year, "kind", season.SeasonKind)
		}

		if r.cfg.Seed.TeamFile != "" {
			teams, err := readSeedFile[seedTeam](r.cfg.Seed.TeamFile)
			if err != nil {
				serviceutil.Fatal("failed to read team file", err)
			}
			byYear := map[int64][]statusdb.Team{}
			for _, team := range teams {
				byYear[team.SeasonYear] = append(byYear[team.SeasonYear], statusdb.Team{
					BbrefTeamID:  team.BbrefTeamID,
					SeasonYear:   team.SeasonYear,
					BrooksTeamID: team.BrooksTeamID,
					League:       team.League,
				})
			}
			for year, yearTeams := range byYear {
				if err := r.status.SeedTeams(ctx, year, yearTeams); err != nil {
					serviceutil.Fatal("failed to seed teams", err)
				}
			}
			slog.Info("seeded teams", "count", len(teams))
		}

		if r.cfg.Seed.PlayerFile != "" {
			players, err := readSeedFile[seedPlayer](r.cfg.Seed.PlayerFile)
			if err != nil {
				serviceutil.Fatal("failed to read player file", err)
			}
			rows := make([]statusdb.Player, 0, len(players))
			for _, player := range players {
				rows = append(rows, statusdb.Player{
					BbrefID: player.BbrefID,
					MlbID:   player.MlbID,
					Name:    player.Name,
				})
			}
			if err := r.status.SeedPlayers(ctx, rows); err != nil {
				serviceutil.Fatal("failed to seed players", err)
			}
			slog.Info("seeded player id map", "count", len(rows))
		}
	},
}

func readSeedFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
