// Package status is the ledger the whole pipeline hangs off of: one
// row per date, per game, and per pitching appearance recording what
// has been fetched, parsed, and combined. Every task consults it to
// skip finished work, so scrapes are resumable at any point.
package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dugout-backend/lib/mlbid"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/status")

// ErrUnknownPlayer is returned when a bbref player id has no mlb id
// mapping in the ledger.
var ErrUnknownPlayer = errors.New("player has no mlb id mapping")

// ErrPreconditionUnmet marks work attempted before its upstream
// ledger flags were set. Callers treat it as a skip, not a crash.
var ErrPreconditionUnmet = errors.New("precondition unmet")

const dateLayout = "2006-01-02"

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

func (s Service) Queries() *db.Queries {
	return s.qry
}

// SeedSeason registers a season and creates the blank per-date rows
// for its full range.
func (s Service) SeedSeason(ctx context.Context, season db.Season) error {
	ctx, span := tracer.Start(ctx, "SeedSeason")
	defer span.End()
	span.SetAttributes(attribute.Int64("year", season.Year))

	start, err := time.Parse(dateLayout, season.StartDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("season %d start date: %w", season.Year, err)
	}
	end, err := time.Parse(dateLayout, season.EndDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("season %d end date: %w", season.Year, err)
	}
	if end.Before(start) {
		err := fmt.Errorf("season %d ends before it starts", season.Year)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.UpsertSeason(ctx, db.UpsertSeasonParams{
		Year:        season.Year,
		SeasonKind:  season.SeasonKind,
		StartDate:   season.StartDate,
		EndDate:     season.EndDate,
		AllStarDate: season.AllStarDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		err := txqry.EnsureGameDateStatus(ctx, db.EnsureGameDateStatusParams{
			GameDate:   d.Format(dateLayout),
			SeasonYear: season.Year,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}

// RecordBBRefDailyIndex marks the bbref daily index scraped. Game
// rows are not created here, the brooks index owns that because it is
// the one that knows both ids.
func (s Service) RecordBBRefDailyIndex(ctx context.Context, date time.Time, gameCount int) error {
	ctx, span := tracer.Start(ctx, "RecordBBRefDailyIndex")
	defer span.End()
	span.SetAttributes(attribute.String("date", date.Format(dateLayout)))

	err := s.qry.SetDailyIndexScrapedBBRef(ctx, db.SetDailyIndexScrapedBBRefParams{
		GameCountBbref: int64(gameCount),
		GameDate:       date.Format(dateLayout),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// RecordBrooksDailyIndex marks the brooks daily index scraped and
// creates or refreshes one game row per scheduled game.
func (s Service) RecordBrooksDailyIndex(ctx context.Context, date time.Time, games []brooks.GameInfo) error {
	ctx, span := tracer.Start(ctx, "RecordBrooksDailyIndex")
	defer span.End()
	span.SetAttributes(
		attribute.String("date", date.Format(dateLayout)),
		attribute.Int("game_count", len(games)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	dateStatus, err := txqry.GetGameDateStatus(ctx, date.Format(dateLayout))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("date %s is not part of a seeded season: %w", date.Format(dateLayout), err)
	}

	for _, game := range games {
		err := txqry.UpsertGameStatus(ctx, db.UpsertGameStatusParams{
			BbrefGameID:   game.BBRefGameID,
			BrooksGameID:  game.BrooksGameID,
			GameDate:      date.Format(dateLayout),
			SeasonYear:    dateStatus.SeasonYear,
			GameStartTime: game.GameStartTime,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = txqry.SetDailyIndexScrapedBrooks(ctx, db.SetDailyIndexScrapedBrooksParams{
		GameCountBrooks: int64(len(games)),
		GameDate:        date.Format(dateLayout),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return tx.Commit()
}

func (s Service) RecordBoxscore(ctx context.Context, gameID string, pitchAppCount, pitchCount int) error {
	ctx, span := tracer.Start(ctx, "RecordBoxscore")
	defer span.End()
	span.SetAttributes(attribute.String("game_id", gameID))

	err := s.qry.SetBoxscoreScraped(ctx, db.SetBoxscoreScrapedParams{
		PitchAppCountBbref: int64(pitchAppCount),
		PitchCountBbref:    int64(pitchCount),
		BbrefGameID:        gameID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// RecordPitchLogs marks a game's pitch logs scraped and registers one
// pitch-app row per appearance.
func (s Service) RecordPitchLogs(ctx context.Context, gameID string, logs []brooks.PitchLog) error {
	ctx, span := tracer.Start(ctx, "RecordPitchLogs")
	defer span.End()
	span.SetAttributes(
		attribute.String("game_id", gameID),
		attribute.Int("pitch_app_count", len(logs)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	totalPitches := 0
	for _, log := range logs {
		totalPitches += log.TotalPitchCount
		err := txqry.UpsertPitchAppStatus(ctx, db.UpsertPitchAppStatusParams{
			PitchAppID:         log.PitchAppID,
			BbrefGameID:        gameID,
			PitcherIDMlb:       log.PitcherID,
			PitchCountPitchLog: int64(log.TotalPitchCount),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = txqry.SetPitchLogsScraped(ctx, db.SetPitchLogsScrapedParams{
		PitchAppCountBrooks: int64(len(logs)),
		PitchCountBrooks:    int64(totalPitches),
		BbrefGameID:         gameID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return tx.Commit()
}

// RecordPitchFx marks one appearance's pitchfx scraped, then flips
// the game's all-pitchfx-scraped flag once no appearance remains.
// Appearance rows always settle before the game row.
func (s Service) RecordPitchFx(ctx context.Context, pitchAppID string, noData bool, pitchCount int) error {
	ctx, span := tracer.Start(ctx, "RecordPitchFx")
	defer span.End()
	span.SetAttributes(attribute.String("pitch_app_id", pitchAppID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	app, err := txqry.GetPitchAppStatus(ctx, pitchAppID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("pitch app %s is not registered: %w", pitchAppID, err)
	}

	err = txqry.SetPitchFxScraped(ctx, db.SetPitchFxScrapedParams{
		NoPitchfxData:     noData,
		PitchCountPitchfx: int64(pitchCount),
		PitchAppID:        pitchAppID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	remaining, err := txqry.CountUnscrapedPitchApps(ctx, app.BbrefGameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if remaining == 0 {
		if err := txqry.SetAllPitchFxScraped(ctx, app.BbrefGameID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}

// AcquireCombineLease attempts to take the per-game combine lease.
// Reports false when another worker holds it.
func (s Service) AcquireCombineLease(ctx context.Context, gameID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "AcquireCombineLease")
	defer span.End()
	span.SetAttributes(attribute.String("game_id", gameID))

	affected, err := s.qry.AcquireCombineLease(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("acquired", affected > 0))
	return affected > 0, nil
}

func (s Service) ReleaseCombineLease(ctx context.Context, gameID string) error {
	ctx, span := tracer.Start(ctx, "ReleaseCombineLease")
	defer span.End()
	span.SetAttributes(attribute.String("game_id", gameID))

	err := s.qry.ReleaseCombineLease(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// PitchAppCombineResult is the per-appearance outcome of a combine
// run.
type PitchAppCombineResult struct {
	PitchAppID           string
	Valid                bool
	AuditedPitchCount    int
	DuplicateGuidRemoved int
	MissingPitchFxCount  int
}

// CombineResult is the per-game outcome of a combine run.
type CombineResult struct {
	GameID            string
	Success           bool
	Fail              bool
	AllPitchFxValid   bool
	AuditedPitchCount int
	PitchApps         []PitchAppCombineResult
}

// RecordCombineResult writes a combine run's outcome in one
// transaction, appearance rows before the game row.
func (s Service) RecordCombineResult(ctx context.Context, result CombineResult) error {
	ctx, span := tracer.Start(ctx, "RecordCombineResult")
	defer span.End()
	span.SetAttributes(
		attribute.String("game_id", result.GameID),
		attribute.Bool("success", result.Success),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, app := range result.PitchApps {
		err := txqry.SetPitchAppCombined(ctx, db.SetPitchAppCombinedParams{
			PitchfxValid:              app.Valid,
			PitchCountAudited:         int64(app.AuditedPitchCount),
			DuplicateGuidRemovedCount: int64(app.DuplicateGuidRemoved),
			MissingPitchfxCount:       int64(app.MissingPitchFxCount),
			PitchAppID:                app.PitchAppID,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = txqry.SetCombineResult(ctx, db.SetCombineResultParams{
		CombineSuccess:    result.Success,
		CombineFail:       result.Fail,
		AllPitchfxValid:   result.AllPitchFxValid,
		PitchCountAudited: int64(result.AuditedPitchCount),
		BbrefGameID:       result.GameID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return tx.Commit()
}

// PlayerMlbID resolves a bbref player id to the mlb id the brooks
// feed uses.
func (s Service) PlayerMlbID(ctx context.Context, bbrefID string) (int64, error) {
	player, err := s.qry.GetPlayer(ctx, bbrefID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, bbrefID)
	}
	if err != nil {
		return 0, err
	}
	return player.MlbID, nil
}

func (s Service) SeedPlayers(ctx context.Context, players []db.Player) error {
	ctx, span := tracer.Start(ctx, "SeedPlayers")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(players)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, player := range players {
		err := txqry.UpsertPlayer(ctx, db.UpsertPlayerParams{
			BbrefID: player.BbrefID,
			MlbID:   player.MlbID,
			Name:    player.Name,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}

func (s Service) SeedTeams(ctx context.Context, year int64, teams []db.Team) error {
	ctx, span := tracer.Start(ctx, "SeedTeams")
	defer span.End()
	span.SetAttributes(attribute.Int64("year", year))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, team := range teams {
		brooksID := team.BrooksTeamID
		if brooksID == "" {
			brooksID = mlbid.BrooksTeamID(team.BbrefTeamID)
		}
		err := txqry.UpsertTeam(ctx, db.UpsertTeamParams{
			BbrefTeamID:  team.BbrefTeamID,
			SeasonYear:   year,
			BrooksTeamID: brooksID,
			League:       team.League,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}

var ledgerTables = []string{
	"season",
	"game_date_status",
	"game_status",
	"pitch_app_status",
	"player",
	"team",
}

// Wipe clears every ledger table. Used by setup before re-seeding.
func (s Service) Wipe(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Wipe")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	for _, table := range ledgerTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}
