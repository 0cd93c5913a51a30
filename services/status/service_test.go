package status

import (
	"context"
	"testing"
	"time"

	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/lib/testutil"
	"dugout-backend/services/status/db"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Service {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "status",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return NewService(result.DB)
}

func seedTestSeason(t *testing.T, svc Service) {
	err := svc.SeedSeason(context.Background(), db.Season{
		Year:       2019,
		SeasonKind: "regular",
		StartDate:  "2019-06-20",
		EndDate:    "2019-06-22",
	})
	require.NoError(t, err)
}

func testGames() []brooks.GameInfo {
	return []brooks.GameInfo{
		{
			BrooksGameID:  "gid_2019_06_21_anamlb_seamlb_1",
			BBRefGameID:   "SEA201906210",
			GameStartTime: "7:10 PM",
		},
		{
			BrooksGameID: "gid_2019_06_21_nyamlb_bosmlb_1",
			BBRefGameID:  "BOS201906210",
		},
	}
}

func TestSeedSeason(t *testing.T) {
	svc := setup(t)
	seedTestSeason(t, svc)

	dates, err := svc.Queries().ListGameDatesForSeason(context.Background(), 2019)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	require.Equal(t, "2019-06-20", dates[0].GameDate)
	require.Equal(t, "2019-06-22", dates[2].GameDate)
	require.False(t, dates[0].ScrapedDailyIndexBbref)

	// seeding again is harmless
	seedTestSeason(t, svc)
	dates, err = svc.Queries().ListGameDatesForSeason(context.Background(), 2019)
	require.NoError(t, err)
	require.Len(t, dates, 3)
}

func TestDailyIndexFlow(t *testing.T) {
	svc := setup(t)
	seedTestSeason(t, svc)
	ctx := context.Background()
	date := time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordBBRefDailyIndex(ctx, date, 2))
	require.NoError(t, svc.RecordBrooksDailyIndex(ctx, date, testGames()))

	dateStatus, err := svc.Queries().GetGameDateStatus(ctx, "2019-06-21")
	require.NoError(t, err)
	require.True(t, dateStatus.ScrapedDailyIndexBbref)
	require.True(t, dateStatus.ScrapedDailyIndexBrooks)
	require.Equal(t, int64(2), dateStatus.GameCountBbref)
	require.Equal(t, int64(2), dateStatus.GameCountBrooks)

	game, err := svc.Queries().GetGameStatus(ctx, "SEA201906210")
	require.NoError(t, err)
	require.Equal(t, "gid_2019_06_21_anamlb_seamlb_1", game.BrooksGameID)
	require.Equal(t, "7:10 PM", game.GameStartTime)
	require.Equal(t, int64(2019), game.SeasonYear)
	require.False(t, game.ScrapedBoxscore)
}

func TestBrooksDailyIndexRequiresSeededDate(t *testing.T) {
	svc := setup(t)
	date := time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)
	err := svc.RecordBrooksDailyIndex(context.Background(), date, testGames())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not part of a seeded season")
}

func registerGame(t *testing.T, svc Service) {
	seedTestSeason(t, svc)
	date := time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.RecordBrooksDailyIndex(context.Background(), date, testGames()))
}

func TestPitchFxCompletionFlipsGameFlag(t *testing.T) {
	svc := setup(t)
	registerGame(t, svc)
	ctx := context.Background()

	logs := []brooks.PitchLog{
		{PitchAppID: "SEA201906210_605483", PitcherID: 605483, TotalPitchCount: 91},
		{PitchAppID: "SEA201906210_572020", PitcherID: 572020, TotalPitchCount: 104},
	}
	require.NoError(t, svc.RecordPitchLogs(ctx, "SEA201906210", logs))

	game, err := svc.Queries().GetGameStatus(ctx, "SEA201906210")
	require.NoError(t, err)
	require.True(t, game.ScrapedPitchLogs)
	require.Equal(t, int64(2), game.PitchAppCountBrooks)
	require.Equal(t, int64(195), game.PitchCountBrooks)
	require.False(t, game.AllPitchfxScraped)

	require.NoError(t, svc.RecordPitchFx(ctx, "SEA201906210_605483", false, 91))
	game, err = svc.Queries().GetGameStatus(ctx, "SEA201906210")
	require.NoError(t, err)
	require.False(t, game.AllPitchfxScraped)

	// no-data appearances count as settled too
	require.NoError(t, svc.RecordPitchFx(ctx, "SEA201906210_572020", true, 0))
	game, err = svc.Queries().GetGameStatus(ctx, "SEA201906210")
	require.NoError(t, err)
	require.True(t, game.AllPitchfxScraped)
}

func TestCombineLease(t *testing.T) {
	svc := setup(t)
	registerGame(t, svc)
	ctx := context.Background()

	acquired, err := svc.AcquireCombineLease(ctx, "SEA201906210")
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = svc.AcquireCombineLease(ctx, "SEA201906210")
	require.NoError(t, err)
	require.False(t, acquired)

	require.NoError(t, svc.ReleaseCombineLease(ctx, "SEA201906210"))
	acquired, err = svc.AcquireCombineLease(ctx, "SEA201906210")
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestRecordCombineResult(t *testing.T) {
	svc := setup(t)
	registerGame(t, svc)
	ctx := context.Background()

	logs := []brooks.PitchLog{
		{PitchAppID: "SEA201906210_605483", PitcherID: 605483, TotalPitchCount: 91},
	}
	require.NoError(t, svc.RecordPitchLogs(ctx, "SEA201906210", logs))

	err := svc.RecordCombineResult(ctx, CombineResult{
		GameID:            "SEA201906210",
		Success:           true,
		AllPitchFxValid:   true,
		AuditedPitchCount: 91,
		PitchApps: []PitchAppCombineResult{{
			PitchAppID:           "SEA201906210_605483",
			Valid:                true,
			AuditedPitchCount:    91,
			DuplicateGuidRemoved: 1,
		}},
	})
	require.NoError(t, err)

	game, err := svc.Queries().GetGameStatus(ctx, "SEA201906210")
	require.NoError(t, err)
	require.True(t, game.CombineSuccess)
	require.False(t, game.CombineFail)
	require.True(t, game.AllPitchfxValid)
	require.Equal(t, int64(91), game.PitchCountAudited)

	app, err := svc.Queries().GetPitchAppStatus(ctx, "SEA201906210_605483")
	require.NoError(t, err)
	require.True(t, app.Combined)
	require.True(t, app.PitchfxValid)
	require.Equal(t, int64(1), app.DuplicateGuidRemovedCount)
}

func TestPlayerLookup(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.PlayerMlbID(ctx, "troutmi01")
	require.ErrorIs(t, err, ErrUnknownPlayer)

	err = svc.SeedPlayers(ctx, []db.Player{
		{BbrefID: "troutmi01", MlbID: 545361, Name: "Mike Trout"},
	})
	require.NoError(t, err)

	id, err := svc.PlayerMlbID(ctx, "troutmi01")
	require.NoError(t, err)
	require.Equal(t, int64(545361), id)
}

func TestWipe(t *testing.T) {
	svc := setup(t)
	registerGame(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Wipe(ctx))

	seasons, err := svc.Queries().ListSeasons(ctx)
	require.NoError(t, err)
	require.Empty(t, seasons)

	dates, err := svc.Queries().ListGameDatesForSeason(ctx, 2019)
	require.NoError(t, err)
	require.Empty(t, dates)
}
