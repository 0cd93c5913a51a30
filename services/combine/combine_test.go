package combine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/patch"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/lib/testutil"
	"dugout-backend/services/status"
	statusdb "dugout-backend/services/status/db"

	"github.com/stretchr/testify/require"
)

const (
	testGameID   = "SEA201906210"
	testBrooksID = "gid_2019_06_21_anamlb_seamlb_1"
	testAppID    = "SEA201906210_605483"
)

type fixture struct {
	svc    Service
	status status.Service
	store  *blobstore.MemoryStore
}

func setup(t *testing.T) fixture {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "combine",
		DbSchema: statusdb.Schema,
	})
	t.Cleanup(cleanup)

	statusSvc := status.NewService(result.DB)
	store := blobstore.NewMemoryStore()
	return fixture{
		svc:    NewService(statusSvc, store),
		status: statusSvc,
		store:  store,
	}
}

func testBoxscore() bbref.Boxscore {
	return bbref.Boxscore{
		Tag:    true,
		GameID: testGameID,
		PlayerNameDict: map[string]string{
			"Tyler Skaggs": "skaggty01",
			"Joe Smith":    "smithjo01",
			"Dan Jones":    "jonesda01",
		},
		InningsList: []bbref.HalfInning{{
			InningID:    "SEA201906210_INN_BOT01",
			InningLabel: "b1",
			GameEvents: []bbref.PlayByPlayEvent{
				{
					EventID:         "SEA201906210_EVENT_001",
					Inning:          1,
					PitchSequence:   "CSX",
					TeamPitchingID:  "LAA",
					TeamBattingID:   "SEA",
					PitcherID:       "skaggty01",
					BatterID:        "smithjo01",
					PlayDescription: "Groundout: 2B-1B",
					RowNumber:       1,
				},
				{
					EventID:         "SEA201906210_EVENT_002",
					Inning:          1,
					PitchSequence:   "BCBX",
					TeamPitchingID:  "LAA",
					TeamBattingID:   "SEA",
					PitcherID:       "skaggty01",
					BatterID:        "jonesda01",
					PlayDescription: "Single to CF",
					RowNumber:       2,
				},
			},
		}},
	}
}

func fxRow(abID int64, abCount int, batterID int64, guid string) brooks.PitchFxRow {
	return brooks.PitchFxRow{
		PlayGUID:        guid,
		ABID:            abID,
		ABCount:         abCount,
		Inning:          1,
		PitcherTeam:     "ana",
		PitcherID:       605483,
		BatterTeam:      "sea",
		BatterID:        batterID,
		PitchTypeCode:   "FF",
		StartSpeed:      91.0,
		HasZoneLocation: true,
		ZoneLocation:    5,
		TimePitchThrown: "2019-06-21 19:11:52",
	}
}

func testPitchFxRows() []brooks.PitchFxRow {
	return []brooks.PitchFxRow{
		fxRow(1, 1, 500001, "g1"),
		fxRow(1, 2, 500001, "g2"),
		fxRow(1, 3, 500001, "g3"),
		fxRow(2, 1, 500002, "g4"),
		fxRow(2, 2, 500002, "g5"),
		fxRow(2, 3, 500002, "g6"),
		fxRow(2, 4, 500002, "g7"),
	}
}

// seeds the ledger and blob store for a fully scraped game
func stageGame(t *testing.T, f fixture, rows []brooks.PitchFxRow) {
	ctx := context.Background()

	require.NoError(t, f.status.SeedSeason(ctx, statusdb.Season{
		Year: 2019, SeasonKind: "regular",
		StartDate: "2019-06-20", EndDate: "2019-06-22",
	}))
	require.NoError(t, f.status.SeedPlayers(ctx, []statusdb.Player{
		{BbrefID: "skaggty01", MlbID: 605483, Name: "Tyler Skaggs"},
		{BbrefID: "smithjo01", MlbID: 500001, Name: "Joe Smith"},
		{BbrefID: "jonesda01", MlbID: 500002, Name: "Dan Jones"},
	}))

	date := time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.status.RecordBrooksDailyIndex(ctx, date, []brooks.GameInfo{{
		BrooksGameID:  testBrooksID,
		BBRefGameID:   testGameID,
		GameStartTime: "7:10 PM",
	}}))
	require.NoError(t, f.status.RecordBoxscore(ctx, testGameID, 1, 7))

	pitchLog := brooks.PitchLog{
		Tag:             true,
		PitchAppID:      testAppID,
		PitcherID:       605483,
		PitcherName:     "Tyler Skaggs",
		BrooksGameID:    testBrooksID,
		BBRefGameID:     testGameID,
		TotalPitchCount: 7,
	}
	require.NoError(t, f.status.RecordPitchLogs(ctx, testGameID, []brooks.PitchLog{pitchLog}))
	require.NoError(t, f.status.RecordPitchFx(ctx, testAppID, false, len(rows)))

	boxData, err := json.Marshal(testBoxscore())
	require.NoError(t, err)
	boxKey := blobstore.JSONKey(2019, blobstore.BBRefBoxscores, testGameID)
	require.NoError(t, f.store.Put(ctx, boxKey, boxData))

	logsData, err := json.Marshal(brooks.PitchLogsForGame{
		Tag:           true,
		BrooksGameID:  testBrooksID,
		BBRefGameID:   testGameID,
		PitchLogCount: 1,
		PitchLogs:     []brooks.PitchLog{pitchLog},
	})
	require.NoError(t, err)
	logsKey := blobstore.JSONKey(2019, blobstore.BrooksPitchLogs, testBrooksID)
	require.NoError(t, f.store.Put(ctx, logsKey, logsData))

	fxData, err := json.Marshal(brooks.PitchFxLog{
		Tag:         true,
		PitchAppID:  testAppID,
		PitcherID:   605483,
		PitchFxRows: rows,
	})
	require.NoError(t, err)
	fxKey := blobstore.JSONKey(2019, blobstore.BrooksPitchFx, testAppID)
	require.NoError(t, f.store.Put(ctx, fxKey, fxData))
}

func TestCombineGameComplete(t *testing.T) {
	f := setup(t)
	stageGame(t, f, testPitchFxRows())
	ctx := context.Background()

	doc, err := f.svc.CombineGame(ctx, testGameID)
	require.NoError(t, err)

	require.Len(t, doc.AtBats, 2)
	first := doc.AtBats[0]
	require.Equal(t, "SEA201906210_01_ANA_605483_SEA_500001_0", first.AtBatID)
	require.Equal(t, ClassComplete, first.Classification)
	require.Equal(t, 3, first.PitchCountBBRef)
	require.Equal(t, 3, first.PitchCountPitchFx)
	require.Equal(t, "Tyler Skaggs", first.PitcherName)
	require.Equal(t, "Joe Smith", first.BatterName)
	require.Len(t, first.PitchSequenceDesc, 4)

	second := doc.AtBats[1]
	require.Equal(t, ClassComplete, second.Classification)
	require.Equal(t, 4, second.PitchCountPitchFx)

	// conservation: pitches-a == pitches-pfx + missing - extra-removed
	audit := doc.Audit
	require.Equal(t, audit.PitchCountBBRef,
		audit.PitchCountPitchFx+audit.MissingPitchFxCount-audit.ExtraPitchFxRemovedCount)
	require.Equal(t, 2, audit.AtBatsComplete)
	require.True(t, audit.AllPitchFxValid)
	require.False(t, audit.PitchFxError)

	// document persisted under the combined-data key
	key := blobstore.JSONKey(2019, blobstore.CombinedData, testGameID+"_COMBINED_DATA")
	data, err := f.store.Get(ctx, key)
	require.NoError(t, err)
	decoded, err := DecodeCombinedGame(data)
	require.NoError(t, err)
	require.Equal(t, testGameID, decoded.BBRefGameID)

	// ledger updated, appearance before game, lease released
	game, err := f.status.Queries().GetGameStatus(ctx, testGameID)
	require.NoError(t, err)
	require.True(t, game.CombineSuccess)
	require.True(t, game.AllPitchfxValid)
	require.False(t, game.CombineLeased)
	require.Equal(t, int64(7), game.PitchCountAudited)

	app, err := f.status.Queries().GetPitchAppStatus(ctx, testAppID)
	require.NoError(t, err)
	require.True(t, app.Combined)
	require.True(t, app.PitchfxValid)
}

func TestCombineGameMissingPitchFx(t *testing.T) {
	f := setup(t)
	rows := testPitchFxRows()
	// drop pitch 2 of the first at-bat
	rows = append(rows[:1], rows[2:]...)
	stageGame(t, f, rows)

	doc, err := f.svc.CombineGame(context.Background(), testGameID)
	require.NoError(t, err)

	first := doc.AtBats[0]
	require.Equal(t, ClassMissingPitchFx, first.Classification)
	require.Equal(t, []int{2}, first.MissingPitchNumbers)
	require.Equal(t, 1, doc.Audit.AtBatsMissingPitchFx)
	require.Equal(t, []string{first.AtBatID}, doc.Audit.AtBatIDsMissingPitchFx)
	// missing data does not make the game invalid
	require.True(t, doc.Audit.AllPitchFxValid)
	require.Equal(t, doc.Audit.PitchCountBBRef,
		doc.Audit.PitchCountPitchFx+doc.Audit.MissingPitchFxCount-doc.Audit.ExtraPitchFxRemovedCount)
}

func TestCombineGameExtraTrailingRowsRemoved(t *testing.T) {
	f := setup(t)
	rows := testPitchFxRows()
	rows = append(rows, fxRow(2, 5, 500002, "g8"))
	stageGame(t, f, rows)

	doc, err := f.svc.CombineGame(context.Background(), testGameID)
	require.NoError(t, err)

	second := doc.AtBats[1]
	require.Equal(t, ClassExtraPitchFxRemoved, second.Classification)
	require.Equal(t, 1, second.ExtraRowsRemoved)
	// counted before removal, emitted after
	require.Equal(t, 5, second.PitchCountPitchFx)
	require.Len(t, second.PitchFxRows, 4)
	require.True(t, doc.Audit.AllPitchFxValid)
	require.Equal(t, 7, doc.Audit.PitchCountBBRef)
	require.Equal(t, 8, doc.Audit.PitchCountPitchFx)
	require.Equal(t, 1, doc.Audit.ExtraPitchFxRemovedCount)
	require.Equal(t, 7, doc.Audit.PitchCountAudited)
	require.Equal(t, doc.Audit.PitchCountBBRef,
		doc.Audit.PitchCountPitchFx+doc.Audit.MissingPitchFxCount-doc.Audit.ExtraPitchFxRemovedCount)

	game, err := f.status.Queries().GetGameStatus(context.Background(), testGameID)
	require.NoError(t, err)
	require.Equal(t, int64(7), game.PitchCountAudited)
}

func TestCombineGameInvalidPitchFx(t *testing.T) {
	f := setup(t)
	rows := testPitchFxRows()
	// duplicate pitch number that cannot be explained as trailing
	rows[1].ABCount = 1
	rows[1].PlayGUID = "g2-dup"
	stageGame(t, f, rows)

	doc, err := f.svc.CombineGame(context.Background(), testGameID)
	require.NoError(t, err)

	first := doc.AtBats[0]
	require.Equal(t, ClassInvalidPitchFx, first.Classification)
	require.False(t, doc.Audit.AllPitchFxValid)
	require.True(t, doc.Audit.PitchFxError)
	require.True(t, doc.Audit.InvalidPitchFx)
	require.Equal(t, []string{first.AtBatID}, doc.Audit.AtBatIDsInvalidPitchFx)

	game, err := f.status.Queries().GetGameStatus(context.Background(), testGameID)
	require.NoError(t, err)
	require.True(t, game.CombineSuccess)
	require.False(t, game.AllPitchfxValid)
}

func TestCombineGameReconcileFailure(t *testing.T) {
	f := setup(t)
	rows := testPitchFxRows()
	// a batter the play-by-play never saw
	rows = append(rows, fxRow(3, 1, 999999, "g9"))
	stageGame(t, f, rows)

	_, err := f.svc.CombineGame(context.Background(), testGameID)
	require.ErrorIs(t, err, ErrReconcileFailure)
	require.Contains(t, err.Error(), "SEA201906210_01_ANA_605483_SEA_999999_0")

	game, err := f.status.Queries().GetGameStatus(context.Background(), testGameID)
	require.NoError(t, err)
	require.True(t, game.CombineFail)
	require.False(t, game.CombineLeased)
}

func TestCombineGamePreconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.status.SeedSeason(ctx, statusdb.Season{
		Year: 2019, SeasonKind: "regular",
		StartDate: "2019-06-20", EndDate: "2019-06-22",
	}))
	date := time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.status.RecordBrooksDailyIndex(ctx, date, []brooks.GameInfo{{
		BrooksGameID: testBrooksID,
		BBRefGameID:  testGameID,
	}}))

	_, err := f.svc.CombineGame(ctx, testGameID)
	require.ErrorIs(t, err, status.ErrPreconditionUnmet)
}

func TestCombineGameLeaseBlocksSecondWorker(t *testing.T) {
	f := setup(t)
	stageGame(t, f, testPitchFxRows())
	ctx := context.Background()

	acquired, err := f.status.AcquireCombineLease(ctx, testGameID)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.svc.CombineGame(ctx, testGameID)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestCombineGamePatchedPitchFx(t *testing.T) {
	f := setup(t)
	rows := testPitchFxRows()
	// feed credited the first at-bat's pitches to the wrong hitter
	for i := 0; i < 3; i++ {
		rows[i].BatterID = 999999
	}
	stageGame(t, f, rows)
	ctx := context.Background()

	fxKey := blobstore.JSONKey(2019, blobstore.BrooksPitchFx, testAppID)
	patchData, err := patch.EncodeList(patch.List{Actions: []patch.Action{
		patch.PatchBrooksPitchFxBatterID{
			PitchAppID: testAppID,
			ABID:       1,
			CorrectID:  500001,
		},
	}})
	require.NoError(t, err)
	require.NoError(t, f.store.Put(ctx, blobstore.PatchListKey(fxKey), patchData))

	doc, err := f.svc.CombineGame(ctx, testGameID)
	require.NoError(t, err)

	first := doc.AtBats[0]
	require.Equal(t, ClassComplete, first.Classification)
	require.True(t, first.Patched)
	require.Equal(t, []string{first.AtBatID}, doc.Audit.AtBatIDsPatchedPitchFx)
	require.True(t, doc.Audit.AllPitchFxValid)
}

func TestDedupeByGUIDKeepsRankOne(t *testing.T) {
	gameStart := time.Date(2019, 6, 21, 19, 10, 0, 0, time.UTC)
	far := fxRow(1, 1, 500001, "dup")
	far.TimePitchThrown = "2019-06-21 23:59:00"
	near := fxRow(1, 1, 500001, "dup")
	near.TimePitchThrown = "2019-06-21 19:11:00"
	noZone := fxRow(1, 1, 500001, "dup")
	noZone.TimePitchThrown = "2019-06-21 19:10:30"
	noZone.HasZoneLocation = false

	kept, removed := dedupeByGUID([]brooks.PitchFxRow{far, noZone, near}, gameStart)
	require.Equal(t, 2, removed)
	require.Len(t, kept, 1)
	// zone location wins over timestamp proximity
	require.True(t, kept[0].HasZoneLocation)
	require.Equal(t, "2019-06-21 19:11:00", kept[0].TimePitchThrown)
}

func TestAssignAtBatIDsSplitsRematchup(t *testing.T) {
	// same 6-tuple twice in one inning, distinguished by ab_id
	rows := []brooks.PitchFxRow{
		fxRow(20, 1, 500001, "h1"),
		fxRow(20, 2, 500001, "h2"),
		fxRow(35, 1, 500001, "h3"),
	}
	assigned := assignAtBatIDs(testGameID, rows)
	require.Len(t, assigned, 2)
	require.Len(t, assigned["SEA201906210_01_ANA_605483_SEA_500001_0"], 2)
	require.Len(t, assigned["SEA201906210_01_ANA_605483_SEA_500001_1"], 1)
}

func TestBuildPlayByPlayAtBatsInstanceIncrements(t *testing.T) {
	box := testBoxscore()
	// same matchup again later in the game
	box.InningsList[0].GameEvents = append(box.InningsList[0].GameEvents, bbref.PlayByPlayEvent{
		EventID:        "SEA201906210_EVENT_003",
		Inning:         1,
		PitchSequence:  "X",
		TeamPitchingID: "LAA",
		TeamBattingID:  "SEA",
		PitcherID:      "skaggty01",
		BatterID:       "smithjo01",
		RowNumber:      3,
	})

	ids := map[string]int64{"skaggty01": 605483, "smithjo01": 500001, "jonesda01": 500002}
	atBats, err := buildPlayByPlayAtBats(box, func(bbrefID string) (int64, error) {
		return ids[bbrefID], nil
	})
	require.NoError(t, err)
	require.Len(t, atBats, 3)
	require.Equal(t, "SEA201906210_01_ANA_605483_SEA_500001_0", atBats[0].id.String())
	require.Equal(t, "SEA201906210_01_ANA_605483_SEA_500001_1", atBats[2].id.String())
}

func TestBuildPlayByPlayAtBatsBalkDoesNotClose(t *testing.T) {
	box := testBoxscore()
	box.InningsList[0].GameEvents[0].PitchSequence = "CSX"
	box.InningsList[0].GameEvents[0].PlayDescription = "Balk; Smith advances to 2B"

	ids := map[string]int64{"skaggty01": 605483, "smithjo01": 500001, "jonesda01": 500002}
	atBats, err := buildPlayByPlayAtBats(box, func(bbrefID string) (int64, error) {
		return ids[bbrefID], nil
	})
	require.NoError(t, err)
	// the balk row folds into the following at-bat's group
	require.Len(t, atBats, 1)
	require.Len(t, atBats[0].events, 2)
}

func TestClassifyAtBat(t *testing.T) {
	complete := []brooks.PitchFxRow{fxRow(1, 1, 1, "a"), fxRow(1, 2, 1, "b")}
	class, missing, kept := classifyAtBat(2, complete)
	require.Equal(t, ClassComplete, class)
	require.Empty(t, missing)
	require.Len(t, kept, 2)

	class, missing, kept = classifyAtBat(4, complete)
	require.Equal(t, ClassMissingPitchFx, class)
	require.Equal(t, []int{3, 4}, missing)
	require.Len(t, kept, 2)

	extra := append(complete, fxRow(1, 3, 1, "c"))
	class, _, kept = classifyAtBat(2, extra)
	require.Equal(t, ClassExtraPitchFxRemoved, class)
	require.Len(t, kept, 2)

	gapAndShort := []brooks.PitchFxRow{fxRow(1, 1, 1, "a"), fxRow(1, 4, 1, "d")}
	class, _, _ = classifyAtBat(2, gapAndShort)
	require.Equal(t, ClassInvalidPitchFx, class)
}
