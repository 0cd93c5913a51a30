package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/lib/testutil"
	"dugout-backend/services/combine"
	"dugout-backend/services/status"
	statusdb "dugout-backend/services/status/db"

	"github.com/stretchr/testify/require"
)

const testGameID = "SEA201906210"

type fixture struct {
	svc    Service
	status status.Service
	store  *blobstore.MemoryStore
}

func setup(t *testing.T) fixture {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "audit",
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

func seedGames(t *testing.T, f fixture) {
	ctx := context.Background()
	require.NoError(t, f.status.SeedSeason(ctx, statusdb.Season{
		Year: 2019, SeasonKind: "regular",
		StartDate: "2019-06-20", EndDate: "2019-06-22",
	}))
	require.NoError(t, f.status.RecordBrooksDailyIndex(ctx,
		time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC),
		[]brooks.GameInfo{
			{BrooksGameID: "gid_2019_06_21_anamlb_seamlb_1", BBRefGameID: testGameID},
			{BrooksGameID: "gid_2019_06_21_nyamlb_bosmlb_1", BBRefGameID: "BOS201906210"},
		}))
	require.NoError(t, f.status.RecordBrooksDailyIndex(ctx,
		time.Date(2019, 6, 22, 0, 0, 0, 0, time.UTC),
		[]brooks.GameInfo{
			{BrooksGameID: "gid_2019_06_22_anamlb_seamlb_1", BBRefGameID: "SEA201906220"},
		}))
}

func fxRowAt(timestamp string, pitchType string, speed float64, description string) brooks.PitchFxRow {
	return brooks.PitchFxRow{
		PitcherID:        605483,
		PitchTypeCode:    pitchType,
		StartSpeed:       speed,
		PitchDescription: description,
		TimePitchThrown:  timestamp,
	}
}

func testCombinedDoc() combine.CombinedGame {
	return combine.CombinedGame{
		Tag:         true,
		BBRefGameID: testGameID,
		AtBats: []combine.CombinedAtBat{
			{
				AtBatID:      testGameID + "_01_ANA_605483_SEA_500001_0",
				InningID:     testGameID + "_INN_TOP01",
				PitcherIDMlb: 605483,
				PitchFxRows: []brooks.PitchFxRow{
					fxRowAt("2019-06-21 19:00:00", "FF", 92, "Called Strike"),
					fxRowAt("2019-06-21 19:00:20", "FF", 93, "Ball"),
					fxRowAt("2019-06-21 19:00:40", "CU", 78, "Swinging Strike"),
				},
			},
			{
				AtBatID:      testGameID + "_01_ANA_605483_SEA_500002_0",
				InningID:     testGameID + "_INN_TOP01",
				PitcherIDMlb: 605483,
				PitchFxRows: []brooks.PitchFxRow{
					fxRowAt("2019-06-21 19:01:30", "FF", 91, "Foul"),
					fxRowAt("2019-06-21 19:01:50", "FF", 92, "In play, out(s)"),
				},
			},
			{
				AtBatID:      testGameID + "_01_SEA_572020_ANA_500003_0",
				InningID:     testGameID + "_INN_BOT01",
				PitcherIDMlb: 572020,
				PitchFxRows: []brooks.PitchFxRow{
					fxRowAt("2019-06-21 19:05:00", "CH", 84, "Called Strike"),
				},
			},
		},
	}
}

func putCombinedDoc(t *testing.T, f fixture, doc combine.CombinedGame) {
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	key := blobstore.JSONKey(2019, blobstore.CombinedData, doc.BBRefGameID+"_COMBINED_DATA")
	require.NoError(t, f.store.Put(context.Background(), key, data))
}

func TestSeasonSummary(t *testing.T) {
	f := setup(t)
	seedGames(t, f)
	ctx := context.Background()
	require.NoError(t, f.status.RecordBoxscore(ctx, testGameID, 2, 7))

	summary, err := f.svc.SeasonSummary(ctx, 2019)
	require.NoError(t, err)

	require.Equal(t, 3, summary.TotalGames)
	require.Equal(t, 1, summary.ScrapedBoxscores)
	require.Equal(t, int64(7), summary.PitchCountBBRef)
	require.Len(t, summary.Dates, 2)
	require.Equal(t, "2019-06-21", summary.Dates[0].GameDate)
	require.Equal(t, 2, summary.Dates[0].TotalGames)
	require.Equal(t, 1, summary.Dates[0].ScrapedBoxscores)
	require.Equal(t, "2019-06-22", summary.Dates[1].GameDate)

	rendered := RenderSeasonSummary(summary)
	require.Contains(t, rendered, "2019-06-21")
	require.Contains(t, rendered, "bbref=7")
}

func TestSeasonSummaryEmptyLedger(t *testing.T) {
	f := setup(t)
	_, err := f.svc.SeasonSummary(context.Background(), 2019)
	require.Error(t, err)
}

func TestGameTimingSplitsGapsByLocation(t *testing.T) {
	f := setup(t)
	putCombinedDoc(t, f, testCombinedDoc())

	report, err := f.svc.GameTiming(context.Background(), testGameID)
	require.NoError(t, err)

	// three within-at-bat gaps of 20s each
	require.Equal(t, 3, report.WithinAtBat.Count)
	require.Equal(t, 20.0, report.WithinAtBat.Avg)
	require.Equal(t, 20.0, report.WithinAtBat.Min)
	require.Equal(t, 20.0, report.WithinAtBat.Max)

	// 19:00:40 -> 19:01:30 within the same inning
	require.Equal(t, 1, report.BetweenAtBats.Count)
	require.Equal(t, 50.0, report.BetweenAtBats.Avg)

	// 19:01:50 -> 19:05:00 across the inning change
	require.Equal(t, 1, report.BetweenInnings.Count)
	require.Equal(t, 190.0, report.BetweenInnings.Avg)
}

func TestGameTimingMissingDocument(t *testing.T) {
	f := setup(t)
	_, err := f.svc.GameTiming(context.Background(), testGameID)
	require.Error(t, err)
}

func TestSeasonTimingSkipsGamesWithoutDocuments(t *testing.T) {
	f := setup(t)
	seedGames(t, f)
	putCombinedDoc(t, f, testCombinedDoc())

	report, err := f.svc.SeasonTiming(context.Background(), 2019)
	require.NoError(t, err)
	require.Equal(t, 3, report.WithinAtBat.Count)
}

func TestSeasonTimingExcludesGamesWithPitchFxErrors(t *testing.T) {
	f := setup(t)
	seedGames(t, f)
	putCombinedDoc(t, f, testCombinedDoc())

	errored := testCombinedDoc()
	errored.BBRefGameID = "BOS201906210"
	errored.Audit.PitchFxError = true
	errored.Audit.InvalidPitchFx = true
	errored.Audit.AllPitchFxValid = false
	putCombinedDoc(t, f, errored)

	report, err := f.svc.SeasonTiming(context.Background(), 2019)
	require.NoError(t, err)
	// only the clean game's three within-at-bat gaps survive
	require.Equal(t, 3, report.WithinAtBat.Count)
	require.Equal(t, 1, report.BetweenAtBats.Count)
	require.Equal(t, 1, report.BetweenInnings.Count)
}

func TestComputeTimingStatsWindow(t *testing.T) {
	// values outside [3, 3600] never reach the statistics
	stats := computeTimingStats([]float64{1, 10, 20, 30, 5000})
	require.Equal(t, 3, stats.Count)
	require.Equal(t, 20.0, stats.Avg)
	require.Equal(t, 10.0, stats.Min)
	require.Equal(t, 30.0, stats.Max)

	require.Zero(t, computeTimingStats(nil).Count)
	require.Zero(t, computeTimingStats([]float64{0.5}).Count)
}

func TestComputeTimingStatsStripsOutliers(t *testing.T) {
	// a rain delay sits inside the window but far outside three
	// standard deviations of the rest
	samples := make([]float64, 0, 31)
	for i := 0; i < 30; i++ {
		samples = append(samples, 20)
	}
	samples = append(samples, 3000)

	stats := computeTimingStats(samples)
	require.Equal(t, 30, stats.Count)
	require.Equal(t, 20.0, stats.Avg)
	require.Equal(t, 20.0, stats.Max)
}

func TestPitchMix(t *testing.T) {
	rows := []brooks.PitchFxRow{
		fxRowAt("2019-06-21 19:00:00", "FF", 92, "Called Strike"),
		fxRowAt("2019-06-21 19:00:20", "FF", 94, "Swinging Strike"),
		fxRowAt("2019-06-21 19:00:40", "FF", 93, "Ball"),
		fxRowAt("2019-06-21 19:01:00", "CH", 84, "In play, run(s)"),
	}

	mix := pitchMix(rows)
	require.Len(t, mix, 2)

	ff := mix[0]
	require.Equal(t, "FF", ff.PitchType)
	require.Equal(t, 3, ff.Count)
	require.Equal(t, 75.0, ff.Percent)
	require.Equal(t, 93.0, ff.AvgSpeed)
	require.Equal(t, 1, ff.CalledStrikes)
	require.Equal(t, 1, ff.SwingingStrikes)
	require.InDelta(t, 66.7, ff.CSW, 0.1)

	ch := mix[1]
	require.Equal(t, "CH", ch.PitchType)
	require.Equal(t, 25.0, ch.Percent)
	require.Zero(t, ch.CSW)
}

func TestPitcherPitchMixFiltersByPitcher(t *testing.T) {
	f := setup(t)
	seedGames(t, f)
	putCombinedDoc(t, f, testCombinedDoc())
	ctx := context.Background()

	mix, err := f.svc.PitcherPitchMix(ctx, 2019, 605483)
	require.NoError(t, err)
	total := 0
	for _, stats := range mix {
		total += stats.Count
	}
	require.Equal(t, 5, total)

	other, err := f.svc.PitcherPitchMix(ctx, 2019, 572020)
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, "CH", other[0].PitchType)
}
