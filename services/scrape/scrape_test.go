package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/fetch"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/lib/testutil"
	"dugout-backend/services/combine"
	"dugout-backend/services/status"
	statusdb "dugout-backend/services/status/db"

	"github.com/stretchr/testify/require"
)

const (
	testGameID   = "SEA201906210"
	testBrooksID = "gid_2019_06_21_anamlb_seamlb_1"
)

var testDate = time.Date(2019, 6, 21, 0, 0, 0, 0, time.UTC)

// fakeFetcher serves canned pages and treats any unknown url the way
// the real client treats a dead site.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, fetched: map[string]int{}}
}

func (f *fakeFetcher) Render(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched[url]++
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: GET %s", fetch.ErrRetryLimitExceeded, url)
	}
	return html, nil
}

func (f *fakeFetcher) totalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.fetched {
		total += n
	}
	return total
}

const bbrefDashboardPage = `
<html><body>
<td class="gamelink"><a href="/boxes/SEA/SEA201906210.shtml">Final</a></td>
</body></html>`

const brooksDashboardPage = `
<html><body>
<table><tr>
<td class="dashcell">
  <b>LAA @ SEA 7:10 PM</b>
  <a href="/pfxVB/pfx.php?game=gid_2019_06_21_anamlb_seamlb_1&prevGame=gid_2019_06_21_anamlb_seamlb_1">Game Log</a>
  <a href="/strikezonemap.php?game=gid_2019_06_21_anamlb_seamlb_1">Strikezone Map</a>
  <a href="/pfxVB/pfx.php?game=gid_2019_06_21_anamlb_seamlb_1&pitchSel=605483">T. Skaggs</a>
  <a href="/pfxVB/pfx.php?game=gid_2019_06_21_anamlb_seamlb_1&pitchSel=572020">M. Gonzales</a>
</td>
</tr></table>
</body></html>`

// a minimal but structurally faithful boxscore page: linescore,
// scorebox records, two batting and two pitching tables, and a play
// by play table with one complete at-bat per half inning
const boxscorePage = `
<html><body>
<div class="scorebox">
  <div><div>Los Angeles Angels</div><div>40-37</div></div>
  <div><div>Seattle Mariners</div><div>35-43</div></div>
</div>
<table class="linescore"><tbody>
<tr><td><a href="/teams/LAA/2019.shtml">LAA</a></td><td class="center">0</td><td class="center">5</td><td class="center">0</td></tr>
<tr><td><a href="/teams/SEA/2019.shtml">SEA</a></td><td class="center">1</td><td class="center">7</td><td class="center">1</td></tr>
</tbody></table>
<table id="LosAngelesAngelsbatting"><tbody>
<tr><th data-stat="player"><a href="/players/t/troutmi01.shtml">Mike Trout</a> CF</th><td data-stat="AB">4</td><td data-stat="PA">4</td></tr>
</tbody></table>
<table id="SeattleMarinersbatting"><tbody>
<tr><th data-stat="player"><a href="/players/s/smithma05.shtml">Mallex Smith</a> CF</th><td data-stat="AB">4</td><td data-stat="PA">4</td></tr>
</tbody></table>
<table id="LosAngelesAngelspitching"><tbody>
<tr><th data-stat="player"><a href="/players/s/skaggty01.shtml">Tyler Skaggs</a></th><td data-stat="IP">7.0</td><td data-stat="pitches">4</td></tr>
</tbody></table>
<table id="SeattleMarinerspitching"><tbody>
<tr><th data-stat="player"><a href="/players/g/gonzama01.shtml">Marco Gonzales</a></th><td data-stat="IP">7.0</td><td data-stat="pitches">3</td></tr>
</tbody></table>
<table id="play_by_play"><tbody>
<tr><th data-stat="inning">t1</th><td data-stat="batter">Mike Trout</td><td data-stat="pitcher">Marco Gonzales</td><td data-stat="pitches_pbp">3,(1-1) CBX</td><td data-stat="play_desc">Groundout: SS-1B</td></tr>
<tr><th data-stat="inning">b1</th><td data-stat="batter">Mallex Smith</td><td data-stat="pitcher">Tyler Skaggs</td><td data-stat="pitches_pbp">4,(2-1) BCBX</td><td data-stat="play_desc">Single to LF</td></tr>
</tbody></table>
</body></html>`

func pitchLogPage(pitcherName string, pitcherID string, pitchCount int) string {
	return fmt.Sprintf(`
<html><body>
<select name="pitchSel"><option value="%s" selected>%s</option></select>
<table><tr><th>Inning 1</th><td>%d</td></tr></table>
<a href="/pfxVB/tabdel_expanded.php?game=%s&pitchSel=%s">Get Expanded Data</a>
</body></html>`, pitcherID, pitcherName, pitchCount, testBrooksID, pitcherID)
}

var pitchFxColumns = []string{
	"play_guid", "ab_id", "ab_count", "ab_total", "inning",
	"pitcher_team", "pitcher_id", "batter_id",
	"pdes", "des", "mlbam_pitch_name", "start_speed",
	"px", "pz", "x0", "y0", "z0", "vx0", "vy0", "vz0",
	"ax", "ay", "az", "pfx_x", "pfx_z",
	"zone_location", "park_sv_id",
}

type fxRowSpec struct {
	guid        string
	abID        string
	abCount     string
	pitcherTeam string
	pitcherID   string
	batterID    string
	parkSvID    string
}

func pitchFxPage(rows ...fxRowSpec) string {
	var b strings.Builder
	b.WriteString("<table><tr>")
	for _, col := range pitchFxColumns {
		fmt.Fprintf(&b, "<th>%s</th>", col)
	}
	b.WriteString("</tr>")
	for _, spec := range rows {
		values := map[string]string{
			"play_guid": spec.guid,
			"ab_id":     spec.abID, "ab_count": spec.abCount, "ab_total": "5",
			"inning": "1", "pitcher_team": spec.pitcherTeam,
			"pitcher_id": spec.pitcherID, "batter_id": spec.batterID,
			"pdes": "Called Strike", "des": "In play, out(s)",
			"mlbam_pitch_name": "FF", "start_speed": "91.3",
			"px": "0.12", "pz": "2.51",
			"x0": "-1.43", "y0": "50.0", "z0": "5.86",
			"vx0": "4.9", "vy0": "-132.8", "vz0": "-5.2",
			"ax": "-7.7", "ay": "28.1", "az": "-17.4",
			"pfx_x": "-4.4", "pfx_z": "8.3",
			"zone_location": "4", "park_sv_id": spec.parkSvID,
		}
		b.WriteString("<tr>")
		for _, col := range pitchFxColumns {
			fmt.Fprintf(&b, "<td>%s</td>", values[col])
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func skaggsFxPage() string {
	rows := make([]fxRowSpec, 0, 4)
	for i := 1; i <= 4; i++ {
		rows = append(rows, fxRowSpec{
			guid:    fmt.Sprintf("sk-%d", i),
			abID:    "2019001002", abCount: fmt.Sprint(i),
			pitcherTeam: "ana", pitcherID: "605483", batterID: "605480",
			parkSvID: fmt.Sprintf("190621_1912%02d", i),
		})
	}
	return pitchFxPage(rows...)
}

func gonzalesFxPage() string {
	rows := make([]fxRowSpec, 0, 3)
	for i := 1; i <= 3; i++ {
		rows = append(rows, fxRowSpec{
			guid:    fmt.Sprintf("gz-%d", i),
			abID:    "2019001001", abCount: fmt.Sprint(i),
			pitcherTeam: "sea", pitcherID: "572020", batterID: "545361",
			parkSvID: fmt.Sprintf("190621_1911%02d", i),
		})
	}
	return pitchFxPage(rows...)
}

func sitePages() map[string]string {
	brooksBase := "http://www.brooksbaseball.net"
	return map[string]string{
		bbref.DashboardURL(testDate):        bbrefDashboardPage,
		bbref.BoxscoreURL(testGameID):       boxscorePage,
		brooks.DashboardURL(testDate):       brooksDashboardPage,
		brooksBase + "/pfxVB/pfx.php?game=" + testBrooksID + "&pitchSel=605483": pitchLogPage("Tyler Skaggs", "605483", 4),
		brooksBase + "/pfxVB/pfx.php?game=" + testBrooksID + "&pitchSel=572020": pitchLogPage("Marco Gonzales", "572020", 3),
		brooksBase + "/pfxVB/tabdel_expanded.php?game=" + testBrooksID + "&pitchSel=605483": skaggsFxPage(),
		brooksBase + "/pfxVB/tabdel_expanded.php?game=" + testBrooksID + "&pitchSel=572020": gonzalesFxPage(),
	}
}

type fixture struct {
	svc     Service
	status  status.Service
	store   *blobstore.MemoryStore
	fetcher *fakeFetcher
}

func setup(t *testing.T, pages map[string]string) fixture {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "scrape",
		DbSchema: statusdb.Schema,
	})
	t.Cleanup(cleanup)

	statusSvc := status.NewService(result.DB)
	store := blobstore.NewMemoryStore()
	fetcher := newFakeFetcher(pages)
	combineSvc := combine.NewService(statusSvc, store)
	cfg := DefaultConfig()
	return fixture{
		svc:     NewService(statusSvc, store, fetcher, combineSvc, cfg),
		status:  statusSvc,
		store:   store,
		fetcher: fetcher,
	}
}

func seedLedger(t *testing.T, f fixture) {
	ctx := context.Background()
	require.NoError(t, f.status.SeedSeason(ctx, statusdb.Season{
		Year: 2019, SeasonKind: "regular",
		StartDate: "2019-06-20", EndDate: "2019-06-22",
	}))
	require.NoError(t, f.status.SeedPlayers(ctx, []statusdb.Player{
		{BbrefID: "troutmi01", MlbID: 545361, Name: "Mike Trout"},
		{BbrefID: "smithma05", MlbID: 605480, Name: "Mallex Smith"},
		{BbrefID: "skaggty01", MlbID: 605483, Name: "Tyler Skaggs"},
		{BbrefID: "gonzama01", MlbID: 572020, Name: "Marco Gonzales"},
	}))
}

func runParams() RunParams {
	return RunParams{
		DataSets: blobstore.AllDataSets,
		Start:    testDate,
		End:      testDate,
	}
}

func TestRunFullPipeline(t *testing.T) {
	f := setup(t, sitePages())
	seedLedger(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Run(ctx, runParams()))

	dateStatus, err := f.status.Queries().GetGameDateStatus(ctx, "2019-06-21")
	require.NoError(t, err)
	require.True(t, dateStatus.ScrapedDailyIndexBbref)
	require.True(t, dateStatus.ScrapedDailyIndexBrooks)
	require.Equal(t, int64(1), dateStatus.GameCountBbref)
	require.Equal(t, int64(1), dateStatus.GameCountBrooks)

	game, err := f.status.Queries().GetGameStatus(ctx, testGameID)
	require.NoError(t, err)
	require.Equal(t, testBrooksID, game.BrooksGameID)
	require.True(t, game.ScrapedBoxscore)
	require.True(t, game.ScrapedPitchLogs)
	require.True(t, game.AllPitchfxScraped)
	require.Equal(t, int64(2), game.PitchAppCountBbref)
	require.Equal(t, int64(7), game.PitchCountBbref)
	require.Equal(t, int64(7), game.PitchCountBrooks)

	// the scheduler combined the game once every prerequisite settled
	require.True(t, game.CombineSuccess)
	require.False(t, game.CombineFail)
	require.True(t, game.AllPitchfxValid)
	require.False(t, game.CombineLeased)

	combinedKey := blobstore.JSONKey(2019, blobstore.CombinedData, testGameID+"_COMBINED_DATA")
	data, err := f.store.Get(ctx, combinedKey)
	require.NoError(t, err)
	doc, err := combine.DecodeCombinedGame(data)
	require.NoError(t, err)
	require.Len(t, doc.AtBats, 2)
	for _, atBat := range doc.AtBats {
		require.Equal(t, combine.ClassComplete, atBat.Classification)
	}

	// every intermediate document and its html cache landed in the store
	for _, key := range []string{
		blobstore.JSONKey(2019, blobstore.BBRefGamesForDate, "bbref_games_for_date_2019-06-21"),
		blobstore.HTMLKey(2019, blobstore.BBRefGamesForDate, "bbref_games_for_date_2019-06-21"),
		blobstore.JSONKey(2019, blobstore.BrooksGamesForDate, "brooks_games_for_date_2019-06-21"),
		blobstore.JSONKey(2019, blobstore.BBRefBoxscores, testGameID),
		blobstore.HTMLKey(2019, blobstore.BBRefBoxscores, testGameID),
		blobstore.JSONKey(2019, blobstore.BrooksPitchLogs, testBrooksID),
		blobstore.JSONKey(2019, blobstore.BrooksPitchFx, testGameID+"_605483"),
		blobstore.JSONKey(2019, blobstore.BrooksPitchFx, testGameID+"_572020"),
	} {
		exists, err := f.store.Exists(ctx, key)
		require.NoError(t, err)
		require.True(t, exists, "missing blob %s", key)
	}

	apps, err := f.status.Queries().ListPitchAppsForGame(ctx, testGameID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	for _, app := range apps {
		require.True(t, app.ScrapedPitchfx)
		require.True(t, app.Combined)
		require.True(t, app.PitchfxValid)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := setup(t, sitePages())
	seedLedger(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Run(ctx, runParams()))
	fetchesAfterFirstRun := f.fetcher.totalFetches()

	require.NoError(t, f.svc.Run(ctx, runParams()))
	require.Equal(t, fetchesAfterFirstRun, f.fetcher.totalFetches(),
		"second run should not refetch anything")
}

func TestRunAbortsWhenRetryBudgetBurns(t *testing.T) {
	pages := sitePages()
	delete(pages, brooks.DashboardURL(testDate))
	f := setup(t, pages)
	seedLedger(t, f)
	ctx := context.Background()

	err := f.svc.Run(ctx, runParams())
	require.Error(t, err)
	require.ErrorIs(t, err, fetch.ErrRetryLimitExceeded)

	// the bbref index landed before the run died
	dateStatus, err := f.status.Queries().GetGameDateStatus(ctx, "2019-06-21")
	require.NoError(t, err)
	require.True(t, dateStatus.ScrapedDailyIndexBbref)
	require.False(t, dateStatus.ScrapedDailyIndexBrooks)
}

func TestRunSkipsUnseededDates(t *testing.T) {
	f := setup(t, sitePages())
	// no season seeded: every task hits the precondition wall, which
	// is logged and skipped rather than failing the run
	require.NoError(t, f.svc.Run(context.Background(), runParams()))
	require.Zero(t, f.fetcher.totalFetches())
}

func TestRunRejectsUnknownDataSet(t *testing.T) {
	f := setup(t, sitePages())
	err := f.svc.Run(context.Background(), RunParams{
		DataSets: []blobstore.DataSet{"nonsense"},
		Start:    testDate,
		End:      testDate,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown data set")
}

func TestRunRejectsInvertedDateRange(t *testing.T) {
	f := setup(t, sitePages())
	err := f.svc.Run(context.Background(), RunParams{
		DataSets: blobstore.AllDataSets,
		Start:    testDate,
		End:      testDate.AddDate(0, 0, -1),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "before start date")
}

func TestTasksFollowPipelineOrder(t *testing.T) {
	f := setup(t, sitePages())
	// request the sets backwards; tasks still come out in pipeline order
	reversed := make([]blobstore.DataSet, 0, len(blobstore.AllDataSets))
	for i := len(blobstore.AllDataSets) - 1; i >= 0; i-- {
		reversed = append(reversed, blobstore.AllDataSets[i])
	}

	tasks, err := f.svc.tasks(reversed)
	require.NoError(t, err)
	require.Len(t, tasks, len(blobstore.AllDataSets))
	for i, task := range tasks {
		require.Equal(t, blobstore.AllDataSets[i], task.DataSet())
	}

	_, err = f.svc.tasks([]blobstore.DataSet{blobstore.CombinedData})
	require.Error(t, err)
}

func TestPitchLogWithoutPitchFxDataSettlesAsNoData(t *testing.T) {
	pages := sitePages()
	// Gonzales' appearance page renders empty, so his pitchfx can
	// never be scraped; the appearance settles as no-data and the
	// game still reaches all-pitchfx-scraped
	pages["http://www.brooksbaseball.net/pfxVB/pfx.php?game="+testBrooksID+"&pitchSel=572020"] =
		"<html><body><p>nothing here</p></body></html>"
	f := setup(t, pages)
	seedLedger(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Run(ctx, runParams()))

	game, err := f.status.Queries().GetGameStatus(ctx, testGameID)
	require.NoError(t, err)
	require.True(t, game.AllPitchfxScraped)

	app, err := f.status.Queries().GetPitchAppStatus(ctx, testGameID+"_572020")
	require.NoError(t, err)
	require.True(t, app.NoPitchfxData)
	require.True(t, app.ScrapedPitchfx)
}
