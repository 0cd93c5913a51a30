package brooks

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"dugout-backend/lib/htmlutil"
	"dugout-backend/lib/mlbid"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("dugout.lib.scrapers.brooks")

var startTimeRegex = regexp.MustCompile(`\d{1,2}:\d{2}\s*[AP]M`)

// ParseGamesForDate walks the brooks daily dashboard. Games whose
// cell carries no game-log link fall back to the strikezone-map link
// and are flagged might-be-postponed; those must be corroborated by
// the bbref index for the same date (joined on home team code) or
// they are dropped.
func ParseGamesForDate(
	ctx context.Context,
	html string,
	date time.Time,
	dashboardURL string,
	bbrefGameIDs []string,
) (GamesForDate, error) {
	ctx, span := tracer.Start(ctx, "ParseGamesForDate")
	defer span.End()
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return GamesForDate{}, fmt.Errorf("parse brooks daily index %s: %w", dashboardURL, err)
	}

	bbrefHomeTeams := map[string]bool{}
	for _, gameID := range bbrefGameIDs {
		id, err := mlbid.ParseBBRefGameID(gameID)
		if err != nil {
			continue
		}
		bbrefHomeTeams[strings.ToLower(mlbid.BrooksTeamID(id.HomeTeamID))] = true
	}

	var games []GameInfo
	var cellErr error
	doc.Find("td.dashcell").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		game, ok, err := parseGameCell(ctx, cell, date)
		if err != nil {
			cellErr = err
			return false
		}
		if !ok {
			return true
		}

		if game.MightBePostponed && !bbrefHomeTeams[game.HomeTeamID] {
			slog.WarnContext(
				ctx, "dropping uncorroborated postponed-suspect game",
				"bb_game_id", game.BrooksGameID,
				"home_team", game.HomeTeamID,
			)
			return true
		}
		games = append(games, game)
		return true
	})
	if cellErr != nil {
		span.RecordError(cellErr)
		span.SetStatus(codes.Error, cellErr.Error())
		return GamesForDate{}, cellErr
	}

	assignBBRefGameIDs(games)

	span.SetAttributes(attribute.Int("game_count", len(games)))
	return GamesForDate{
		Tag:          true,
		DashboardURL: dashboardURL,
		GameDateStr:  date.Format("2006-01-02"),
		GameCount:    len(games),
		Games:        games,
	}, nil
}

func parseGameCell(ctx context.Context, cell *goquery.Selection, date time.Time) (GameInfo, bool, error) {
	anchors := htmlutil.GetAnchors(ctx, cell.Find("a"))

	// prefer the game-log link; the strikezone-map link only shows
	// up alone when the game may have been postponed
	var gameLink string
	postponed := false
	for _, a := range anchors {
		if strings.Contains(a.Href, "pfx.php") {
			gameLink = a.Href
			break
		}
	}
	if gameLink == "" {
		for _, a := range anchors {
			if strings.Contains(a.Href, "strikezonemap.php") {
				gameLink = a.Href
				postponed = true
				break
			}
		}
	}
	if gameLink == "" {
		return GameInfo{}, false, nil
	}

	rawGameID, err := GameIDFromURL(gameLink)
	if err != nil {
		return GameInfo{}, false, fmt.Errorf("dashboard cell for %s: %w", date.Format("2006-01-02"), err)
	}
	gameID, err := mlbid.ParseBrooksGameID(rawGameID)
	if err != nil {
		return GameInfo{}, false, err
	}

	game := GameInfo{
		Tag:                   true,
		BrooksGameID:          gameID.String(),
		GameDateStr:           date.Format("2006-01-02"),
		AwayTeamID:            strings.ToLower(gameID.AwayTeamID),
		HomeTeamID:            strings.ToLower(gameID.HomeTeamID),
		GameNumberThisDay:     gameID.GameNumber,
		MightBePostponed:      postponed,
		PitcherAppearanceDict: map[string]string{},
	}

	if m := startTimeRegex.FindString(htmlutil.CleanText(cell.Text())); m != "" {
		game.GameStartTime = m
	}

	if !postponed {
		for _, a := range anchors {
			pitcherID, ok := PitcherIDFromURL(a.Href)
			if !ok {
				continue
			}
			href := a.Href
			if strings.HasPrefix(href, "/") {
				href = baseURL + href
			}
			game.PitcherAppearanceDict[pitcherID] = href
		}
		game.PitcherAppearanceCount = len(game.PitcherAppearanceDict)
	}

	return game, true, nil
}

// assignBBRefGameIDs derives each game's bbref id. A home team with a
// single game that day gets game-of-day digit 0; when the paired
// trailing _1/_2 id is present the day is a doubleheader and the
// digit is the 1-based game number.
func assignBBRefGameIDs(games []GameInfo) {
	byHomeTeam := map[string][]int{}
	for i, game := range games {
		byHomeTeam[game.HomeTeamID] = append(byHomeTeam[game.HomeTeamID], i)
	}

	for _, indexes := range byHomeTeam {
		sort.Slice(indexes, func(a, b int) bool {
			return games[indexes[a]].BrooksGameID < games[indexes[b]].BrooksGameID
		})
		doubleheader := len(indexes) > 1
		for _, i := range indexes {
			bid, err := mlbid.ParseBrooksGameID(games[i].BrooksGameID)
			if err != nil {
				continue
			}
			games[i].BBRefGameID = bid.ToBBRef(doubleheader).String()
		}
	}
}
