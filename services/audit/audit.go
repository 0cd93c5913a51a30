// Package audit reads the status ledger and the combined documents
// back out and answers questions about them: season progress,
// time-between-pitches metrics and pitch mix breakdowns.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/mlbid"
	"dugout-backend/services/combine"
	"dugout-backend/services/status"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/audit")

type Service struct {
	status status.Service
	store  blobstore.Store
}

func NewService(statusSvc status.Service, store blobstore.Store) Service {
	return Service{status: statusSvc, store: store}
}

// DateSummary is one row of the season report.
type DateSummary struct {
	GameDate          string
	TotalGames        int
	ScrapedBoxscores  int
	ScrapedPitchLogs  int
	AllPitchFxScraped int
	CombineSuccess    int
	CombineFail       int
	AllPitchFxValid   int
}

type SeasonSummary struct {
	Year              int64
	TotalGames        int
	ScrapedBoxscores  int
	ScrapedPitchLogs  int
	AllPitchFxScraped int
	CombineSuccess    int
	CombineFail       int
	AllPitchFxValid   int
	PitchCountBBRef   int64
	PitchCountBrooks  int64
	PitchCountAudited int64
	Dates             []DateSummary
}

// SeasonSummary rolls the per-game ledger rows up to per-date and
// season totals.
func (s Service) SeasonSummary(ctx context.Context, year int64) (SeasonSummary, error) {
	ctx, span := tracer.Start(ctx, "SeasonSummary")
	defer span.End()
	span.SetAttributes(attribute.Int64("year", year))

	games, err := s.status.Queries().ListGameStatusForSeason(ctx, year)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SeasonSummary{}, err
	}
	if len(games) == 0 {
		return SeasonSummary{}, fmt.Errorf("no games in the ledger for season %d", year)
	}

	summary := SeasonSummary{Year: year}
	byDate := map[string]*DateSummary{}
	for _, game := range games {
		date, ok := byDate[game.GameDate]
		if !ok {
			date = &DateSummary{GameDate: game.GameDate}
			byDate[game.GameDate] = date
		}
		date.TotalGames++
		summary.TotalGames++
		tally := func(flag bool, dateCount, seasonCount *int) {
			if flag {
				*dateCount++
				*seasonCount++
			}
		}
		tally(game.ScrapedBoxscore, &date.ScrapedBoxscores, &summary.ScrapedBoxscores)
		tally(game.ScrapedPitchLogs, &date.ScrapedPitchLogs, &summary.ScrapedPitchLogs)
		tally(game.AllPitchfxScraped, &date.AllPitchFxScraped, &summary.AllPitchFxScraped)
		tally(game.CombineSuccess, &date.CombineSuccess, &summary.CombineSuccess)
		tally(game.CombineFail, &date.CombineFail, &summary.CombineFail)
		tally(game.AllPitchfxValid, &date.AllPitchFxValid, &summary.AllPitchFxValid)
		summary.PitchCountBBRef += game.PitchCountBbref
		summary.PitchCountBrooks += game.PitchCountBrooks
		summary.PitchCountAudited += game.PitchCountAudited
	}

	summary.Dates = make([]DateSummary, 0, len(byDate))
	for _, date := range byDate {
		summary.Dates = append(summary.Dates, *date)
	}
	sort.Slice(summary.Dates, func(i, j int) bool {
		return summary.Dates[i].GameDate < summary.Dates[j].GameDate
	})
	return summary, nil
}

// loadCombined fetches and decodes one combined game document.
func (s Service) loadCombined(ctx context.Context, gameID mlbid.BBRefGameID) (combine.CombinedGame, error) {
	key := blobstore.JSONKey(gameID.Year, blobstore.CombinedData, gameID.String()+"_COMBINED_DATA")
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return combine.CombinedGame{}, err
	}
	return combine.DecodeCombinedGame(data)
}

// eachCombinedGame walks every combined document of a season. Games
// without a document (not yet combined, or combine failed) are
// skipped.
func (s Service) eachCombinedGame(
	ctx context.Context,
	year int64,
	visit func(game db.GameStatus, doc combine.CombinedGame) error,
) error {
	games, err := s.status.Queries().ListGameStatusForSeason(ctx, year)
	if err != nil {
		return err
	}
	visited := 0
	for _, game := range games {
		gameID, err := mlbid.ParseBBRefGameID(game.BbrefGameID)
		if err != nil {
			return err
		}
		doc, err := s.loadCombined(ctx, gameID)
		if errors.Is(err, blobstore.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("combined data for %s: %w", game.BbrefGameID, err)
		}
		if err := visit(game, doc); err != nil {
			return err
		}
		visited++
	}
	if visited == 0 {
		return fmt.Errorf("no combined games for season %d", year)
	}
	return nil
}
