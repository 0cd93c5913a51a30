package scrape

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/patch"
	"dugout-backend/lib/pitchseq"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/services/status"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel/attribute"
)

type bbrefBoxscoresTask struct {
	svc Service
}

func (t bbrefBoxscoresTask) DataSet() blobstore.DataSet {
	return blobstore.BBRefBoxscores
}

func (t bbrefBoxscoresTask) Run(ctx context.Context, date time.Time) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "scrape.bbrefBoxscores")
	defer span.End()
	dateStr := date.Format(dateLayout)
	span.SetAttributes(attribute.String("date", dateStr))

	data, err := t.svc.store.Get(ctx, bbrefGamesKey(date))
	if errors.Is(err, blobstore.ErrNotExist) {
		return fail(span, fmt.Errorf("%w: bbref daily index document for %s is missing",
			status.ErrPreconditionUnmet, dateStr))
	}
	if err != nil {
		return fail(span, err)
	}
	var index bbref.GamesForDate
	if err := json.Unmarshal(data, &index); err != nil {
		return fail(span, fmt.Errorf("decode bbref daily index: %w", err))
	}

	scraped := 0
	skipped := 0
	var errs []error
	for _, url := range index.BoxscoreURLs {
		gameID, err := bbref.GameIDFromURL(url)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed boxscore url", "url", url, "error", err)
			continue
		}
		outcome, err := t.scrapeBoxscore(ctx, date, gameID, url)
		if err != nil {
			slog.ErrorContext(ctx, "boxscore scrape failed",
				"bbref_game_id", gameID, "error", err)
			errs = append(errs, fmt.Errorf("boxscore %s: %w", gameID, err))
			continue
		}
		switch outcome {
		case OutcomeOk:
			scraped++
		case OutcomeSkipped:
			skipped++
		}
	}
	if len(errs) > 0 {
		return fail(span, errors.Join(errs...))
	}
	if scraped == 0 && skipped > 0 {
		return OutcomeSkipped, nil
	}
	slog.InfoContext(ctx, "scraped bbref boxscores",
		"date", dateStr, "scraped", scraped, "skipped", skipped)
	return OutcomeOk, nil
}

func (t bbrefBoxscoresTask) scrapeBoxscore(
	ctx context.Context,
	date time.Time,
	gameID string,
	url string,
) (Outcome, error) {
	qry := t.svc.status.Queries()
	gameStatus, err := qry.GetGameStatus(ctx, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		// The brooks index never listed this game. Register it so the
		// ledger still rolls it up; the brooks id stays empty.
		err = t.registerGame(ctx, date, gameID)
		if err != nil {
			return OutcomeFailed, err
		}
	} else if err != nil {
		return OutcomeFailed, err
	}

	key := blobstore.JSONKey(date.Year(), blobstore.BBRefBoxscores, gameID)
	if gameStatus.ScrapedBoxscore {
		exists, err := t.svc.store.Exists(ctx, key)
		if err != nil {
			return OutcomeFailed, err
		}
		if exists {
			return OutcomeSkipped, nil
		}
	}

	html, err := t.svc.fetcher.Render(ctx, url)
	if err != nil {
		return OutcomeFailed, err
	}
	box, err := bbref.ParseBoxscore(ctx, html, url)
	if err != nil {
		return OutcomeFailed, err
	}
	if _, err := patch.ApplyFromStore(ctx, t.svc.store, key, &box); err != nil {
		return OutcomeFailed, err
	}

	pitchAppCount, pitchCount := countBoxscorePitches(ctx, box)
	htmlKey := blobstore.HTMLKey(date.Year(), blobstore.BBRefBoxscores, gameID)
	if err := t.svc.putHTML(ctx, htmlKey, html); err != nil {
		return OutcomeFailed, err
	}
	if err := t.svc.putJSON(ctx, key, box); err != nil {
		return OutcomeFailed, err
	}
	err = t.svc.status.RecordBoxscore(ctx, gameID, pitchAppCount, pitchCount)
	if err != nil {
		return OutcomeFailed, err
	}
	return OutcomeOk, nil
}

func (t bbrefBoxscoresTask) registerGame(ctx context.Context, date time.Time, gameID string) error {
	dateStr := date.Format(dateLayout)
	dateStatus, err := t.svc.status.Queries().GetGameDateStatus(ctx, dateStr)
	if err != nil {
		return fmt.Errorf("register game %s: %w", gameID, err)
	}
	return t.svc.status.Queries().UpsertGameStatus(ctx, db.UpsertGameStatusParams{
		BbrefGameID: gameID,
		GameDate:    dateStr,
		SeasonYear:  dateStatus.SeasonYear,
	})
}

// countBoxscorePitches tallies the distinct pitchers and the total
// pitch count implied by the play by play sequences.
func countBoxscorePitches(ctx context.Context, box bbref.Boxscore) (pitchApps, pitches int) {
	pitcherSeen := make(map[string]bool)
	for _, halfInning := range box.InningsList {
		for _, event := range halfInning.GameEvents {
			if event.PitcherID != "" && !pitcherSeen[event.PitcherID] {
				pitcherSeen[event.PitcherID] = true
				pitchApps++
			}
			count, err := pitchseq.Count(event.PitchSequence)
			if err != nil {
				slog.WarnContext(ctx, "unparseable pitch sequence",
					"bbref_game_id", box.GameID, "event_id", event.EventID, "error", err)
				continue
			}
			pitches += count
		}
	}
	return pitchApps, pitches
}
