package scrape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/patch"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/status"

	"go.opentelemetry.io/otel/attribute"
)

type pitchLogsTask struct {
	svc Service
}

func (t pitchLogsTask) DataSet() blobstore.DataSet {
	return blobstore.BrooksPitchLogs
}

func (t pitchLogsTask) Run(ctx context.Context, date time.Time) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "scrape.brooksPitchLogs")
	defer span.End()
	dateStr := date.Format(dateLayout)
	span.SetAttributes(attribute.String("date", dateStr))

	data, err := t.svc.store.Get(ctx, brooksGamesKey(date))
	if errors.Is(err, blobstore.ErrNotExist) {
		return fail(span, fmt.Errorf("%w: brooks daily index document for %s is missing",
			status.ErrPreconditionUnmet, dateStr))
	}
	if err != nil {
		return fail(span, err)
	}
	index, err := brooks.DecodeGamesForDate(data)
	if err != nil {
		return fail(span, err)
	}
	// Patch lists can land after the index was persisted; reapplying
	// is a no-op when the stored document already carries the fix.
	if _, err := patch.ApplyFromStore(ctx, t.svc.store, brooksGamesKey(date), &index); err != nil {
		return fail(span, err)
	}

	scraped := 0
	skipped := 0
	var errs []error
	for _, game := range index.Games {
		outcome, err := t.scrapeGameLogs(ctx, date, game)
		if err != nil {
			slog.ErrorContext(ctx, "pitch log scrape failed",
				"bb_game_id", game.BrooksGameID, "error", err)
			errs = append(errs, fmt.Errorf("pitch logs %s: %w", game.BrooksGameID, err))
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
	slog.InfoContext(ctx, "scraped brooks pitch logs",
		"date", dateStr, "games", scraped, "skipped", skipped)
	return OutcomeOk, nil
}

func (t pitchLogsTask) scrapeGameLogs(
	ctx context.Context,
	date time.Time,
	game brooks.GameInfo,
) (Outcome, error) {
	gameStatus, err := t.svc.status.Queries().GetGameStatus(ctx, game.BBRefGameID)
	if errors.Is(err, sql.ErrNoRows) {
		return OutcomeFailed, fmt.Errorf("game %s is not in the ledger", game.BBRefGameID)
	}
	if err != nil {
		return OutcomeFailed, err
	}

	key := blobstore.JSONKey(date.Year(), blobstore.BrooksPitchLogs, game.BrooksGameID)
	if gameStatus.ScrapedPitchLogs {
		exists, err := t.svc.store.Exists(ctx, key)
		if err != nil {
			return OutcomeFailed, err
		}
		if exists {
			return OutcomeSkipped, nil
		}
	}

	doc := brooks.PitchLogsForGame{
		Tag:          true,
		BrooksGameID: game.BrooksGameID,
		BBRefGameID:  game.BBRefGameID,
	}
	for _, appearance := range sortedAppearances(game.PitcherAppearanceDict) {
		html, err := t.svc.fetcher.Render(ctx, appearance.url)
		if err != nil {
			return OutcomeFailed, err
		}
		log, err := brooks.ParsePitchLog(ctx, html, game, appearance.pitcherID, appearance.url)
		if err != nil {
			return OutcomeFailed, err
		}
		if !log.ParsedAllInfo {
			slog.WarnContext(ctx, "pitch log page missing information",
				"pitch_app_id", log.PitchAppID, "url", appearance.url)
		}
		doc.PitchLogs = append(doc.PitchLogs, log)
	}
	doc.PitchLogCount = len(doc.PitchLogs)

	if err := t.svc.putJSON(ctx, key, doc); err != nil {
		return OutcomeFailed, err
	}
	err = t.svc.status.RecordPitchLogs(ctx, game.BBRefGameID, doc.PitchLogs)
	if err != nil {
		return OutcomeFailed, err
	}
	return OutcomeOk, nil
}

type appearance struct {
	pitcherID int64
	url       string
}

// sortedAppearances flattens the pitcher appearance dict into a
// deterministic fetch order.
func sortedAppearances(dict map[string]string) []appearance {
	appearances := make([]appearance, 0, len(dict))
	for rawID, url := range dict {
		pitcherID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			slog.Warn("skipping malformed pitcher id", "pitcher_id", rawID)
			continue
		}
		appearances = append(appearances, appearance{pitcherID: pitcherID, url: url})
	}
	sort.Slice(appearances, func(i, j int) bool {
		return appearances[i].pitcherID < appearances[j].pitcherID
	})
	return appearances
}
