package scrape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/patch"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/services/status"

	"go.opentelemetry.io/otel/attribute"
)

type bbrefGamesTask struct {
	svc Service
}

func (t bbrefGamesTask) DataSet() blobstore.DataSet {
	return blobstore.BBRefGamesForDate
}

func bbrefGamesKey(date time.Time) string {
	identifier := "bbref_games_for_date_" + date.Format(dateLayout)
	return blobstore.JSONKey(date.Year(), blobstore.BBRefGamesForDate, identifier)
}

func (t bbrefGamesTask) Run(ctx context.Context, date time.Time) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "scrape.bbrefGamesForDate")
	defer span.End()
	dateStr := date.Format(dateLayout)
	span.SetAttributes(attribute.String("date", dateStr))

	dateStatus, err := t.svc.status.Queries().GetGameDateStatus(ctx, dateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(span, fmt.Errorf("%w: %s is not part of a seeded season",
			status.ErrPreconditionUnmet, dateStr))
	}
	if err != nil {
		return fail(span, err)
	}

	key := bbrefGamesKey(date)
	if dateStatus.ScrapedDailyIndexBbref {
		exists, err := t.svc.store.Exists(ctx, key)
		if err != nil {
			return fail(span, err)
		}
		if exists {
			slog.DebugContext(ctx, "bbref daily index already scraped", "date", dateStr)
			return OutcomeSkipped, nil
		}
	}

	url := bbref.DashboardURL(date)
	html, err := t.svc.fetcher.Render(ctx, url)
	if err != nil {
		return fail(span, err)
	}
	games, err := bbref.ParseGamesForDate(ctx, html, date, url)
	if err != nil {
		return fail(span, err)
	}
	if _, err := patch.ApplyFromStore(ctx, t.svc.store, key, &games); err != nil {
		return fail(span, err)
	}

	htmlKey := blobstore.HTMLKey(date.Year(), blobstore.BBRefGamesForDate,
		"bbref_games_for_date_"+dateStr)
	if err := t.svc.putHTML(ctx, htmlKey, html); err != nil {
		return fail(span, err)
	}
	if err := t.svc.putJSON(ctx, key, games); err != nil {
		return fail(span, err)
	}
	if err := t.svc.status.RecordBBRefDailyIndex(ctx, date, games.GameCount); err != nil {
		return fail(span, err)
	}
	slog.InfoContext(ctx, "scraped bbref daily index",
		"date", dateStr, "game_count", games.GameCount)
	return OutcomeOk, nil
}
