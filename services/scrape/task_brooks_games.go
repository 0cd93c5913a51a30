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
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/status"

	"go.opentelemetry.io/otel/attribute"
)

type brooksGamesTask struct {
	svc Service
}

func (t brooksGamesTask) DataSet() blobstore.DataSet {
	return blobstore.BrooksGamesForDate
}

func brooksGamesKey(date time.Time) string {
	identifier := "brooks_games_for_date_" + date.Format(dateLayout)
	return blobstore.JSONKey(date.Year(), blobstore.BrooksGamesForDate, identifier)
}

func (t brooksGamesTask) Run(ctx context.Context, date time.Time) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "scrape.brooksGamesForDate")
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
	if !dateStatus.ScrapedDailyIndexBbref {
		return fail(span, fmt.Errorf("%w: bbref daily index for %s not scraped",
			status.ErrPreconditionUnmet, dateStr))
	}

	key := brooksGamesKey(date)
	if dateStatus.ScrapedDailyIndexBrooks {
		exists, err := t.svc.store.Exists(ctx, key)
		if err != nil {
			return fail(span, err)
		}
		if exists {
			slog.DebugContext(ctx, "brooks daily index already scraped", "date", dateStr)
			return OutcomeSkipped, nil
		}
	}

	bbrefGameIDs, err := t.loadBBRefGameIDs(ctx, date)
	if err != nil {
		return fail(span, err)
	}

	url := brooks.DashboardURL(date)
	html, err := t.svc.fetcher.Render(ctx, url)
	if err != nil {
		return fail(span, err)
	}
	games, err := brooks.ParseGamesForDate(ctx, html, date, url, bbrefGameIDs)
	if err != nil {
		return fail(span, err)
	}
	if _, err := patch.ApplyFromStore(ctx, t.svc.store, key, &games); err != nil {
		return fail(span, err)
	}

	htmlKey := blobstore.HTMLKey(date.Year(), blobstore.BrooksGamesForDate,
		"brooks_games_for_date_"+dateStr)
	if err := t.svc.putHTML(ctx, htmlKey, html); err != nil {
		return fail(span, err)
	}
	if err := t.svc.putJSON(ctx, key, games); err != nil {
		return fail(span, err)
	}
	if err := t.svc.status.RecordBrooksDailyIndex(ctx, date, games.Games); err != nil {
		return fail(span, err)
	}
	slog.InfoContext(ctx, "scraped brooks daily index",
		"date", dateStr, "game_count", games.GameCount)
	return OutcomeOk, nil
}

// loadBBRefGameIDs reads the bbref daily index for the same date so
// might-be-postponed brooks games can be corroborated.
func (t brooksGamesTask) loadBBRefGameIDs(ctx context.Context, date time.Time) ([]string, error) {
	data, err := t.svc.store.Get(ctx, bbrefGamesKey(date))
	if errors.Is(err, blobstore.ErrNotExist) {
		return nil, fmt.Errorf("%w: bbref daily index document for %s is missing",
			status.ErrPreconditionUnmet, date.Format(dateLayout))
	}
	if err != nil {
		return nil, err
	}
	var doc bbref.GamesForDate
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bbref daily index: %w", err)
	}
	var ids []string
	for _, url := range doc.BoxscoreURLs {
		id, err := bbref.GameIDFromURL(url)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed boxscore url", "url", url, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
