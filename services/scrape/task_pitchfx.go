package scrape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/status"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type pitchFxTask struct {
	svc Service
}

func (t pitchFxTask) DataSet() blobstore.DataSet {
	return blobstore.BrooksPitchFx
}

func (t pitchFxTask) Run(ctx context.Context, date time.Time) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "scrape.brooksPitchFx")
	defer span.End()
	dateStr := date.Format(dateLayout)
	span.SetAttributes(attribute.String("date", dateStr))

	games, err := t.svc.status.Queries().ListGameStatusForDate(ctx, dateStr)
	if err != nil {
		return fail(span, err)
	}

	scraped := 0
	skipped := 0
	withLogs := 0
	var errs []error
	for _, game := range games {
		if !game.ScrapedPitchLogs || game.BrooksGameID == "" {
			continue
		}
		withLogs++
		if game.AllPitchfxScraped {
			skipped++
			continue
		}
		count, err := t.scrapeGamePitchFx(ctx, date, game)
		if err != nil {
			slog.ErrorContext(ctx, "pitchfx scrape failed",
				"bbref_game_id", game.BbrefGameID, "error", err)
			errs = append(errs, fmt.Errorf("pitchfx %s: %w", game.BbrefGameID, err))
			continue
		}
		scraped += count
	}
	if withLogs == 0 {
		return fail(span, fmt.Errorf("%w: no games with scraped pitch logs on %s",
			status.ErrPreconditionUnmet, dateStr))
	}
	if len(errs) > 0 {
		return fail(span, errors.Join(errs...))
	}
	if scraped == 0 && skipped > 0 {
		return OutcomeSkipped, nil
	}
	slog.InfoContext(ctx, "scraped brooks pitchfx",
		"date", dateStr, "pitch_apps", scraped, "games_skipped", skipped)
	return OutcomeOk, nil
}

// pitchFxResult carries one fetched appearance back to the recording
// loop; ledger writes stay on a single goroutine.
type pitchFxResult struct {
	pitchAppID string
	noData     bool
	pitchCount int
}

func (t pitchFxTask) scrapeGamePitchFx(
	ctx context.Context,
	date time.Time,
	game db.GameStatus,
) (int, error) {
	logsKey := blobstore.JSONKey(date.Year(), blobstore.BrooksPitchLogs, game.BrooksGameID)
	data, err := t.svc.store.Get(ctx, logsKey)
	if err != nil {
		return 0, fmt.Errorf("load pitch logs: %w", err)
	}
	logsDoc, err := brooks.DecodePitchLogsForGame(data)
	if err != nil {
		return 0, err
	}

	var results []pitchFxResult
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(t.svc.workers)
	for _, log := range logsDoc.PitchLogs {
		pending, err := t.appPending(ctx, log.PitchAppID)
		if err != nil {
			return 0, err
		}
		if !pending {
			continue
		}
		if !log.ParsedAllInfo || log.PitchFxURL == "" {
			results = append(results, pitchFxResult{pitchAppID: log.PitchAppID, noData: true})
			continue
		}
		log := log
		group.Go(func() error {
			result, err := t.scrapePitchApp(groupCtx, date, log)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	for _, result := range results {
		err := t.svc.status.RecordPitchFx(ctx, result.pitchAppID, result.noData, result.pitchCount)
		if err != nil {
			return 0, err
		}
	}
	return len(results), nil
}

func (t pitchFxTask) appPending(ctx context.Context, pitchAppID string) (bool, error) {
	appStatus, err := t.svc.status.Queries().GetPitchAppStatus(ctx, pitchAppID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("pitch appearance %s is not in the ledger", pitchAppID)
	}
	if err != nil {
		return false, err
	}
	return !appStatus.ScrapedPitchfx, nil
}

func (t pitchFxTask) scrapePitchApp(
	ctx context.Context,
	date time.Time,
	log brooks.PitchLog,
) (pitchFxResult, error) {
	html, err := t.svc.fetcher.Render(ctx, log.PitchFxURL)
	if err != nil {
		return pitchFxResult{}, err
	}
	fxLog, err := brooks.ParsePitchFx(ctx, html, log, log.PitchFxURL)
	if err != nil {
		return pitchFxResult{}, fmt.Errorf("pitch app %s: %w", log.PitchAppID, err)
	}
	key := blobstore.JSONKey(date.Year(), blobstore.BrooksPitchFx, log.PitchAppID)
	if err := t.svc.putJSON(ctx, key, fxLog); err != nil {
		return pitchFxResult{}, err
	}
	return pitchFxResult{
		pitchAppID: log.PitchAppID,
		noData:     len(fxLog.PitchFxRows) == 0,
		pitchCount: len(fxLog.PitchFxRows),
	}, nil
}
