package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/fetch"
	"dugout-backend/services/status"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RunParams struct {
	DataSets []blobstore.DataSet
	Start    time.Time
	End      time.Time
}

// Run walks every date in the range and runs the requested tasks in
// pipeline order. A task failure is logged and the run moves on; a
// burned out fetch retry budget aborts the whole run since every
// later request would hit the same wall. After the pitchfx task the
// scheduler combines any game whose prerequisites just completed.
func (s Service) Run(ctx context.Context, params RunParams) error {
	ctx, span := tracer.Start(ctx, "scrape.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("start", params.Start.Format(dateLayout)),
		attribute.String("end", params.End.Format(dateLayout)),
	)

	if params.End.Before(params.Start) {
		err := fmt.Errorf("end date %s is before start date %s",
			params.End.Format(dateLayout), params.Start.Format(dateLayout))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	tasks, err := s.tasks(params.DataSets)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	combineAfterPitchFx := false
	for _, task := range tasks {
		if task.DataSet() == blobstore.BrooksPitchFx {
			combineAfterPitchFx = true
		}
	}

	for date := params.Start; !date.After(params.End); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		dateStr := date.Format(dateLayout)
		for _, task := range tasks {
			outcome, err := task.Run(ctx, date)
			if err != nil {
				if errors.Is(err, fetch.ErrRetryLimitExceeded) {
					span.RecordError(err)
					span.SetStatus(codes.Error, "retry limit exceeded")
					return fmt.Errorf("scrape run aborted on %s: %w", dateStr, err)
				}
				if errors.Is(err, status.ErrPreconditionUnmet) {
					slog.WarnContext(ctx, "skipping task, prerequisites unmet",
						"data_set", task.DataSet(), "date", dateStr, "error", err)
					continue
				}
				slog.ErrorContext(ctx, "scrape task failed",
					"data_set", task.DataSet(), "date", dateStr, "error", err)
				continue
			}
			slog.DebugContext(ctx, "scrape task finished",
				"data_set", task.DataSet(), "date", dateStr, "outcome", outcome)
		}
		if combineAfterPitchFx {
			s.combineReadyGames(ctx, dateStr)
		}
	}
	return nil
}

// combineReadyGames combines every game on the date whose scrape
// prerequisites are settled and that has no combine verdict yet.
// Combine failures never stop the scrape run.
func (s Service) combineReadyGames(ctx context.Context, dateStr string) {
	games, err := s.status.Queries().ListGameStatusForDate(ctx, dateStr)
	if err != nil {
		slog.ErrorContext(ctx, "listing games for combine", "date", dateStr, "error", err)
		return
	}
	for _, game := range games {
		ready := game.ScrapedBoxscore && game.ScrapedPitchLogs && game.AllPitchfxScraped
		if !ready || game.CombineSuccess || game.CombineFail {
			continue
		}
		_, err := s.combine.CombineGame(ctx, game.BbrefGameID)
		if err != nil {
			slog.ErrorContext(ctx, "combine failed",
				"bbref_game_id", game.BbrefGameID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "combined game", "bbref_game_id", game.BbrefGameID)
	}
}
