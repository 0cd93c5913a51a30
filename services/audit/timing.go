package audit

import (
	"context"
	"math"
	"time"

	"dugout-backend/lib/mlbid"
	"dugout-backend/services/combine"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// The pitchfx timestamps are park clocks, not stopwatches, so the
// raw deltas carry garbage: rain delays, clock resets, rows whose
// timestamp never parsed. Deltas outside this window are discarded
// before anything is computed.
const (
	minPitchDeltaSeconds = 3
	maxPitchDeltaSeconds = 3600
)

type TimingStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// TimingReport holds seconds-between-pitches statistics split by
// where the gap falls.
type TimingReport struct {
	WithinAtBat    TimingStats `json:"time_between_pitches"`
	BetweenAtBats  TimingStats `json:"time_between_at_bats"`
	BetweenInnings TimingStats `json:"time_between_innings"`
}

// timingSamples accumulates raw deltas before filtering.
type timingSamples struct {
	withinAtBat    []float64
	betweenAtBats  []float64
	betweenInnings []float64
}

func (acc *timingSamples) report() TimingReport {
	return TimingReport{
		WithinAtBat:    computeTimingStats(acc.withinAtBat),
		BetweenAtBats:  computeTimingStats(acc.betweenAtBats),
		BetweenInnings: computeTimingStats(acc.betweenInnings),
	}
}

// collect pulls every usable pitch-to-pitch delta out of one combined
// game. At-bats arrive in play-by-play order, so consecutive at-bats
// in the same inning yield a between-at-bats gap and an inning change
// yields a between-innings gap.
func (acc *timingSamples) collect(doc combine.CombinedGame) {
	var prevLast time.Time
	var prevInning string
	for _, atBat := range doc.AtBats {
		var prev time.Time
		var first, last time.Time
		for _, row := range atBat.PitchFxRows {
			thrown := row.ThrownAt()
			if thrown.IsZero() {
				continue
			}
			if first.IsZero() {
				first = thrown
			}
			last = thrown
			if !prev.IsZero() {
				acc.withinAtBat = append(acc.withinAtBat, thrown.Sub(prev).Seconds())
			}
			prev = thrown
		}
		if first.IsZero() {
			continue
		}
		if !prevLast.IsZero() {
			delta := first.Sub(prevLast).Seconds()
			if atBat.InningID == prevInning {
				acc.betweenAtBats = append(acc.betweenAtBats, delta)
			} else {
				acc.betweenInnings = append(acc.betweenInnings, delta)
			}
		}
		prevLast = last
		prevInning = atBat.InningID
	}
}

// computeTimingStats windows the samples to plausible values, strips
// anything beyond three standard deviations of the windowed mean,
// and summarizes the rest.
func computeTimingStats(samples []float64) TimingStats {
	var windowed []float64
	for _, v := range samples {
		if v >= minPitchDeltaSeconds && v <= maxPitchDeltaSeconds {
			windowed = append(windowed, v)
		}
	}
	if len(windowed) == 0 {
		return TimingStats{}
	}

	mean := 0.0
	for _, v := range windowed {
		mean += v
	}
	mean /= float64(len(windowed))
	variance := 0.0
	for _, v := range windowed {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(windowed)))

	stats := TimingStats{Min: math.MaxFloat64}
	for _, v := range windowed {
		if math.Abs(v-mean) > 3*stddev {
			continue
		}
		stats.Count++
		stats.Total += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	if stats.Count == 0 {
		return TimingStats{}
	}
	stats.Avg = stats.Total / float64(stats.Count)
	return stats
}

// GameTiming computes the timing report for a single combined game.
func (s Service) GameTiming(ctx context.Context, gameIDStr string) (TimingReport, error) {
	ctx, span := tracer.Start(ctx, "GameTiming")
	defer span.End()
	span.SetAttributes(attribute.String("bbref_game_id", gameIDStr))

	gameID, err := mlbid.ParseBBRefGameID(gameIDStr)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TimingReport{}, err
	}
	doc, err := s.loadCombined(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TimingReport{}, err
	}

	var acc timingSamples
	acc.collect(doc)
	return acc.report(), nil
}

// SeasonTiming aggregates the timing report across every combined
// game of a season.
func (s Service) SeasonTiming(ctx context.Context, year int64) (TimingReport, error) {
	ctx, span := tracer.Start(ctx, "SeasonTiming")
	defer span.End()
	span.SetAttributes(attribute.Int64("year", year))

	var acc timingSamples
	err := s.eachCombinedGame(ctx, year, func(_ db.GameStatus, doc combine.CombinedGame) error {
		// only games that combined with zero pitchfx errors feed the
		// timing metrics
		if doc.Audit.PitchFxError {
			return nil
		}
		acc.collect(doc)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TimingReport{}, err
	}
	return acc.report(), nil
}
