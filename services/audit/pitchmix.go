package audit

import (
	"context"
	"sort"
	"strings"

	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/combine"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PitchTypeStats summarizes one pitch type in a pitcher's arsenal.
// CSW is called strikes plus whiffs over total pitches of the type.
type PitchTypeStats struct {
	PitchType       string  `json:"pitch_type"`
	Count           int     `json:"count"`
	Percent         float64 `json:"percent"`
	AvgSpeed        float64 `json:"avg_speed"`
	CalledStrikes   int     `json:"called_strikes"`
	SwingingStrikes int     `json:"swinging_strikes"`
	CSW             float64 `json:"csw"`
}

func isCalledStrike(row brooks.PitchFxRow) bool {
	return strings.EqualFold(row.PitchDescription, "Called Strike")
}

func isSwingingStrike(row brooks.PitchFxRow) bool {
	return strings.Contains(strings.ToLower(row.PitchDescription), "swinging strike")
}

// pitchMix aggregates rows by pitch type, most thrown first.
func pitchMix(rows []brooks.PitchFxRow) []PitchTypeStats {
	byType := map[string]*PitchTypeStats{}
	speedTotals := map[string]float64{}
	total := 0
	for _, row := range rows {
		pitchType := row.PitchTypeCode
		if pitchType == "" {
			continue
		}
		total++
		stats, ok := byType[pitchType]
		if !ok {
			stats = &PitchTypeStats{PitchType: pitchType}
			byType[pitchType] = stats
		}
		stats.Count++
		speedTotals[pitchType] += row.StartSpeed
		if isCalledStrike(row) {
			stats.CalledStrikes++
		}
		if isSwingingStrike(row) {
			stats.SwingingStrikes++
		}
	}
	if total == 0 {
		return nil
	}

	mix := make([]PitchTypeStats, 0, len(byType))
	for pitchType, stats := range byType {
		stats.Percent = float64(stats.Count) / float64(total) * 100
		stats.AvgSpeed = speedTotals[pitchType] / float64(stats.Count)
		stats.CSW = float64(stats.CalledStrikes+stats.SwingingStrikes) / float64(stats.Count) * 100
		mix = append(mix, *stats)
	}
	sort.Slice(mix, func(i, j int) bool {
		if mix[i].Count != mix[j].Count {
			return mix[i].Count > mix[j].Count
		}
		return mix[i].PitchType < mix[j].PitchType
	})
	return mix
}

// PitcherPitchMix aggregates every pitch a pitcher threw across the
// combined games of a season.
func (s Service) PitcherPitchMix(
	ctx context.Context,
	year int64,
	pitcherID int64,
) ([]PitchTypeStats, error) {
	ctx, span := tracer.Start(ctx, "PitcherPitchMix")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("year", year),
		attribute.Int64("pitcher_id", pitcherID),
	)

	var rows []brooks.PitchFxRow
	err := s.eachCombinedGame(ctx, year, func(_ db.GameStatus, doc combine.CombinedGame) error {
		for _, atBat := range doc.AtBats {
			if atBat.PitcherIDMlb != pitcherID {
				continue
			}
			rows = append(rows, atBat.PitchFxRows...)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return pitchMix(rows), nil
}
