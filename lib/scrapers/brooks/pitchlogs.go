package brooks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dugout-backend/lib/htmlutil"
	"dugout-backend/lib/mlbid"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var inningHeaderRegex = regexp.MustCompile(`(?i)inning\s+(\d+)`)

// ParsePitchLog reads one pitcher-appearance page. A log parses "all
// info" only when the pitcher name, at least one inning pitch count,
// and the expanded-data (pitchfx) link were all located; anything
// less is kept but flagged so the pipeline can decide what to fetch.
func ParsePitchLog(
	ctx context.Context,
	html string,
	game GameInfo,
	pitcherID int64,
	pitchLogURL string,
) (PitchLog, error) {
	_, span := tracer.Start(ctx, "ParsePitchLog")
	defer span.End()
	span.SetAttributes(
		attribute.String("bb_game_id", game.BrooksGameID),
		attribute.Int64("pitcher_id", pitcherID),
	)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return PitchLog{}, fmt.Errorf("parse pitch log %s: %w", pitchLogURL, err)
	}

	// pitcher team is not stated anywhere reliable on this page; it
	// is backfilled from the pitchfx rows once those are scraped
	log := PitchLog{
		Tag:                true,
		BrooksGameID:       game.BrooksGameID,
		BBRefGameID:        game.BBRefGameID,
		PitcherID:          pitcherID,
		PitchAppID:         mlbid.PitchAppID(game.BBRefGameID, pitcherID),
		PitchCountByInning: map[string]int{},
		PitchLogURL:        pitchLogURL,
	}

	log.PitcherName = parsePitcherName(doc)

	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		if !strings.Contains(a.Href, "tabdel") {
			continue
		}
		href := a.Href
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		log.PitchFxURL = href
		break
	}

	parseInningCounts(doc, &log)

	log.ParsedAllInfo = log.PitcherName != "" &&
		log.PitchFxURL != "" &&
		len(log.PitchCountByInning) > 0

	span.SetAttributes(
		attribute.Bool("parsed_all_info", log.ParsedAllInfo),
		attribute.Int("total_pitch_count", log.TotalPitchCount),
	)
	return log, nil
}

func parsePitcherName(doc *goquery.Document) string {
	// the selected pitcher is the selected option of the pitchSel
	// dropdown; fall back to the page heading
	name := htmlutil.CleanText(doc.Find(`select[name="pitchSel"] option[selected]`).First().Text())
	if name == "" {
		name = htmlutil.CleanText(doc.Find("h1, h2").First().Text())
	}
	return name
}

func parseInningCounts(doc *goquery.Document, log *PitchLog) {
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := htmlutil.CleanText(cells.First().Text())
		m := inningHeaderRegex.FindStringSubmatch(label)
		if m == nil {
			return
		}
		count, err := strconv.Atoi(htmlutil.CleanText(cells.Eq(1).Text()))
		if err != nil {
			return
		}
		log.PitchCountByInning[m[1]] = count
		log.TotalPitchCount += count
	})
}
