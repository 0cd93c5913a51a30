package bbref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dugout-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("dugout.lib.scrapers.bbref")

// ParseGamesForDate extracts every boxscore url from the bbref daily
// dashboard. All-star exhibition games are not part of a season and
// are skipped.
func ParseGamesForDate(ctx context.Context, html string, date time.Time, dashboardURL string) (GamesForDate, error) {
	ctx, span := tracer.Start(ctx, "ParseGamesForDate")
	defer span.End()
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return GamesForDate{}, fmt.Errorf("parse daily index %s: %w", dashboardURL, err)
	}

	var urls []string
	seen := map[string]bool{}
	doc.Find("td.gamelink a, td.right.gamelink a").Each(func(_ int, sel *goquery.Selection) {
		for _, anchor := range htmlutil.GetAnchors(ctx, sel) {
			href := anchor.Href
			if href == "" || !strings.Contains(href, "/boxes/") {
				continue
			}
			if strings.Contains(strings.ToLower(href), "allstar") {
				continue
			}
			if strings.HasPrefix(href, "/") {
				href = baseURL + href
			}
			if seen[href] {
				continue
			}
			seen[href] = true
			urls = append(urls, href)
		}
	})

	span.SetAttributes(attribute.Int("game_count", len(urls)))
	return GamesForDate{
		DashboardURL: dashboardURL,
		GameDateStr:  date.Format("2006-01-02"),
		GameCount:    len(urls),
		BoxscoreURLs: urls,
	}, nil
}
