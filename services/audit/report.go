package audit

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderSeasonSummary renders the season report as a terminal table.
func RenderSeasonSummary(summary SeasonSummary) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%d season — %d games", summary.Year, summary.TotalGames))
	t.AppendHeader(table.Row{
		"Date", "Games", "Boxscores", "Pitch Logs", "PitchFX", "Combined", "Failed", "Valid",
	})
	for _, date := range summary.Dates {
		t.AppendRow(table.Row{
			date.GameDate,
			date.TotalGames,
			date.ScrapedBoxscores,
			date.ScrapedPitchLogs,
			date.AllPitchFxScraped,
			date.CombineSuccess,
			date.CombineFail,
			date.AllPitchFxValid,
		})
	}
	t.AppendFooter(table.Row{
		"Total",
		summary.TotalGames,
		summary.ScrapedBoxscores,
		summary.ScrapedPitchLogs,
		summary.AllPitchFxScraped,
		summary.CombineSuccess,
		summary.CombineFail,
		summary.AllPitchFxValid,
	})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "pitch counts: bbref=%d brooks=%d audited=%d\n",
		summary.PitchCountBBRef, summary.PitchCountBrooks, summary.PitchCountAudited)
	return b.String()
}

// RenderTimingReport renders the time-between-pitches table.
func RenderTimingReport(report TimingReport) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Gap", "Count", "Avg (s)", "Min (s)", "Max (s)"})
	rows := []struct {
		label string
		stats TimingStats
	}{
		{"between pitches", report.WithinAtBat},
		{"between at-bats", report.BetweenAtBats},
		{"between innings", report.BetweenInnings},
	}
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.label,
			row.stats.Count,
			fmt.Sprintf("%.1f", row.stats.Avg),
			fmt.Sprintf("%.1f", row.stats.Min),
			fmt.Sprintf("%.1f", row.stats.Max),
		})
	}
	return t.Render()
}

// RenderPitchMix renders a pitcher's arsenal table.
func RenderPitchMix(mix []PitchTypeStats) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Pitch", "Count", "Usage %", "Avg MPH", "CSW %"})
	for _, stats := range mix {
		t.AppendRow(table.Row{
			stats.PitchType,
			stats.Count,
			fmt.Sprintf("%.1f", stats.Percent),
			fmt.Sprintf("%.1f", stats.AvgSpeed),
			fmt.Sprintf("%.1f", stats.CSW),
		})
	}
	return t.Render()
}
