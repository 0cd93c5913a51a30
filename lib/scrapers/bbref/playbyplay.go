package bbref

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"dugout-backend/lib/htmlutil"
	"dugout-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var inningLabelRegex = regexp.MustCompile(`^([tb])(\d+)$`)
var pitchSequenceCellRegex = regexp.MustCompile(`([A-Z*.]+)\s*$`)

func (p *boxscoreParser) parsePlayByPlay(ctx context.Context) error {
	table := p.doc.Find("table#play_by_play")
	if table.Length() == 0 {
		return fmt.Errorf("play_by_play table not found")
	}

	var innings []HalfInning
	current := func() *HalfInning {
		if len(innings) == 0 {
			return nil
		}
		return &innings[len(innings)-1]
	}

	rowNumber := 0
	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := htmlutil.CleanText(row.Find("th[data-stat=inning]").Text())
		m := inningLabelRegex.FindStringSubmatch(strings.ToLower(label))
		if m == nil {
			return true
		}
		inningNum := atoi(m[2])
		top := m[1] == "t"

		if cur := current(); cur == nil || cur.InningLabel != strings.ToLower(label) {
			innings = append(innings, HalfInning{
				InningID:    p.inningID(top, inningNum),
				InningLabel: strings.ToLower(label),
			})
		}
		cur := current()
		rowNumber++

		description := htmlutil.CleanText(row.Find("td[data-stat=play_desc]").Text())
		batterName := htmlutil.CleanText(row.Find("td[data-stat=batter]").Text())
		pitcherName := htmlutil.CleanText(row.Find("td[data-stat=pitcher]").Text())

		if batterName == "" || pitcherName == "" {
			// not a plate appearance row; substitutions are parsed
			// from their description, anything else is ignored
			if sub, err := ParseSubstitution(description); err == nil {
				sub.EventID = p.nextEventID()
				sub.Inning = inningNum
				sub.InningLabel = cur.InningLabel
				sub.RowNumber = rowNumber
				sub.IncomingPlayerID = p.resolvePlayerID(ctx, sub.IncomingPlayerID)
				if sub.OutgoingPlayerID != "" {
					sub.OutgoingPlayerID = p.resolvePlayerID(ctx, sub.OutgoingPlayerID)
				}
				cur.Substitutions = append(cur.Substitutions, sub)
			} else if looksLikeSubstitution(description) {
				rowErr = fmt.Errorf("unrecognized substitution phrasing in row %d: '%s'", rowNumber, description)
				return false
			} else {
				slog.DebugContext(ctx, "skipping non-event pbp row", "row", rowNumber, "description", description)
			}
			return true
		}

		battingTeam := p.box.HomeTeamData.TeamID
		pitchingTeam := p.box.AwayTeamData.TeamID
		if top {
			battingTeam, pitchingTeam = pitchingTeam, battingTeam
		}

		event := PlayByPlayEvent{
			EventID:         p.nextEventID(),
			Inning:          inningNum,
			InningLabel:     cur.InningLabel,
			Score:           htmlutil.CleanText(row.Find("td[data-stat=score_batting_team]").Text()),
			OutsBeforePlay:  intStat(row, "outs"),
			RunnersOnBase:   htmlutil.CleanText(row.Find("td[data-stat=runners_on_bases_pbp]").Text()),
			PitchSequence:   extractPitchSequence(htmlutil.CleanText(row.Find("td[data-stat=pitches_pbp]").Text())),
			RunsOutsResult:  htmlutil.CleanText(row.Find("td[data-stat=runs_outs_result]").Text()),
			TeamBattingID:   battingTeam,
			TeamPitchingID:  pitchingTeam,
			PitcherID:       p.resolvePlayerID(ctx, pitcherName),
			BatterID:        p.resolvePlayerID(ctx, batterName),
			PlayDescription: description,
			RowNumber:       rowNumber,
		}
		cur.GameEvents = append(cur.GameEvents, event)
		return true
	})
	if rowErr != nil {
		return rowErr
	}
	if len(innings) == 0 {
		return fmt.Errorf("play_by_play table had no innings")
	}

	p.box.InningsList = innings
	return nil
}

func (p *boxscoreParser) inningID(top bool, inning int) string {
	half := "BOT"
	if top {
		half = "TOP"
	}
	return fmt.Sprintf("%s_INN_%s%02d", p.gameID, half, inning)
}

func (p *boxscoreParser) nextEventID() string {
	p.eventNum++
	return fmt.Sprintf("%s_EVENT_%03d", p.gameID, p.eventNum)
}

// the pitch cell reads like "6,(3-2) CBBBCX"; the sequence is the
// trailing run of tokens
func extractPitchSequence(cell string) string {
	m := pitchSequenceCellRegex.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	return m[1]
}

// resolvePlayerID maps a play-by-play display name (possibly
// abbreviated) to a bbref player id using the dictionary built from
// the four stat tables. Exact match first, fuzzy second; every fuzzy
// match is recorded.
func (p *boxscoreParser) resolvePlayerID(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}
	if id, ok := p.nameDict[name]; ok {
		return id
	}

	names := make([]string, 0, len(p.nameDict))
	for n := range p.nameDict {
		names = append(names, n)
	}
	match := textutil.BestMatch(name, names)
	if match.Best == "" {
		slog.WarnContext(ctx, "could not resolve player name", "name", name, "game_id", p.gameID)
		return ""
	}

	id := p.nameDict[match.Best]
	if match.Correlation < 1 {
		p.box.FuzzyNameMatches = append(p.box.FuzzyNameMatches, FuzzyNameMatch{
			Query:       name,
			Matched:     match.Best,
			PlayerID:    id,
			Correlation: match.Correlation,
		})
		slog.DebugContext(
			ctx, "fuzzy matched player name",
			"query", name,
			"matched", match.Best,
			"correlation", match.Correlation,
		)
	}
	// cache so repeated rows resolve the same way
	p.nameDict[name] = id
	return id
}
