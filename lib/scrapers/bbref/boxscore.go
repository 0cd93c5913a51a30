package bbref

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dugout-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// bbref ships most stat tables inside html comments so they render
// lazily; strip the comment markers before handing the page to
// goquery.
func uncommentHTML(html string) string {
	html = strings.ReplaceAll(html, "<!--", "")
	return strings.ReplaceAll(html, "-->", "")
}

type boxscoreParser struct {
	gameID  string
	doc     *goquery.Document
	box     *Boxscore
	nameDict map[string]string
	eventNum int
}

// ParseBoxscore parses a full bbref boxscore page into a Boxscore
// document.
func ParseBoxscore(ctx context.Context, html string, boxscoreURL string) (Boxscore, error) {
	ctx, span := tracer.Start(ctx, "ParseBoxscore")
	defer span.End()
	span.SetAttributes(attribute.String("url", boxscoreURL))

	gameID, err := GameIDFromURL(boxscoreURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Boxscore{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(uncommentHTML(html)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return Boxscore{}, fmt.Errorf("parse boxscore %s: %w", boxscoreURL, err)
	}

	box := Boxscore{
		Tag:            true,
		GameID:         gameID,
		BoxscoreURL:    boxscoreURL,
		PlayerTeamDict: map[string]string{},
		PlayerNameDict: map[string]string{},
	}
	p := &boxscoreParser{
		gameID:   gameID,
		doc:      doc,
		box:      &box,
		nameDict: map[string]string{},
	}

	if err := p.parseLinescore(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Boxscore{}, fmt.Errorf("boxscore %s: %w", boxscoreURL, err)
	}
	if err := p.parseStatTables(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Boxscore{}, fmt.Errorf("boxscore %s: %w", boxscoreURL, err)
	}
	p.parseGameMeta()
	if err := p.parsePlayByPlay(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Boxscore{}, fmt.Errorf("boxscore %s: %w", boxscoreURL, err)
	}

	span.SetAttributes(
		attribute.Int("innings", len(box.InningsList)),
		attribute.Int("fuzzy_name_matches", len(box.FuzzyNameMatches)),
	)
	return box, nil
}

var teamHrefRegex = regexp.MustCompile(`/teams/([A-Z]{3})/`)
var recordRegex = regexp.MustCompile(`(\d+)-(\d+)`)
var playerHrefRegex = regexp.MustCompile(`/players/./([a-z][a-z'.]+\d\d)\.shtml`)

func (p *boxscoreParser) parseLinescore() error {
	rows := p.doc.Find("table.linescore tbody tr")
	if rows.Length() < 2 {
		return fmt.Errorf("linescore table not found")
	}

	teams := make([]*TeamData, 0, 2)
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i > 1 {
			return false
		}
		team := &TeamData{}

		href := row.Find("a").AttrOr("href", "")
		m := teamHrefRegex.FindStringSubmatch(href)
		if m != nil {
			team.TeamID = m[1]
		}

		// the final three cells are the R/H/E totals
		var cells []string
		row.Find("td.center").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, htmlutil.CleanText(cell.Text()))
		})
		if len(cells) >= 3 {
			team.TotalRuns = atoi(cells[len(cells)-3])
			team.TotalHits = atoi(cells[len(cells)-2])
			team.TotalErrors = atoi(cells[len(cells)-1])
		}
		teams = append(teams, team)
		return true
	})
	if len(teams) != 2 || teams[0].TeamID == "" || teams[1].TeamID == "" {
		return fmt.Errorf("linescore team ids not found")
	}

	// records before the game live in the scorebox header, away first
	var records []string
	p.doc.Find("div.scorebox > div").Each(func(_ int, div *goquery.Selection) {
		div.Find("div").Each(func(_ int, inner *goquery.Selection) {
			text := htmlutil.CleanText(inner.Text())
			if recordRegex.MatchString(text) && len(text) < 10 && len(records) < 2 {
				records = append(records, text)
			}
		})
	})
	for i, record := range records {
		if i > 1 {
			break
		}
		m := recordRegex.FindStringSubmatch(record)
		teams[i].WinsBeforeGame = atoi(m[1])
		teams[i].LossesBeforeGame = atoi(m[2])
	}

	p.box.AwayTeamData = *teams[0]
	p.box.HomeTeamData = *teams[1]
	return nil
}

// intStat reads the first non-empty of several data-stat spellings,
// bbref has changed them over the years.
func intStat(row *goquery.Selection, names ...string) int {
	for _, name := range names {
		cell := row.Find(fmt.Sprintf("td[data-stat=%s]", name))
		if cell.Length() > 0 {
			return atoi(htmlutil.CleanText(cell.Text()))
		}
	}
	return 0
}

func floatStat(row *goquery.Selection, names ...string) float64 {
	for _, name := range names {
		cell := row.Find(fmt.Sprintf("td[data-stat=%s]", name))
		if cell.Length() > 0 {
			f, _ := strconv.ParseFloat(htmlutil.CleanText(cell.Text()), 64)
			return f
		}
	}
	return 0
}

func atoi(s string) int {
	s = strings.ReplaceAll(s, ",", "")
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

var trailingPositionRegex = regexp.MustCompile(`\s+((?:[A-Z0-9]{1,2})(?:-[A-Z0-9]{1,2})*)$`)

func (p *boxscoreParser) parseStatTables() error {
	battingTables := p.doc.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return strings.HasSuffix(t.AttrOr("id", ""), "batting")
	})
	pitchingTables := p.doc.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return strings.HasSuffix(t.AttrOr("id", ""), "pitching")
	})
	if battingTables.Length() < 2 || pitchingTables.Length() < 2 {
		return fmt.Errorf("expected 2 batting and 2 pitching tables, found %d and %d",
			battingTables.Length(), pitchingTables.Length())
	}

	teams := []*TeamData{&p.box.AwayTeamData, &p.box.HomeTeamData}
	for i, team := range teams {
		p.parseBattingTable(battingTables.Eq(i), team)
		p.parsePitchingTable(pitchingTables.Eq(i), team)
	}
	return nil
}

func (p *boxscoreParser) registerPlayer(name, playerID, teamID string) {
	if name == "" || playerID == "" {
		return
	}
	p.nameDict[name] = playerID
	p.box.PlayerNameDict[name] = playerID
	p.box.PlayerTeamDict[playerID] = teamID
}

func (p *boxscoreParser) parseBattingTable(table *goquery.Selection, team *TeamData) {
	order := 0
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		nameCell := row.Find("th[data-stat=player] a, td[data-stat=player] a")
		if nameCell.Length() == 0 {
			return
		}
		name := htmlutil.CleanText(nameCell.Text())
		playerID := playerIDFromHref(nameCell.AttrOr("href", ""))
		if playerID == "" {
			return
		}
		p.registerPlayer(name, playerID, team.TeamID)

		team.BattingStats = append(team.BattingStats, BattingStats{
			PlayerID:         playerID,
			AtBats:           intStat(row, "AB", "ab", "b_ab"),
			Runs:             intStat(row, "R", "r", "b_r"),
			Hits:             intStat(row, "H", "h", "b_h"),
			RBIs:             intStat(row, "RBI", "rbi", "b_rbi"),
			BasesOnBalls:     intStat(row, "BB", "bb", "b_bb"),
			Strikeouts:       intStat(row, "SO", "so", "b_so"),
			PlateAppearances: intStat(row, "PA", "pa", "b_pa"),
		})

		// starters are the first nine rows; the position suffix
		// follows the player link inside the name cell
		if order < 9 {
			order++
			fullCell := htmlutil.CleanText(row.Find("th[data-stat=player], td[data-stat=player]").First().Text())
			position := ""
			if m := trailingPositionRegex.FindStringSubmatch(fullCell); m != nil {
				position = strings.Split(m[1], "-")[0]
			}
			team.StartingLineup = append(team.StartingLineup, LineupSlot{
				BattingOrder: order,
				PlayerID:     playerID,
				DefPosition:  position,
			})
		}
	})
}

func (p *boxscoreParser) parsePitchingTable(table *goquery.Selection, team *TeamData) {
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		nameCell := row.Find("th[data-stat=player] a, td[data-stat=player] a")
		if nameCell.Length() == 0 {
			return
		}
		name := htmlutil.CleanText(nameCell.Text())
		playerID := playerIDFromHref(nameCell.AttrOr("href", ""))
		if playerID == "" {
			return
		}
		p.registerPlayer(name, playerID, team.TeamID)

		team.PitchingStats = append(team.PitchingStats, PitchingStats{
			PlayerID:       playerID,
			InningsPitched: floatStat(row, "IP", "ip", "p_ip"),
			Hits:           intStat(row, "H", "h", "p_h"),
			Runs:           intStat(row, "R", "r", "p_r"),
			EarnedRuns:     intStat(row, "ER", "er", "p_er"),
			BasesOnBalls:   intStat(row, "BB", "bb", "p_bb"),
			Strikeouts:     intStat(row, "SO", "so", "p_so"),
			BattersFaced:   intStat(row, "batters_faced", "BF", "p_bfp"),
			PitchCount:     intStat(row, "pitches", "PC", "p_pitches"),
		})
	})
}

func playerIDFromHref(href string) string {
	m := playerHrefRegex.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

var attendanceRegex = regexp.MustCompile(`Attendance:\s*([\d,]+)`)
var venueRegex = regexp.MustCompile(`Venue:\s*(.+)`)
var durationRegex = regexp.MustCompile(`Game Duration:\s*([\d:]+)`)
var startTimeRegex = regexp.MustCompile(`Start Time:\s*([\d: apm.]+)`)
var temperatureRegex = regexp.MustCompile(`(\d+)°`)
var windRegex = regexp.MustCompile(`Wind\s+([^,.]+)`)

func (p *boxscoreParser) parseGameMeta() {
	meta := &p.box.GameMeta

	p.doc.Find("div.scorebox_meta div").Each(func(_ int, div *goquery.Selection) {
		text := htmlutil.CleanText(div.Text())
		switch {
		case attendanceRegex.MatchString(text):
			meta.Attendance = atoi(attendanceRegex.FindStringSubmatch(text)[1])
		case venueRegex.MatchString(text):
			meta.ParkName = strings.TrimSpace(venueRegex.FindStringSubmatch(text)[1])
		case durationRegex.MatchString(text):
			meta.GameDuration = durationRegex.FindStringSubmatch(text)[1]
		case startTimeRegex.MatchString(text):
			meta.ScheduledStartHHMM = strings.TrimSpace(startTimeRegex.FindStringSubmatch(text)[1])
		case strings.Contains(text, "Night Game"):
			meta.DayNight = "Night"
			p.parseFieldType(text, meta)
		case strings.Contains(text, "Day Game"):
			meta.DayNight = "Day"
			p.parseFieldType(text, meta)
		}
	})

	// the weather blurb lives in a lazily rendered section keyed by
	// the phrase "Start Time Weather"
	p.doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		text := htmlutil.CleanText(div.Text())
		idx := strings.Index(text, "Start Time Weather:")
		if idx < 0 || len(text) > 400 {
			return
		}
		p.parseWeather(text[idx+len("Start Time Weather:"):], meta)
	})

	p.parseUmpires()
}

func (p *boxscoreParser) parseFieldType(text string, meta *GameMeta) {
	if idx := strings.Index(text, "on "); idx >= 0 {
		meta.FieldType = strings.Trim(text[idx+3:], " .")
	}
}

func (p *boxscoreParser) parseWeather(blurb string, meta *GameMeta) {
	parts := strings.Split(blurb, ",")
	for _, part := range parts {
		part = strings.Trim(part, " .")
		switch {
		case temperatureRegex.MatchString(part):
			meta.Temperature = atoi(temperatureRegex.FindStringSubmatch(part)[1])
		case windRegex.MatchString(part):
			meta.Wind = strings.TrimSpace(windRegex.FindStringSubmatch(part)[1])
		case strings.Contains(part, "Precipitation") || strings.Contains(part, "Rain") || strings.Contains(part, "Drizzle"):
			meta.Precipitation = part
		case part != "":
			meta.Clouds = part
		}
	}
}

func (p *boxscoreParser) parseUmpires() {
	p.doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		text := htmlutil.CleanText(div.Text())
		if !strings.HasPrefix(text, "Umpires:") || len(text) > 300 {
			return
		}
		if len(p.box.Umpires) > 0 {
			return
		}
		for _, entry := range strings.Split(strings.TrimPrefix(text, "Umpires:"), ",") {
			entry = strings.Trim(entry, " .")
			pieces := strings.SplitN(entry, " - ", 2)
			if len(pieces) != 2 {
				continue
			}
			p.box.Umpires = append(p.box.Umpires, Umpire{
				FieldLocation: strings.TrimSpace(pieces[0]),
				UmpName:       strings.TrimSpace(pieces[1]),
			})
		}
	})
}
