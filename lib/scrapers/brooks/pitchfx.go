package brooks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dugout-backend/lib/htmlutil"
	"dugout-backend/lib/mlbid"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// every column the row decoder reads; the table layout drifts over
// seasons so positions are resolved from the header row, never assumed
var requiredPitchFxColumns = []string{
	"play_guid", "ab_id", "ab_count", "ab_total", "inning",
	"pitcher_team", "pitcher_id", "batter_id",
	"pdes", "des", "mlbam_pitch_name", "start_speed",
	"px", "pz", "x0", "y0", "z0", "vx0", "vy0", "vz0",
	"ax", "ay", "az", "pfx_x", "pfx_z",
	"zone_location", "park_sv_id",
}

// ParsePitchFx reads the expanded-table page for one pitcher
// appearance into typed rows. Rows missing a play guid are assigned a
// fresh one; rows missing a zone location keep the sentinel value and
// are flagged; any other missing value fails the whole parse.
func ParsePitchFx(
	ctx context.Context,
	html string,
	log PitchLog,
	pitchFxURL string,
) (PitchFxLog, error) {
	_, span := tracer.Start(ctx, "ParsePitchFx")
	defer span.End()
	span.SetAttributes(attribute.String("pitch_app_id", log.PitchAppID))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return PitchFxLog{}, fmt.Errorf("parse pitchfx table %s: %w", pitchFxURL, err)
	}

	rows := doc.Find("table tr")
	if rows.Length() < 1 {
		err := fmt.Errorf("pitchfx table %s: no table rows", pitchFxURL)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PitchFxLog{}, err
	}

	columns, err := parsePitchFxHeader(rows.First())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PitchFxLog{}, fmt.Errorf("pitchfx table %s: %w", pitchFxURL, err)
	}

	gameID, err := mlbid.ParseBrooksGameID(log.BrooksGameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return PitchFxLog{}, err
	}

	fxLog := PitchFxLog{
		Tag:          true,
		PitchAppID:   log.PitchAppID,
		PitcherID:    log.PitcherID,
		PitcherName:  log.PitcherName,
		BrooksGameID: log.BrooksGameID,
		BBRefGameID:  log.BBRefGameID,
		PitchFxURL:   pitchFxURL,
	}

	var rowErr error
	rows.Slice(1, rows.Length()).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		cells := sel.Find("td")
		if cells.Length() == 0 {
			return true
		}
		row, err := parsePitchFxRow(columns, cells, gameID)
		if err != nil {
			rowErr = fmt.Errorf("pitchfx table %s row %d: %w", pitchFxURL, i+1, err)
			return false
		}
		fxLog.PitchFxRows = append(fxLog.PitchFxRows, row)
		return true
	})
	if rowErr != nil {
		span.RecordError(rowErr)
		span.SetStatus(codes.Error, rowErr.Error())
		return PitchFxLog{}, rowErr
	}

	fxLog.TotalPitchCount = len(fxLog.PitchFxRows)
	if len(fxLog.PitchFxRows) > 0 {
		fxLog.PitcherTeam = fxLog.PitchFxRows[0].PitcherTeam
		fxLog.OpponentTeam = fxLog.PitchFxRows[0].BatterTeam
	}

	span.SetAttributes(attribute.Int("pitch_count", fxLog.TotalPitchCount))
	return fxLog, nil
}

func parsePitchFxHeader(header *goquery.Selection) (map[string]int, error) {
	columns := map[string]int{}
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		name := strings.ToLower(htmlutil.CleanText(cell.Text()))
		if name != "" {
			columns[name] = i
		}
	})
	for _, name := range requiredPitchFxColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("header is missing column '%s'", name)
		}
	}
	return columns, nil
}

type pitchFxRowReader struct {
	columns map[string]int
	cells   *goquery.Selection
	err     error
}

func (r *pitchFxRowReader) raw(column string) string {
	return htmlutil.CleanText(r.cells.Eq(r.columns[column]).Text())
}

func (r *pitchFxRowReader) str(column string) string {
	v := r.raw(column)
	if v == "" && r.err == nil {
		r.err = fmt.Errorf("column '%s' is empty", column)
	}
	return v
}

func (r *pitchFxRowReader) integer(column string) int64 {
	v, err := strconv.ParseInt(r.raw(column), 10, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column '%s': '%s' is not an integer", column, r.raw(column))
	}
	return v
}

func (r *pitchFxRowReader) float(column string) float64 {
	v, err := strconv.ParseFloat(r.raw(column), 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column '%s': '%s' is not a number", column, r.raw(column))
	}
	return v
}

func parsePitchFxRow(columns map[string]int, cells *goquery.Selection, gameID mlbid.BrooksGameID) (PitchFxRow, error) {
	r := &pitchFxRowReader{columns: columns, cells: cells}

	row := PitchFxRow{
		PlayGUID:         r.raw("play_guid"),
		ABID:             r.integer("ab_id"),
		ABCount:          int(r.integer("ab_count")),
		ABTotal:          int(r.integer("ab_total")),
		Inning:           int(r.integer("inning")),
		PitcherTeam:      strings.ToLower(r.str("pitcher_team")),
		PitcherID:        r.integer("pitcher_id"),
		BatterID:         r.integer("batter_id"),
		PitchDescription: r.str("pdes"),
		EventDescription: r.raw("des"),
		PitchTypeCode:    r.str("mlbam_pitch_name"),
		StartSpeed:       r.float("start_speed"),
		PX:               r.float("px"),
		PZ:               r.float("pz"),
		X0:               r.float("x0"),
		Y0:               r.float("y0"),
		Z0:               r.float("z0"),
		VX0:              r.float("vx0"),
		VY0:              r.float("vy0"),
		VZ0:              r.float("vz0"),
		AX:               r.float("ax"),
		AY:               r.float("ay"),
		AZ:               r.float("az"),
		PfxX:             r.float("pfx_x"),
		PfxZ:             r.float("pfx_z"),
		ParkSvID:         r.str("park_sv_id"),
	}
	if r.err != nil {
		return PitchFxRow{}, r.err
	}

	if row.PlayGUID == "" {
		row.PlayGUID = uuid.NewString()
	}

	if zone := r.raw("zone_location"); zone == "" {
		row.ZoneLocation = ZoneLocationMissing
		row.HasZoneLocation = false
	} else {
		v, err := strconv.Atoi(zone)
		if err != nil {
			return PitchFxRow{}, fmt.Errorf("column 'zone_location': '%s' is not an integer", zone)
		}
		row.ZoneLocation = v
		row.HasZoneLocation = v != ZoneLocationMissing
	}

	// pitcher team is authoritative per row; opponent is whichever
	// side of the matchup the pitcher is not on
	if row.PitcherTeam == strings.ToLower(gameID.AwayTeamID) {
		row.BatterTeam = strings.ToLower(gameID.HomeTeamID)
	} else {
		row.BatterTeam = strings.ToLower(gameID.AwayTeamID)
	}

	ts, err := timeFromParkSvID(row.ParkSvID)
	if err != nil {
		return PitchFxRow{}, err
	}
	row.TimePitchThrown = ts

	return row, nil
}

// timeFromParkSvID converts a park_sv_id like "190621_193308" into
// the wire timestamp format "2019-06-21 19:33:08".
func timeFromParkSvID(parkSvID string) (string, error) {
	parts := strings.SplitN(parkSvID, "_", 2)
	if len(parts) != 2 || len(parts[0]) != 6 || len(parts[1]) != 6 {
		return "", fmt.Errorf("column 'park_sv_id': '%s' is not in YYMMDD_HHMMSS form", parkSvID)
	}
	d, t := parts[0], parts[1]
	for _, part := range parts {
		if _, err := strconv.Atoi(part); err != nil {
			return "", fmt.Errorf("column 'park_sv_id': '%s' is not in YYMMDD_HHMMSS form", parkSvID)
		}
	}
	return fmt.Sprintf(
		"20%s-%s-%s %s:%s:%s",
		d[0:2], d[2:4], d[4:6], t[0:2], t[2:4], t[4:6],
	), nil
}
