package brooks

import (
	"encoding/json"
	"fmt"
	"time"
)

// GamesForDate is the parsed brooksbaseball daily dashboard.
type GamesForDate struct {
	Tag          bool       `json:"__brooks_games_for_date__"`
	DashboardURL string     `json:"dashboard_url"`
	GameDateStr  string     `json:"game_date_str"`
	GameCount    int        `json:"game_count"`
	Games        []GameInfo `json:"games"`
}

func DecodeGamesForDate(data []byte) (GamesForDate, error) {
	var doc GamesForDate
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return GamesForDate{}, err
	}
	if !doc.Tag {
		return GamesForDate{}, fmt.Errorf("document is not a brooks games-for-date")
	}
	return doc, nil
}

type GameInfo struct {
	Tag                    bool             `json:"__brooks_game_info__"`
	BrooksGameID           string           `json:"bb_game_id"`
	BBRefGameID            string           `json:"bbref_game_id"`
	GameDateStr            string           `json:"game_date_str"`
	AwayTeamID             string           `json:"away_team_id_bb"`
	HomeTeamID             string           `json:"home_team_id_bb"`
	GameNumberThisDay      int              `json:"game_number_this_day"`
	GameStartTime          string           `json:"game_start_time"`
	MightBePostponed       bool             `json:"might_be_postponed"`
	PitcherAppearanceCount int              `json:"pitcher_appearance_count"`
	PitcherAppearanceDict  map[string]string `json:"pitcher_appearance_dict"`
}

type PitchLogsForGame struct {
	Tag           bool       `json:"__brooks_pitch_logs_for_game__"`
	BrooksGameID  string     `json:"bb_game_id"`
	BBRefGameID   string     `json:"bbref_game_id"`
	PitchLogCount int        `json:"pitch_log_count"`
	PitchLogs     []PitchLog `json:"pitch_logs"`
}

func DecodePitchLogsForGame(data []byte) (PitchLogsForGame, error) {
	var doc PitchLogsForGame
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return PitchLogsForGame{}, err
	}
	if !doc.Tag {
		return PitchLogsForGame{}, fmt.Errorf("document is not a brooks pitch-logs-for-game")
	}
	return doc, nil
}

type PitchLog struct {
	Tag                bool           `json:"__brooks_pitch_log__"`
	ParsedAllInfo      bool           `json:"parsed_all_info"`
	PitcherName        string         `json:"pitcher_name"`
	PitcherID          int64          `json:"pitcher_id_mlb"`
	PitchAppID         string         `json:"pitch_app_id"`
	BrooksGameID       string         `json:"bb_game_id"`
	BBRefGameID        string         `json:"bbref_game_id"`
	PitcherTeam        string         `json:"pitcher_team_id_bb"`
	OpponentTeam       string         `json:"opponent_team_id_bb"`
	TotalPitchCount    int            `json:"total_pitch_count"`
	PitchCountByInning map[string]int `json:"pitch_count_by_inning"`
	PitchFxURL         string         `json:"pitchfx_url"`
	PitchLogURL        string         `json:"pitch_log_url"`
}

type PitchFxLog struct {
	Tag             bool         `json:"__brooks_pitchfx_log__"`
	PitchAppID      string       `json:"pitch_app_id"`
	PitcherID       int64        `json:"pitcher_id_mlb"`
	PitcherName     string       `json:"pitcher_name"`
	BrooksGameID    string       `json:"bb_game_id"`
	BBRefGameID     string       `json:"bbref_game_id"`
	PitcherTeam     string       `json:"pitcher_team_id_bb"`
	OpponentTeam    string       `json:"opponent_team_id_bb"`
	TotalPitchCount int          `json:"total_pitch_count"`
	PitchFxURL      string       `json:"pitchfx_url"`
	PitchFxRows     []PitchFxRow `json:"pitchfx_log"`
}

func DecodePitchFxLog(data []byte) (PitchFxLog, error) {
	var doc PitchFxLog
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return PitchFxLog{}, err
	}
	if !doc.Tag {
		return PitchFxLog{}, fmt.Errorf("document is not a brooks pitchfx log")
	}
	return doc, nil
}

// ZoneLocationMissing is the sentinel stored when the measurement row
// carried no zone location.
const ZoneLocationMissing = 99

type PitchFxRow struct {
	PlayGUID         string  `json:"play_guid"`
	ABID             int64   `json:"ab_id"`
	ABCount          int     `json:"ab_count"`
	ABTotal          int     `json:"ab_total"`
	Inning           int     `json:"inning"`
	PitcherTeam      string  `json:"pitcher_team_id_bb"`
	PitcherID        int64   `json:"pitcher_id_mlb"`
	BatterTeam       string  `json:"opponent_team_id_bb"`
	BatterID         int64   `json:"batter_id_mlb"`
	PitchDescription string  `json:"pdes"`
	EventDescription string  `json:"des"`
	PitchTypeCode    string  `json:"mlbam_pitch_name"`
	StartSpeed       float64 `json:"start_speed"`
	PX               float64 `json:"px"`
	PZ               float64 `json:"pz"`
	X0               float64 `json:"x0"`
	Y0               float64 `json:"y0"`
	Z0               float64 `json:"z0"`
	VX0              float64 `json:"vx0"`
	VY0              float64 `json:"vy0"`
	VZ0              float64 `json:"vz0"`
	AX               float64 `json:"ax"`
	AY               float64 `json:"ay"`
	AZ               float64 `json:"az"`
	PfxX             float64 `json:"pfx_x"`
	PfxZ             float64 `json:"pfx_z"`
	ZoneLocation     int     `json:"zone_location"`
	ParkSvID         string  `json:"park_sv_id"`
	TimePitchThrown  string  `json:"time_pitch_thrown_str"`
	HasZoneLocation  bool    `json:"has_zone_location"`
}

// ThrownAt parses the pitch-thrown timestamp; the zero time is
// returned when the row never carried one.
func (row PitchFxRow) ThrownAt() time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", row.TimePitchThrown)
	if err != nil {
		return time.Time{}
	}
	return t
}
