package bbref

import (
	"encoding/json"
	"fmt"
)

// GamesForDate is the parsed daily index: every boxscore url linked
// from the bbref dashboard for one date.
type GamesForDate struct {
	DashboardURL string   `json:"dashboard_url"`
	GameDateStr  string   `json:"game_date_str"`
	GameCount    int      `json:"game_count"`
	BoxscoreURLs []string `json:"boxscore_urls"`
}

// Boxscore is the full parsed boxscore document. The leading tag
// field discriminates the json shape for downstream consumers.
type Boxscore struct {
	Tag              bool              `json:"__bbref_boxscore__"`
	GameID           string            `json:"bbref_game_id"`
	BoxscoreURL      string            `json:"boxscore_url"`
	GameMeta         GameMeta          `json:"game_meta_info"`
	AwayTeamData     TeamData          `json:"away_team_data"`
	HomeTeamData     TeamData          `json:"home_team_data"`
	InningsList      []HalfInning      `json:"innings_list"`
	Umpires          []Umpire          `json:"umpires"`
	PlayerTeamDict   map[string]string `json:"player_team_dict"`
	PlayerNameDict   map[string]string `json:"player_name_dict"`
	FuzzyNameMatches []FuzzyNameMatch  `json:"fuzzy_name_matches,omitempty"`
}

func DecodeBoxscore(data []byte) (Boxscore, error) {
	var box Boxscore
	err := json.Unmarshal(data, &box)
	if err != nil {
		return Boxscore{}, err
	}
	if !box.Tag {
		return Boxscore{}, fmt.Errorf("document is not a bbref boxscore")
	}
	return box, nil
}

type GameMeta struct {
	ParkName           string `json:"park_name"`
	Attendance         int    `json:"attendance"`
	GameDuration       string `json:"game_duration"`
	DayNight           string `json:"day_night"`
	FieldType          string `json:"field_type"`
	Temperature        int    `json:"first_pitch_temperature"`
	Wind               string `json:"first_pitch_wind"`
	Clouds             string `json:"first_pitch_clouds"`
	Precipitation      string `json:"first_pitch_precipitation"`
	ScheduledStartHHMM string `json:"scheduled_start_time"`
}

type Umpire struct {
	FieldLocation string `json:"field_location"`
	UmpName       string `json:"umpire_name"`
}

type TeamData struct {
	TeamID           string          `json:"team_id_br"`
	WinsBeforeGame   int             `json:"total_wins_before_game"`
	LossesBeforeGame int             `json:"total_losses_before_game"`
	TotalRuns        int             `json:"total_runs"`
	TotalHits        int             `json:"total_hits"`
	TotalErrors      int             `json:"total_errors"`
	StartingLineup   []LineupSlot    `json:"starting_lineup"`
	BattingStats     []BattingStats  `json:"batting_stats"`
	PitchingStats    []PitchingStats `json:"pitching_stats"`
}

type LineupSlot struct {
	BattingOrder int    `json:"order"`
	PlayerID     string `json:"player_id_br"`
	DefPosition  string `json:"def_position"`
}

type BattingStats struct {
	PlayerID         string `json:"player_id_br"`
	AtBats           int    `json:"at_bats"`
	Runs             int    `json:"runs_scored"`
	Hits             int    `json:"hits"`
	RBIs             int    `json:"rbis"`
	BasesOnBalls     int    `json:"bases_on_balls"`
	Strikeouts       int    `json:"strikeouts"`
	PlateAppearances int    `json:"plate_appearances"`
}

type PitchingStats struct {
	PlayerID     string  `json:"player_id_br"`
	InningsPitched float64 `json:"innings_pitched"`
	Hits         int     `json:"hits"`
	Runs         int     `json:"runs"`
	EarnedRuns   int     `json:"earned_runs"`
	BasesOnBalls int     `json:"bases_on_balls"`
	Strikeouts   int     `json:"strikeouts"`
	BattersFaced int     `json:"batters_faced"`
	PitchCount   int     `json:"pitch_count"`
}

type HalfInning struct {
	InningID      string            `json:"inning_id"`
	InningLabel   string            `json:"inning_label"`
	GameEvents    []PlayByPlayEvent `json:"game_events"`
	Substitutions []Substitution    `json:"substitutions"`
}

type PlayByPlayEvent struct {
	EventID         string `json:"event_id"`
	Inning          int    `json:"inning"`
	InningLabel     string `json:"inning_label"`
	Score           string `json:"score"`
	OutsBeforePlay  int    `json:"outs_before_play"`
	RunnersOnBase   string `json:"runners_on_base"`
	PitchSequence   string `json:"pitch_sequence"`
	RunsOutsResult  string `json:"runs_outs_result"`
	TeamBattingID   string `json:"team_batting_id_br"`
	TeamPitchingID  string `json:"team_pitching_id_br"`
	PitcherID       string `json:"pitcher_id_br"`
	BatterID        string `json:"batter_id_br"`
	PlayDescription string `json:"play_description"`
	RowNumber       int    `json:"row_number"`
}

type SubstitutionKind string

const (
	SubPinchHit     SubstitutionKind = "pinch_hit"
	SubPinchRun     SubstitutionKind = "pinch_run"
	SubPitching     SubstitutionKind = "pitching"
	SubDefensive    SubstitutionKind = "defensive"
	SubPositionMove SubstitutionKind = "position_move"
)

type Substitution struct {
	EventID          string           `json:"event_id"`
	Inning           int              `json:"inning"`
	InningLabel      string           `json:"inning_label"`
	RowNumber        int              `json:"row_number"`
	Kind             SubstitutionKind `json:"sub_type"`
	IncomingPlayerID string           `json:"incoming_player_id_br"`
	IncomingPosition string           `json:"incoming_player_pos"`
	OutgoingPlayerID string           `json:"outgoing_player_id_br"`
	OutgoingPosition string           `json:"outgoing_player_pos"`
	LineupSlot       int              `json:"lineup_slot"`
	Description      string           `json:"description"`
}

type FuzzyNameMatch struct {
	Query       string  `json:"query"`
	Matched     string  `json:"matched"`
	PlayerID    string  `json:"player_id_br"`
	Correlation float64 `json:"correlation"`
}
