package combine

import (
	"encoding/json"
	"fmt"

	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
)

// per at-bat classification. Invalid at-bats are still emitted so the
// document shows what could not be reconciled.
const (
	ClassComplete            = "complete"
	ClassMissingPitchFx      = "missing_pitchfx"
	ClassExtraPitchFxRemoved = "extra_pitchfx_removed"
	ClassInvalidPitchFx      = "invalid_pitchfx"
)

// CombinedAtBat joins one play-by-play at-bat group with its pitchfx
// rows.
type CombinedAtBat struct {
	AtBatID             string                  `json:"at_bat_id"`
	InningID            string                  `json:"inning_id"`
	RowNumber           int                     `json:"row_number"`
	Classification      string                  `json:"classification"`
	Patched             bool                    `json:"patched"`
	PitcherIDBr         string                  `json:"pitcher_id_br"`
	PitcherIDMlb        int64                   `json:"pitcher_id_mlb"`
	PitcherName         string                  `json:"pitcher_name"`
	BatterIDBr          string                  `json:"batter_id_br"`
	BatterIDMlb         int64                   `json:"batter_id_mlb"`
	BatterName          string                  `json:"batter_name"`
	PitchCountBBRef     int                     `json:"pitch_count_bbref"`
	PitchCountPitchFx   int                     `json:"pitch_count_pitchfx"`
	MissingPitchNumbers []int                   `json:"missing_pitch_numbers,omitempty"`
	ExtraRowsRemoved    int                     `json:"extra_rows_removed,omitempty"`
	PitchSequence       string                  `json:"pitch_sequence"`
	PitchSequenceDesc   []string                `json:"pitch_sequence_description"`
	PlayByPlayEvents    []bbref.PlayByPlayEvent `json:"play_by_play_events"`
	Substitutions       []bbref.Substitution    `json:"substitutions,omitempty"`
	PitchFxRows         []brooks.PitchFxRow     `json:"pitchfx"`
}

// GameAudit is the game-level roll-up the ledger and the season
// report read.
type GameAudit struct {
	BattersFacedBBRef         int      `json:"batters_faced_bbref"`
	BattersFacedPitchFx       int      `json:"batters_faced_pitchfx"`
	PitchCountBBRef           int      `json:"pitch_count_bbref"`
	PitchCountPitchFx         int      `json:"pitch_count_pitchfx"`
	PitchCountAudited         int      `json:"pitch_count_audited"`
	MissingPitchFxCount       int      `json:"missing_pitchfx_count"`
	ExtraPitchFxRemovedCount  int      `json:"extra_pitchfx_removed_count"`
	DuplicateGuidRemovedCount int      `json:"duplicate_guid_removed_count"`
	AtBatsComplete            int      `json:"at_bats_complete"`
	AtBatsMissingPitchFx      int      `json:"at_bats_missing_pitchfx"`
	AtBatsExtraPitchFxRemoved int      `json:"at_bats_extra_pitchfx_removed"`
	AtBatsInvalidPitchFx      int      `json:"at_bats_invalid_pitchfx"`
	PitchFxError              bool     `json:"pitchfx_error"`
	InvalidPitchFx            bool     `json:"invalid_pitchfx"`
	AllPitchFxValid           bool     `json:"all_pitchfx_valid"`
	AtBatIDsMissingPitchFx    []string `json:"at_bat_ids_missing_pitchfx,omitempty"`
	AtBatIDsExtraRemoved      []string `json:"at_bat_ids_extra_pitchfx_removed,omitempty"`
	AtBatIDsInvalidPitchFx    []string `json:"at_bat_ids_invalid_pitchfx,omitempty"`
	AtBatIDsPatchedPitchFx    []string `json:"at_bat_ids_patched_pitchfx,omitempty"`
}

// CombinedGame is the `<AID>_COMBINED_DATA.json` document.
type CombinedGame struct {
	Tag          bool            `json:"__combined_game_data__"`
	BBRefGameID  string          `json:"bbref_game_id"`
	BrooksGameID string          `json:"bb_game_id"`
	GameDateStr  string          `json:"game_date_str"`
	GameMeta     bbref.GameMeta  `json:"game_meta_info"`
	Audit        GameAudit       `json:"audit"`
	AtBats       []CombinedAtBat `json:"at_bats"`
}

func DecodeCombinedGame(data []byte) (CombinedGame, error) {
	var game CombinedGame
	err := json.Unmarshal(data, &game)
	if err != nil {
		return CombinedGame{}, err
	}
	if !game.Tag {
		return CombinedGame{}, fmt.Errorf("document is not a combined game")
	}
	return game, nil
}
