// Package patch applies human-curated fixups to parsed documents.
// The sites occasionally publish wrong ids or garbled rows; a patch
// list sits next to the parsed blob (suffix _PATCH_LIST.json) and is
// applied after parsing, before persistence. Application is
// idempotent so a patched object is byte-identical across runs.
package patch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
)

// ErrPatchRequired marks a known-bad document with no patch list
// present. The message carries instructions for writing one.
var ErrPatchRequired = errors.New("patch required")

type Action interface {
	// apply mutates doc in place; unknown document types are ignored
	// so a list can hold actions for several data sets
	apply(doc any) error
}

// List is the wire form of a patch file: a JSON array of tagged
// action objects.
type List struct {
	Actions []Action
}

// PatchBrooksGamesForDateBBRefGameID rewrites the bbref game id the
// brooks dashboard derived for one game.
type PatchBrooksGamesForDateBBRefGameID struct {
	Tag          bool   `json:"__patch_brooks_games_for_date_bbref_game_id__"`
	BrooksGameID string `json:"bb_game_id"`
	BBRefGameID  string `json:"bbref_game_id"`
}

func (p PatchBrooksGamesForDateBBRefGameID) apply(doc any) error {
	games, ok := doc.(*brooks.GamesForDate)
	if !ok {
		return nil
	}
	for i := range games.Games {
		if games.Games[i].BrooksGameID == p.BrooksGameID {
			games.Games[i].BBRefGameID = p.BBRefGameID
		}
	}
	return nil
}

// PatchBrooksGamesForDateRemoveGame drops a spurious game from the
// brooks daily index. Removing an already-absent game is a no-op.
type PatchBrooksGamesForDateRemoveGame struct {
	Tag          bool   `json:"__patch_brooks_games_for_date_remove_game__"`
	BrooksGameID string `json:"bb_game_id"`
}

func (p PatchBrooksGamesForDateRemoveGame) apply(doc any) error {
	games, ok := doc.(*brooks.GamesForDate)
	if !ok {
		return nil
	}
	kept := games.Games[:0]
	for _, game := range games.Games {
		if game.BrooksGameID != p.BrooksGameID {
			kept = append(kept, game)
		}
	}
	games.Games = kept
	games.GameCount = len(kept)
	return nil
}

// PatchBBRefGamesForDateGameID swaps a wrong game id in the bbref
// daily index for the right one. When the wrong id is not present the
// correct game is added instead, which covers indexes where the bad
// entry failed to parse at all.
type PatchBBRefGamesForDateGameID struct {
	Tag           bool   `json:"__patch_bbref_games_for_date_game_id__"`
	InvalidGameID string `json:"invalid_game_id"`
	CorrectGameID string `json:"correct_game_id"`
}

func (p PatchBBRefGamesForDateGameID) apply(doc any) error {
	games, ok := doc.(*bbref.GamesForDate)
	if !ok {
		return nil
	}
	correctURL := bbref.BoxscoreURL(p.CorrectGameID)
	replaced := false
	for i, url := range games.BoxscoreURLs {
		if strings.Contains(url, p.InvalidGameID) {
			games.BoxscoreURLs[i] = correctURL
			replaced = true
		}
	}
	if !replaced {
		found := false
		for _, url := range games.BoxscoreURLs {
			if url == correctURL {
				found = true
				break
			}
		}
		if !found {
			games.BoxscoreURLs = append(games.BoxscoreURLs, correctURL)
		}
	}
	sort.Strings(games.BoxscoreURLs)
	games.GameCount = len(games.BoxscoreURLs)
	return nil
}

// PatchBBRefBoxscorePlayerID corrects a player id the fuzzy name
// matcher resolved wrongly, everywhere it appears in the play-by-play
// and substitution rows.
type PatchBBRefBoxscorePlayerID struct {
	Tag       bool   `json:"__patch_bbref_boxscore_player_id__"`
	GameID    string `json:"game_id"`
	InvalidID string `json:"invalid_player_id_br"`
	CorrectID string `json:"correct_player_id_br"`
}

func (p PatchBBRefBoxscorePlayerID) apply(doc any) error {
	box, ok := doc.(*bbref.Boxscore)
	if !ok || box.GameID != p.GameID {
		return nil
	}
	swap := func(id *string) {
		if *id == p.InvalidID {
			*id = p.CorrectID
		}
	}
	for i := range box.InningsList {
		inning := &box.InningsList[i]
		for j := range inning.GameEvents {
			swap(&inning.GameEvents[j].BatterID)
			swap(&inning.GameEvents[j].PitcherID)
		}
		for j := range inning.Substitutions {
			swap(&inning.Substitutions[j].IncomingPlayerID)
			swap(&inning.Substitutions[j].OutgoingPlayerID)
		}
	}
	return nil
}

// PatchBBRefBoxscorePitchSequence replaces the pitch sequence of one
// play-by-play event.
type PatchBBRefBoxscorePitchSequence struct {
	Tag           bool   `json:"__patch_bbref_boxscore_pitch_sequence__"`
	GameID        string `json:"game_id"`
	EventID       string `json:"event_id"`
	PitchSequence string `json:"pitch_sequence"`
}

func (p PatchBBRefBoxscorePitchSequence) apply(doc any) error {
	box, ok := doc.(*bbref.Boxscore)
	if !ok || box.GameID != p.GameID {
		return nil
	}
	for i := range box.InningsList {
		for j := range box.InningsList[i].GameEvents {
			if box.InningsList[i].GameEvents[j].EventID == p.EventID {
				box.InningsList[i].GameEvents[j].PitchSequence = p.PitchSequence
			}
		}
	}
	return nil
}

// PatchBrooksPitchFxBatterID reassigns the batter on the pitchfx rows
// of one source at-bat, fixing games where the feed credited pitches
// to the wrong hitter.
type PatchBrooksPitchFxBatterID struct {
	Tag        bool   `json:"__patch_brooks_pitchfx_batter_id__"`
	PitchAppID string `json:"pitch_app_id"`
	ABID       int64  `json:"ab_id"`
	CorrectID  int64  `json:"correct_batter_id_mlb"`
}

func (p PatchBrooksPitchFxBatterID) apply(doc any) error {
	fxLog, ok := doc.(*brooks.PitchFxLog)
	if !ok || fxLog.PitchAppID != p.PitchAppID {
		return nil
	}
	for i := range fxLog.PitchFxRows {
		if fxLog.PitchFxRows[i].ABID == p.ABID {
			fxLog.PitchFxRows[i].BatterID = p.CorrectID
		}
	}
	return nil
}

// Apply runs every action in order against doc, which must be a
// pointer to one of the patchable document types. Actions targeting
// other document types are skipped.
func (l List) Apply(doc any) error {
	for i, action := range l.Actions {
		if err := action.apply(doc); err != nil {
			return fmt.Errorf("patch action %d: %w", i, err)
		}
	}
	return nil
}
