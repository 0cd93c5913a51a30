package patch

import (
	"encoding/json"
	"fmt"
)

// one decoder per action tag; the tag field doubles as the
// discriminator the same way the parsed documents are tagged
var actionDecoders = map[string]func(raw []byte) (Action, error){
	"__patch_brooks_games_for_date_bbref_game_id__": decodeInto[PatchBrooksGamesForDateBBRefGameID],
	"__patch_brooks_games_for_date_remove_game__":   decodeInto[PatchBrooksGamesForDateRemoveGame],
	"__patch_bbref_games_for_date_game_id__":        decodeInto[PatchBBRefGamesForDateGameID],
	"__patch_bbref_boxscore_player_id__":            decodeInto[PatchBBRefBoxscorePlayerID],
	"__patch_bbref_boxscore_pitch_sequence__":       decodeInto[PatchBBRefBoxscorePitchSequence],
	"__patch_brooks_pitchfx_batter_id__":            decodeInto[PatchBrooksPitchFxBatterID],
}

func decodeInto[T Action](raw []byte) (Action, error) {
	var action T
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, err
	}
	return action, nil
}

// DecodeList reads a patch file: a JSON array of tagged action
// objects. An object with no recognized tag fails the decode, a
// silently dropped patch being worse than a loud one.
func DecodeList(data []byte) (List, error) {
	var rawActions []json.RawMessage
	if err := json.Unmarshal(data, &rawActions); err != nil {
		return List{}, fmt.Errorf("decode patch list: %w", err)
	}

	list := List{}
	for i, raw := range rawActions {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return List{}, fmt.Errorf("decode patch list entry %d: %w", i, err)
		}

		var action Action
		for tag, decode := range actionDecoders {
			tagged, ok := probe[tag]
			if !ok || string(tagged) != "true" {
				continue
			}
			decoded, err := decode(raw)
			if err != nil {
				return List{}, fmt.Errorf("decode patch list entry %d: %w", i, err)
			}
			action = decoded
			break
		}
		if action == nil {
			return List{}, fmt.Errorf("decode patch list entry %d: no recognized patch tag", i)
		}
		list.Actions = append(list.Actions, action)
	}
	return list, nil
}

// EncodeList writes the patch file form, forcing every action's tag
// field on so a round trip always decodes.
func EncodeList(list List) ([]byte, error) {
	encoded := make([]any, len(list.Actions))
	for i, action := range list.Actions {
		encoded[i] = withTag(action)
	}
	return json.MarshalIndent(encoded, "", "  ")
}

func withTag(action Action) Action {
	switch a := action.(type) {
	case PatchBrooksGamesForDateBBRefGameID:
		a.Tag = true
		return a
	case PatchBrooksGamesForDateRemoveGame:
		a.Tag = true
		return a
	case PatchBBRefGamesForDateGameID:
		a.Tag = true
		return a
	case PatchBBRefBoxscorePlayerID:
		a.Tag = true
		return a
	case PatchBBRefBoxscorePitchSequence:
		a.Tag = true
		return a
	case PatchBrooksPitchFxBatterID:
		a.Tag = true
		return a
	default:
		return action
	}
}
